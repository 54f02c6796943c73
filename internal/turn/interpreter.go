// Package turn interprets a user reply against the current prompt focus,
// producing discrete edit operations for the state machine to apply.
package turn

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/oracle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
)

// Focus is what the system just asked the user for.
type Focus string

const (
	FocusNone        Focus = "none"
	FocusPlace       Focus = "place"
	FocusArea        Focus = "area"
	FocusPreview     Focus = "preview"
	FocusDescription Focus = "description"
)

// Result is the interpreted turn: deduplicated ops plus two mutually
// exclusive signals. Side-effect free; the state machine applies it.
type Result struct {
	Ops                    []model.TurnOp
	IsNewIncidentCandidate bool
	IsPlaceCorrectionOnly  bool
	Hints                  model.IntentHints
	Source                 string
}

// Interpreter merges a local heuristic reading with an oracle reading.
type Interpreter struct {
	oracle oracle.Client
	logger *logger.Logger
}

// NewInterpreter creates a turn interpreter. oracleClient may be nil.
func NewInterpreter(oracleClient oracle.Client, log *logger.Logger) *Interpreter {
	return &Interpreter{
		oracle: oracleClient,
		logger: log,
	}
}

// Interpret produces the edit operations for a reply. draft may be nil
// when no draft is active.
func (i *Interpreter) Interpret(ctx context.Context, text string, focus Focus, draft *model.Draft) Result {
	heuristic := heuristicTurn(text, focus, draft)

	if i.oracle == nil {
		return finalize(heuristic)
	}

	oracleResult, err := i.oracle.ClassifyTurn(ctx, text, string(focus), draftSummary(draft))
	if err != nil {
		i.logger.Warn("oracle turn classification failed, using heuristic", zap.Error(err))
		return finalize(heuristic)
	}

	return finalize(merge(heuristic, oracleResult))
}

// merge combines the heuristic result with the oracle result. Oracle ops
// come first (they are the richer reading); heuristic ops fill gaps.
func merge(heuristic Result, o *oracle.TurnResult) Result {
	merged := Result{
		Ops:                    append(append([]model.TurnOp{}, o.Ops...), heuristic.Ops...),
		IsNewIncidentCandidate: heuristic.IsNewIncidentCandidate || o.NewIncidentCandidate,
		IsPlaceCorrectionOnly:  heuristic.IsPlaceCorrectionOnly || o.PlaceCorrectionOnly,
		Hints:                  o.Hints,
		Source:                 "oracle+heuristic",
	}
	if merged.Hints.PlaceHint == "" {
		merged.Hints.PlaceHint = heuristic.Hints.PlaceHint
	}
	if merged.Hints.AreaHint == "" {
		merged.Hints.AreaHint = heuristic.Hints.AreaHint
	}
	return merged
}

// finalize enforces the result invariants: deduplicated ops, at most one
// append_detail per turn, and mutually exclusive flags where the
// place-correction reading wins over the new-incident reading (policy).
func finalize(r Result) Result {
	seen := make(map[model.TurnOp]struct{}, len(r.Ops))
	appendDetailSeen := false
	out := make([]model.TurnOp, 0, len(r.Ops))
	for _, op := range r.Ops {
		if _, dup := seen[op]; dup {
			continue
		}
		if op.Kind == model.OpAppendDetail {
			if appendDetailSeen {
				continue
			}
			appendDetailSeen = true
		}
		seen[op] = struct{}{}
		out = append(out, op)
	}
	r.Ops = out

	if r.IsNewIncidentCandidate && r.IsPlaceCorrectionOnly {
		r.IsNewIncidentCandidate = false
	}
	return r
}

func draftSummary(d *model.Draft) string {
	if d == nil {
		return ""
	}
	var parts []string
	if d.Description != "" {
		parts = append(parts, "desc: "+d.Description)
	}
	if d.Place != "" {
		parts = append(parts, "place: "+d.Place)
	}
	if d.AreaCode != "" {
		parts = append(parts, "area: "+string(d.AreaCode))
	}
	return strings.Join(parts, " | ")
}
