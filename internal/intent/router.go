// Package intent classifies an inbound message's top-level intent.
package intent

import (
	"context"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/oracle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/metrics"
)

// Result is the router's classification. Always populated: the router
// never errors, it degrades to the heuristic.
type Result struct {
	Intent         model.Intent
	Confidence     float64
	Hints          model.IntentHints
	Source         string // "oracle" or "heuristic"
	FallbackReason string // set when the oracle path failed
}

// Router classifies top-level intent with a synchronous local heuristic
// computed first as a fallback, preferring oracle output when available.
type Router struct {
	oracle oracle.Client
	logger *logger.Logger
}

// NewRouter creates an intent router. oracleClient may be nil, in which
// case only the heuristic path runs.
func NewRouter(oracleClient oracle.Client, log *logger.Logger) *Router {
	return &Router{
		oracle: oracleClient,
		logger: log,
	}
}

// Classify returns the top-level intent for text. Pure classification:
// no side effects beyond logging and metrics.
func (r *Router) Classify(ctx context.Context, text string, octx oracle.Context) Result {
	heuristic := Heuristic(text)

	if r.oracle == nil {
		metrics.IntentsTotal.WithLabelValues(string(heuristic.Intent), heuristic.Source).Inc()
		return heuristic
	}

	oracleResult, err := r.oracle.ClassifyTopLevel(ctx, text, octx)
	if err != nil {
		r.logger.Warn("oracle top-level classification failed, using heuristic",
			zap.Error(err),
			zap.String("heuristic_intent", string(heuristic.Intent)),
		)
		heuristic.FallbackReason = err.Error()
		metrics.IntentsTotal.WithLabelValues(string(heuristic.Intent), heuristic.Source).Inc()
		return heuristic
	}

	result := Result{
		Intent:     oracleResult.Intent,
		Confidence: oracleResult.Confidence,
		Hints:      oracleResult.Hints,
		Source:     "oracle",
	}

	// Merge heuristic hints the oracle missed.
	if result.Hints.PlaceHint == "" {
		result.Hints.PlaceHint = heuristic.Hints.PlaceHint
	}
	if result.Hints.AreaHint == "" {
		result.Hints.AreaHint = heuristic.Hints.AreaHint
	}
	result.Hints.MaybeIncident = result.Hints.MaybeIncident || heuristic.Hints.MaybeIncident

	metrics.IntentsTotal.WithLabelValues(string(result.Intent), result.Source).Inc()
	return result
}
