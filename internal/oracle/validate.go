package oracle

import (
	"strings"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

// Wire payloads are loosely typed on purpose: the oracle may return anything.
// The coerce methods are the validation boundary: every enumerated field is
// checked and replaced with a safe default, never propagated raw.

type topLevelPayload struct {
	Intent        string  `json:"intent"`
	Confidence    float64 `json:"confidence"`
	MaybeIncident bool    `json:"maybe_incident"`
	PlaceHint     string  `json:"place_hint"`
	AreaHint      string  `json:"area_hint"`
}

func (p *topLevelPayload) coerce() *TopLevelResult {
	intent := model.Intent(strings.ToLower(strings.TrimSpace(p.Intent)))
	if !intent.Valid() {
		intent = model.IntentOther
	}
	return &TopLevelResult{
		Intent:     intent,
		Confidence: clampConfidence(p.Confidence),
		Hints: model.IntentHints{
			MaybeIncident: p.MaybeIncident,
			PlaceHint:     strings.TrimSpace(p.PlaceHint),
			AreaHint:      coerceAreaHint(p.AreaHint),
		},
	}
}

type turnOpPayload struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type turnPayload struct {
	Ops                  []turnOpPayload `json:"ops"`
	NewIncidentCandidate bool            `json:"is_new_incident_candidate"`
	PlaceCorrectionOnly  bool            `json:"is_place_correction_only"`
	Confidence           float64         `json:"confidence"`
	PlaceHint            string          `json:"place_hint"`
	AreaHint             string          `json:"area_hint"`
}

func (p *turnPayload) coerce() *TurnResult {
	ops := make([]model.TurnOp, 0, len(p.Ops))
	appendDetailSeen := false
	for _, op := range p.Ops {
		kind := model.OpKind(strings.ToLower(strings.TrimSpace(op.Kind)))
		if !kind.Valid() {
			continue
		}
		if kind == model.OpAppendDetail {
			if appendDetailSeen {
				continue
			}
			appendDetailSeen = true
		}
		field := strings.ToLower(strings.TrimSpace(op.Field))
		switch field {
		case "description", "place", "area":
		default:
			field = ""
		}
		ops = append(ops, model.TurnOp{
			Kind:  kind,
			Field: field,
			Value: strings.TrimSpace(op.Value),
		})
	}

	// The two flags are mutually exclusive; place-correction wins when the
	// oracle claims both.
	newIncident := p.NewIncidentCandidate
	placeOnly := p.PlaceCorrectionOnly
	if newIncident && placeOnly {
		newIncident = false
	}

	return &TurnResult{
		Ops:                  dedupeOps(ops),
		NewIncidentCandidate: newIncident,
		PlaceCorrectionOnly:  placeOnly,
		Confidence:           clampConfidence(p.Confidence),
		Hints: model.IntentHints{
			PlaceHint: strings.TrimSpace(p.PlaceHint),
			AreaHint:  coerceAreaHint(p.AreaHint),
		},
	}
}

type feedbackPayload struct {
	IsRelevant     bool    `json:"is_relevant"`
	Role           string  `json:"role"`
	Kind           string  `json:"kind"`
	StatusIntent   string  `json:"status_intent"`
	RequesterSide  string  `json:"requester_side"`
	Polarity       string  `json:"polarity"`
	NormalizedNote string  `json:"normalized_note"`
	Confidence     float64 `json:"confidence"`
}

func (p *feedbackPayload) coerce(roleHint model.FeedbackRole) *model.FeedbackClassification {
	role := model.FeedbackRole(strings.ToLower(strings.TrimSpace(p.Role)))
	if role != model.RoleTeam && role != model.RoleRequester {
		role = roleHint
	}

	si := model.StatusIntent(strings.ToLower(strings.TrimSpace(p.StatusIntent)))
	if !si.Valid() {
		si = model.StatusIntentNone
	}

	side := model.RequesterSide(strings.ToLower(strings.TrimSpace(p.RequesterSide)))
	switch side {
	case model.SideNone, model.SideStillBroken, model.SideSatisfied:
	default:
		side = model.SideNone
	}

	polarity := strings.ToLower(strings.TrimSpace(p.Polarity))
	switch polarity {
	case "positive", "negative", "neutral":
	default:
		polarity = "neutral"
	}

	return &model.FeedbackClassification{
		IsRelevant:     p.IsRelevant,
		Role:           role,
		Kind:           strings.ToLower(strings.TrimSpace(p.Kind)),
		StatusIntent:   si,
		RequesterSide:  side,
		Polarity:       polarity,
		NormalizedNote: strings.TrimSpace(p.NormalizedNote),
		Confidence:     clampConfidence(p.Confidence),
	}
}

type splitIncidentPayload struct {
	Text  string `json:"text"`
	Place string `json:"place"`
	Area  string `json:"area"`
}

type splitPayload struct {
	Incidents []splitIncidentPayload `json:"incidents"`
}

func (p *splitPayload) coerce() []model.Incident {
	incidents := make([]model.Incident, 0, len(p.Incidents))
	for _, in := range p.Incidents {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			continue
		}
		incidents = append(incidents, model.Incident{
			Text:  text,
			Place: strings.TrimSpace(in.Place),
			Area:  coerceAreaHint(in.Area),
		})
	}
	return incidents
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func coerceAreaHint(raw string) string {
	code := model.AreaCode(strings.ToLower(strings.TrimSpace(raw)))
	if code.Valid() {
		return string(code)
	}
	return ""
}

func dedupeOps(ops []model.TurnOp) []model.TurnOp {
	seen := make(map[model.TurnOp]struct{}, len(ops))
	out := ops[:0]
	for _, op := range ops {
		if _, ok := seen[op]; ok {
			continue
		}
		seen[op] = struct{}{}
		out = append(out, op)
	}
	return out
}
