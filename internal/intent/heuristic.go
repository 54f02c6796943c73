package intent

import (
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
)

// Heuristic confidence levels. All strictly below the oracle's typical
// confidence band (>= 0.7) so oracle output wins when both are available.
const (
	heuristicStrong = 0.55
	heuristicWeak   = 0.35
)

// Heuristic classifies text with keyword/pattern matching only.
func Heuristic(text string) Result {
	hints := model.IntentHints{}

	if token, ok := place.RoomToken(text); ok {
		hints.PlaceHint = token
	}
	if code, ok := place.ResolveArea(text); ok {
		hints.AreaHint = string(code)
	}

	switch {
	case lang.IsCancel(text):
		return Result{Intent: model.IntentCancel, Confidence: heuristicStrong, Hints: hints, Source: "heuristic"}
	case lang.IsSearch(text):
		return Result{Intent: model.IntentSearch, Confidence: heuristicStrong, Hints: hints, Source: "heuristic"}
	case lang.IsGreetingOnly(text):
		return Result{Intent: model.IntentGreeting, Confidence: heuristicStrong, Hints: hints, Source: "heuristic"}
	case lang.IsClose(text):
		return Result{Intent: model.IntentClose, Confidence: heuristicWeak, Hints: hints, Source: "heuristic"}
	case lang.LooksLikeProblem(text):
		hints.MaybeIncident = true
		confidence := heuristicWeak
		// A 3-4 digit token alongside problem vocabulary is a strong room
		// incident signal.
		if hints.PlaceHint != "" {
			confidence = heuristicStrong
		}
		return Result{Intent: model.IntentNewIncident, Confidence: confidence, Hints: hints, Source: "heuristic"}
	default:
		if hints.PlaceHint != "" {
			hints.MaybeIncident = true
		}
		return Result{Intent: model.IntentOther, Confidence: heuristicWeak, Hints: hints, Source: "heuristic"}
	}
}
