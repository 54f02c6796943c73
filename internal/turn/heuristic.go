package turn

import (
	"strings"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
)

// heuristicTurn is the synchronous local reading of a reply.
func heuristicTurn(text string, focus Focus, draft *model.Draft) Result {
	r := Result{Source: "heuristic"}

	if token, ok := place.RoomToken(text); ok {
		r.Hints.PlaceHint = token
	}
	if code, ok := place.ResolveArea(text); ok {
		r.Hints.AreaHint = string(code)
	}

	switch {
	case lang.IsCancel(text):
		r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpCancel})
		return r
	case lang.IsConfirm(text):
		r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpConfirm})
		return r
	case lang.WantsPreview(text):
		r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpShowPreview})
		return r
	}

	// A bare room number is a place correction regardless of focus.
	if token, bare := bareRoomNumber(text); bare {
		r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpSetField, Field: "place", Value: token})
		r.IsPlaceCorrectionOnly = true
		return r
	}

	switch focus {
	case FocusPlace:
		r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpSetField, Field: "place", Value: strings.TrimSpace(text)})
	case FocusArea:
		if r.Hints.AreaHint != "" {
			r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpReplaceAreas, Value: r.Hints.AreaHint})
		}
	case FocusDescription:
		r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpSetField, Field: "description", Value: strings.TrimSpace(text)})
	default:
		if r.Hints.AreaHint != "" && shortAreaReply(text) {
			r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpReplaceAreas, Value: r.Hints.AreaHint})
			return r
		}
		if lang.LooksLikeProblem(text) {
			// New-incident candidate only when the text both carries problem
			// vocabulary and names a place materially different from the
			// draft's. Otherwise it is extra detail about the same problem.
			if namesDifferentPlace(text, draft) {
				r.IsNewIncidentCandidate = true
			} else {
				r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpAppendDetail, Value: strings.TrimSpace(text)})
			}
			return r
		}
		if r.Hints.PlaceHint != "" && draft != nil && namesDifferentPlace(text, draft) {
			r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpSetField, Field: "place", Value: r.Hints.PlaceHint})
			r.IsPlaceCorrectionOnly = true
			return r
		}
		r.Ops = append(r.Ops, model.TurnOp{Kind: model.OpAppendDetail, Value: strings.TrimSpace(text)})
	}

	return r
}

// bareRoomNumber reports whether text is essentially just a room token.
func bareRoomNumber(text string) (string, bool) {
	token, ok := place.RoomToken(text)
	if !ok {
		return "", false
	}
	stripped := strings.TrimSpace(strings.Replace(lang.Normalize(text), token, "", 1))
	switch stripped {
	case "", "hab", "hab.", "habitacion", "cuarto", "room", "la", "el", "en", "en la", "en el":
		return token, true
	}
	return "", false
}

// shortAreaReply limits area replacement to short, area-shaped replies so a
// verbose message mentioning "limpieza" in passing does not retarget the draft.
func shortAreaReply(text string) bool {
	return len([]rune(strings.TrimSpace(text))) <= 25
}

// namesDifferentPlace reports whether text names a place materially
// different from the draft's current place.
func namesDifferentPlace(text string, draft *model.Draft) bool {
	if draft == nil || draft.Place == "" {
		return false
	}
	token, ok := place.RoomToken(text)
	if ok {
		return !strings.Contains(draft.Place, token)
	}
	return false
}
