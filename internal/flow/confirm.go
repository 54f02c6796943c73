package flow

import (
	"context"
	"strings"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/turn"
)

// handleConfirm processes replies to the dispatch preview. Confirmation and
// cancellation are resolved locally; everything else goes through the turn
// interpreter so free-text edits still work.
func (m *Machine) handleConfirm(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	if lang.IsConfirm(msg.Text) {
		return m.dispatchDraft(ctx, session, draft)
	}

	result := m.interpreter.Interpret(ctx, msg.Text, turn.FocusPreview, draft)

	// A place correction never spawns a second ticket, even when the reply
	// reads like a fresh problem statement.
	if result.IsPlaceCorrectionOnly {
		if value := placeCorrection(result); value != "" {
			m.applyPlace(session, draft, value)
			return m.send(ctx, session.ChatID, promptPreview(draft))
		}
	}

	if result.IsNewIncidentCandidate {
		session.PendingText = msg.Text
		session.SetMode(model.ModeConfirmNewTicketDecision)
		return m.send(ctx, session.ChatID, promptNewTicketDecision(msg.Text))
	}

	return m.applyOps(ctx, session, draft, result.Ops, msg.Text)
}

// applyOps runs interpreted edit operations against the draft. Returns after
// the first terminal op (confirm or cancel); field edits accumulate and end
// with a refreshed preview or a prompt for whatever became missing.
func (m *Machine) applyOps(ctx context.Context, session *model.Session, draft *model.Draft, ops []model.TurnOp, rawText string) error {
	changed := false
	showPreview := false

	for _, op := range ops {
		switch op.Kind {
		case model.OpConfirm:
			return m.dispatchDraft(ctx, session, draft)

		case model.OpCancel:
			return m.cancelSession(ctx, session)

		case model.OpSetField:
			switch op.Field {
			case "description":
				if v := strings.TrimSpace(op.Value); v != "" {
					draft.Description = v
					changed = true
				}
			case "place":
				if v := strings.TrimSpace(op.Value); v != "" {
					m.applyPlace(session, draft, v)
					changed = true
				}
			case "area":
				if code, err := model.ParseAreaCode(op.Value); err == nil {
					draft.SetArea(code)
					changed = true
				} else if code, ok := place.ResolveArea(op.Value); ok {
					draft.SetArea(code)
					changed = true
				}
			}

		case model.OpReplaceAreas, model.OpAddArea:
			// One destination area per ticket; both ops collapse to a set.
			if code, ok := place.ResolveArea(op.Value); ok {
				draft.SetArea(code)
				changed = true
			}

		case model.OpRemoveArea:
			draft.ClearArea()
			changed = true

		case model.OpAppendDetail:
			if v := strings.TrimSpace(op.Value); v != "" {
				draft.AppendDetail(v)
				changed = true
			}

		case model.OpShowPreview:
			showPreview = true
		}
	}

	if changed {
		return m.advanceDraft(ctx, session)
	}
	if showPreview {
		return m.send(ctx, session.ChatID, promptPreview(draft))
	}

	// Nothing recognized. Problem-looking text at the preview is either more
	// detail or a different incident; ask rather than guess.
	if lang.LooksLikeProblem(rawText) {
		session.PendingText = rawText
		session.PriorMode = session.Mode
		session.SetMode(model.ModeDifferentProblem)
		return m.send(ctx, session.ChatID, promptDifferentProblem())
	}

	return m.reprompt(ctx, session, promptPreview(draft))
}

// applyPlace writes a corrected place through the resolver so catalog labels
// stay canonical while unknown locations are kept as freeform.
func (m *Machine) applyPlace(session *model.Session, draft *model.Draft, value string) {
	if token, ok := place.RoomToken(value); ok {
		draft.SetPlace(place.RoomLabel(token), false)
	} else if label, ok := m.resolver.Catalog().Lookup(value); ok {
		draft.SetPlace(label, false)
	} else {
		draft.SetPlace(strings.TrimSpace(value), true)
	}
	session.LastPlace = draft.Place
}

// placeCorrection extracts the corrected place from a place-correction-only
// result: a place set_field op first, the place hint second.
func placeCorrection(result turn.Result) string {
	for _, op := range result.Ops {
		if op.Kind == model.OpSetField && op.Field == "place" && op.Value != "" {
			return op.Value
		}
	}
	return result.Hints.PlaceHint
}

// handleConfirmNewTicketDecision resolves what to do with problem-looking
// text that arrived at the preview.
func (m *Machine) handleConfirmNewTicketDecision(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	pending := session.PendingText

	switch pickOption(msg.Text, 3) {
	case 1: // separate ticket: batch both
		second := model.NewDraft(pending)
		if token, ok := place.RoomToken(pending); ok {
			second.SetPlace(place.RoomLabel(token), false)
		}
		session.MultipleDrafts = []*model.Draft{draft, second}
		session.Draft = nil
		session.RenumberDrafts()
		session.PendingText = ""
		session.SetMode(model.ModeMultipleTickets)
		return m.advanceBatch(ctx, session)

	case 2: // fold into the current draft as detail
		draft.AppendDetail(pending)
		session.PendingText = ""
		session.SetMode(model.ModeConfirm)
		return m.send(ctx, session.ChatID, promptPreview(draft))

	case 3: // discard the pending text
		session.PendingText = ""
		session.SetMode(model.ModeConfirm)
		return m.send(ctx, session.ChatID, promptPreview(draft))

	default:
		return m.reprompt(ctx, session, promptNewTicketDecision(pending))
	}
}
