package flow

import (
	"context"
	"strings"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
)

// handleEditDescription replaces the target draft's description.
func (m *Machine) handleEditDescription(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return m.reprompt(ctx, session, msgAskDescription)
	}

	draft.Description = text
	return m.finishEdit(ctx, session)
}

// handleEditPlace replaces the target draft's place through the resolver.
func (m *Machine) handleEditPlace(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	resolution := m.resolver.Resolve(msg.Text, session.PlaceAttemptCount)
	switch resolution.Kind {
	case place.ResolvedExact:
		draft.SetPlace(resolution.Place, false)
	case place.ResolvedFreeform:
		draft.SetPlace(resolution.Place, true)
	case place.ResolvedSuggestions:
		session.CandidatePlaces = resolution.Suggestions
		session.PendingText = msg.Text
		session.SetMode(model.ModeChoosePlaceFromCandidates)
		return m.send(ctx, session.ChatID, promptCandidates(resolution.Suggestions))
	default:
		session.PlaceAttemptCount++
		if session.PlaceAttemptCount > m.maxPlaceAttempts {
			draft.SetPlace(strings.TrimSpace(msg.Text), true)
			break
		}
		return m.reprompt(ctx, session, promptPlaceRetry())
	}

	session.LastPlace = draft.Place
	session.PlaceAttemptCount = 0
	return m.finishEdit(ctx, session)
}

// handleEditArea replaces the target draft's destination area.
func (m *Machine) handleEditArea(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	codes := place.ResolveAreas(msg.Text)
	switch len(codes) {
	case 1:
		draft.SetArea(codes[0])
		return m.finishEdit(ctx, session)
	case 0:
		return m.reprompt(ctx, session, promptAreaRetry())
	default:
		session.PendingAreas = codes
		session.PriorMode = session.Mode
		session.SetMode(model.ModeChooseAreaMulti)
		return m.send(ctx, session.ChatID, promptAreaPick(codes))
	}
}

// finishEdit routes back to wherever the edit came from: the batch preview
// when a batch draft was edited, otherwise the single-draft walk.
func (m *Machine) finishEdit(ctx context.Context, session *model.Session) error {
	if session.PriorMode == model.ModeConfirmBatch && session.InBatch() {
		session.PriorMode = model.ModeNeutral
		session.SetMode(model.ModeMultipleTickets)
		return m.advanceBatch(ctx, session)
	}
	session.PriorMode = model.ModeNeutral
	return m.advanceDraft(ctx, session)
}
