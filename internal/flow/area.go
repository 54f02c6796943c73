package flow

import (
	"context"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
)

// handleChooseAreaSingle resolves the destination area for a single draft.
func (m *Machine) handleChooseAreaSingle(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
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
	case 0:
		if lang.LooksLikeProblem(msg.Text) {
			session.PendingText = msg.Text
			session.SetMode(model.ModeDescriptionOrNew)
			return m.send(ctx, session.ChatID, promptDescriptionOrNew(msg.Text))
		}
		return m.reprompt(ctx, session, promptAreaRetry())
	case 1:
		draft.SetArea(codes[0])
		return m.advanceDraft(ctx, session)
	default:
		// Reply named several areas; a ticket routes to exactly one.
		session.PendingAreas = codes
		session.SetMode(model.ModeChooseAreaMulti)
		return m.send(ctx, session.ChatID, promptAreaPick(codes))
	}
}

// handleChooseAreaMulti narrows a multi-area reply down to one area.
func (m *Machine) handleChooseAreaMulti(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	if n := pickOption(msg.Text, len(session.PendingAreas)); n > 0 {
		draft.SetArea(session.PendingAreas[n-1])
		session.PendingAreas = nil
		return m.advanceDraft(ctx, session)
	}

	if codes := place.ResolveAreas(msg.Text); len(codes) == 1 {
		draft.SetArea(codes[0])
		session.PendingAreas = nil
		return m.advanceDraft(ctx, session)
	}

	return m.reprompt(ctx, session, promptAreaPick(session.PendingAreas))
}

// handleAskAreaMultiple resolves the area for the current draft of a batch,
// then moves on to the next draft missing one.
func (m *Machine) handleAskAreaMultiple(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.batchDraft(session, session.EditTarget)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	codes := place.ResolveAreas(msg.Text)
	if len(codes) != 1 {
		return m.reprompt(ctx, session, promptBatchArea(draft))
	}
	draft.SetArea(codes[0])
	return m.advanceBatch(ctx, session)
}
