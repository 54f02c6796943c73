package flow

import (
	"context"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

// handleDifferentProblem resolves problem-looking text that interrupted an
// active draft: finish the current one first, switch, or keep both.
func (m *Machine) handleDifferentProblem(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
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
	case 1: // finish the current report first
		session.PendingText = ""
		if err := m.send(ctx, session.ChatID, "Va, terminemos este primero. Cuando lo enviemos me mandas el otro de nuevo."); err != nil {
			return err
		}
		return m.advanceDraft(ctx, session)

	case 2: // switch to the new problem, discarding the current draft
		session.Reset()
		return m.startIncident(ctx, session, &model.InboundMessage{
			ID:      msg.ID,
			ChatID:  msg.ChatID,
			Text:    pending,
			IsGroup: msg.IsGroup,
		}, model.IntentHints{})

	case 3: // keep both as a batch
		second := model.NewDraft(pending)
		session.MultipleDrafts = []*model.Draft{draft, second}
		session.Draft = nil
		session.RenumberDrafts()
		session.PendingText = ""
		session.SetMode(model.ModeMultipleTickets)
		return m.advanceBatch(ctx, session)

	default:
		return m.reprompt(ctx, session, promptDifferentProblem())
	}
}

// handleDescriptionOrNew resolves whether captured text extends the current
// problem or starts another report.
func (m *Machine) handleDescriptionOrNew(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	pending := session.PendingText

	switch pickOption(msg.Text, 2) {
	case 1: // more detail on the same problem
		draft.AppendDetail(pending)
		session.PendingText = ""
		return m.advanceDraft(ctx, session)

	case 2: // separate report
		second := model.NewDraft(pending)
		session.MultipleDrafts = []*model.Draft{draft, second}
		session.Draft = nil
		session.RenumberDrafts()
		session.PendingText = ""
		session.SetMode(model.ModeMultipleTickets)
		return m.advanceBatch(ctx, session)

	default:
		return m.reprompt(ctx, session, promptDescriptionOrNew(pending))
	}
}

// handleContextSwitch resolves whether to resume a draft after an unrelated
// request was answered mid-draft.
func (m *Machine) handleContextSwitch(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	if m.targetDraft(session) == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	if lang.IsConfirm(msg.Text) || pickOption(msg.Text, 2) == 1 {
		session.PriorMode = model.ModeNeutral
		return m.advanceDraft(ctx, session)
	}
	if pickOption(msg.Text, 2) == 2 {
		return m.cancelSession(ctx, session)
	}
	return m.reprompt(ctx, session, "¿Seguimos con tu reporte? (1. sí / 2. cancelarlo)")
}

// handleChooseIncidentVersion resolves the one-or-many question raised when
// only the oracle saw several problems in a message.
func (m *Machine) handleChooseIncidentVersion(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	original := &model.InboundMessage{
		ID:      msg.ID,
		ChatID:  msg.ChatID,
		Text:    session.PendingText,
		IsGroup: msg.IsGroup,
	}

	switch pickOption(msg.Text, 2) {
	case 1: // a single report, keep the text whole
		incident := model.Incident{Text: session.PendingText}
		session.PendingIncidents = nil
		session.PendingText = ""
		return m.startSingle(ctx, session, original, incident, model.IntentHints{})

	case 2: // split as proposed
		incidents := session.PendingIncidents
		session.PendingIncidents = nil
		session.PendingText = ""
		return m.startBatch(ctx, session, original, incidents)

	default:
		return m.reprompt(ctx, session, promptIncidentVersions(session.PendingIncidents))
	}
}

// handleConfusedRecovery resolves the escalated recovery prompt shown after
// repeated unrecognized replies.
func (m *Machine) handleConfusedRecovery(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	switch pickOption(msg.Text, 2) {
	case 1: // keep going with the current draft
		session.ConfusedCount = 0
		return m.advanceDraft(ctx, session)
	case 2:
		return m.cancelSession(ctx, session)
	default:
		if lang.IsConfirm(msg.Text) {
			session.ConfusedCount = 0
			return m.advanceDraft(ctx, session)
		}
		return m.reprompt(ctx, session, promptConfusedRecovery(draft))
	}
}
