package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lifecycle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
)

// followupOption is one recent dispatch a follow-up message may refer to.
type followupOption struct {
	Folio string
	Place string
}

// findFeedbackTarget matches a message to a ticket. An explicit folio (in
// the text or a quoted message) is a certain match; otherwise the group's
// recent dispatches become candidate options for the user to pick from.
func (m *Machine) findFeedbackTarget(ctx context.Context, session *model.Session, msg *model.InboundMessage) (*model.Ticket, []followupOption) {
	folio, ok := lang.ExtractFolio(msg.Text)
	if !ok {
		folio, ok = lang.ExtractFolio(msg.QuotedText)
	}
	if ok {
		ticket, err := m.store.GetTicketByFolio(ctx, folio)
		if err == nil {
			return ticket, nil
		}
		if !errors.Is(err, store.ErrTicketNotFound) {
			m.logger.WithChat(session.ChatID).Error("feedback target lookup failed", zap.Error(err))
		}
		return nil, nil
	}

	return nil, m.followupOptions(session.ChatID)
}

func (m *Machine) followupOptions(chatID string) []followupOption {
	records := m.dispatches.Recent(chatID)
	options := make([]followupOption, 0, len(records))
	seen := map[string]bool{}
	for _, r := range records {
		if seen[r.Folio] {
			continue
		}
		seen[r.Folio] = true
		options = append(options, followupOption{Folio: r.Folio, Place: r.Place})
	}
	return options
}

// routeFeedback sends a post-dispatch message down the right path: process
// when the target ticket is certain, disambiguate when recent dispatches
// make it ambiguous, ask for a folio otherwise.
func (m *Machine) routeFeedback(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	target, options := m.findFeedbackTarget(ctx, session, msg)

	switch {
	case target != nil:
		return m.processFeedback(ctx, session, msg, target)

	case len(options) == 1:
		session.PendingFolio = options[0].Folio
		session.PendingText = msg.Text
		session.SetMode(model.ModeFollowupDecision)
		return m.send(ctx, session.ChatID, promptFollowupDecision(options[0].Folio, options[0].Place))

	case len(options) > 1:
		session.PendingText = msg.Text
		session.SetMode(model.ModeFollowupPlaceDecision)
		return m.send(ctx, session.ChatID, promptFollowupPlaceDecision(options))

	default:
		return m.send(ctx, session.ChatID,
			"¿De qué ticket me hablas? Mándame el folio (ej. INS-000123) o responde al mensaje del ticket.")
	}
}

// handleFollowupDecision resolves "is this about ticket X or a new problem?".
func (m *Machine) handleFollowupDecision(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		session.Reset()
		return m.send(ctx, session.ChatID, msgCanceled)
	}

	folio := session.PendingFolio
	pending := session.PendingText

	switch pickOption(msg.Text, 2) {
	case 1: // about the recent ticket
		session.PendingFolio = ""
		session.PendingText = ""
		session.SetMode(model.ModeNeutral)
		ticket, err := m.store.GetTicketByFolio(ctx, folio)
		if err != nil {
			m.logger.WithChat(session.ChatID).Error("followup ticket lookup failed", zap.Error(err))
			return m.send(ctx, session.ChatID, msgDispatchRetryable)
		}
		return m.processFeedback(ctx, session, m.pendingMessage(msg, pending), ticket)

	case 2: // a new problem
		session.PendingFolio = ""
		session.PendingText = ""
		session.SetMode(model.ModeNeutral)
		return m.startIncident(ctx, session, m.pendingMessage(msg, pending), model.IntentHints{})

	default:
		rec := m.recordForFolio(session.ChatID, folio)
		return m.reprompt(ctx, session, promptFollowupDecision(folio, rec.Place))
	}
}

// handleFollowupPlaceDecision resolves which of several recent tickets a
// follow-up refers to, or that it refers to none of them.
func (m *Machine) handleFollowupPlaceDecision(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		session.Reset()
		return m.send(ctx, session.ChatID, msgCanceled)
	}

	options := m.followupOptions(session.ChatID)
	pending := session.PendingText

	n := pickOption(msg.Text, len(options)+1)
	switch {
	case n >= 1 && n <= len(options):
		session.PendingText = ""
		session.SetMode(model.ModeNeutral)
		ticket, err := m.store.GetTicketByFolio(ctx, options[n-1].Folio)
		if err != nil {
			m.logger.WithChat(session.ChatID).Error("followup ticket lookup failed", zap.Error(err))
			return m.send(ctx, session.ChatID, msgDispatchRetryable)
		}
		return m.processFeedback(ctx, session, m.pendingMessage(msg, pending), ticket)

	case n == len(options)+1:
		session.PendingText = ""
		session.SetMode(model.ModeNeutral)
		return m.startIncident(ctx, session, m.pendingMessage(msg, pending), model.IntentHints{})

	default:
		return m.reprompt(ctx, session, promptFollowupPlaceDecision(options))
	}
}

// pendingMessage rebuilds the original follow-up message after a
// disambiguation round-trip consumed the reply slot.
func (m *Machine) pendingMessage(reply *model.InboundMessage, text string) *model.InboundMessage {
	return &model.InboundMessage{
		ID:         reply.ID,
		ChatID:     reply.ChatID,
		Text:       text,
		IsGroup:    reply.IsGroup,
		ReceivedAt: reply.ReceivedAt,
	}
}

func (m *Machine) recordForFolio(chatID, folio string) followupOption {
	for _, o := range m.followupOptions(chatID) {
		if o.Folio == folio {
			return o
		}
	}
	return followupOption{Folio: folio}
}

// processFeedback classifies a follow-up against its ticket, runs the
// lifecycle engine, persists the event and any transition, and notifies the
// counterpart side.
func (m *Machine) processFeedback(ctx context.Context, session *model.Session, msg *model.InboundMessage, ticket *model.Ticket) error {
	roleHint := model.RoleTeam
	if msg.ChatID == ticket.ChatID {
		roleHint = model.RoleRequester
	}

	fc := m.classifyFeedback(ctx, msg.Text, roleHint, ticket)
	if !fc.IsRelevant {
		return m.send(ctx, session.ChatID, msgNotUnderstood)
	}
	if fc.Role == "" {
		fc.Role = roleHint
	}

	outcome := m.lifecycle.Transition(lifecycle.Input{
		Current:        ticket.Status,
		Actor:          fc.Role,
		Classification: fc,
	})

	event := model.TicketEvent{
		Type: "feedback",
		Payload: map[string]any{
			"role":          string(fc.Role),
			"status_intent": string(fc.StatusIntent),
			"note":          feedbackNote(fc, msg.Text),
			"rule":          outcome.Rule,
		},
		CreatedAt:       time.Now(),
		SourceMessageID: msg.ID,
	}
	if fc.RequesterSide != model.SideNone {
		event.Payload["requester_side"] = string(fc.RequesterSide)
	}
	if err := m.store.AppendEvent(ctx, ticket.ID, event); err != nil {
		m.logger.WithTicket(ticket.Folio).Error("failed to append feedback event", zap.Error(err))
	}

	if !outcome.Changed {
		return m.send(ctx, session.ChatID, fmt.Sprintf("Anotado en el ticket %s.", ticket.Folio))
	}

	if err := m.store.UpdateStatus(ctx, ticket.ID, outcome.Status); err != nil {
		m.logger.WithTicket(ticket.Folio).Error("failed to update ticket status", zap.Error(err))
		return m.send(ctx, session.ChatID, msgDispatchRetryable)
	}
	from := ticket.Status
	ticket.Status = outcome.Status

	if err := m.notifier.NotifyEvent(ctx, ticket, &event); err != nil {
		m.logger.WithTicket(ticket.Folio).Warn("failed to notify team of transition", zap.Error(err))
	}

	if outcome.Status.Terminal() {
		m.dispatches.Forget(ticket.ChatID, ticket.Folio)
	}

	// The counterpart side hears about transitions it must act on.
	if outcome.Rule == "team_done_claim" && msg.ChatID != ticket.ChatID {
		confirm := fmt.Sprintf(
			"El equipo marcó atendido el ticket %s (%s). ¿Quedó resuelto? Respóndeme aquí si sigue el problema.",
			ticket.Folio, ticket.Place)
		if err := m.sender.SendText(ctx, ticket.ChatID, confirm); err != nil {
			m.logger.WithTicket(ticket.Folio).Warn("failed to notify requester", zap.Error(err))
		}
	}

	m.logger.WithTicket(ticket.Folio).Info("ticket status changed",
		zap.String("from", string(from)),
		zap.String("to", string(outcome.Status)),
		zap.String("rule", outcome.Rule),
	)
	return m.send(ctx, session.ChatID, msgStatusChanged(ticket, outcome.Status))
}

// classifyFeedback asks the oracle, falling back to the local heuristic.
func (m *Machine) classifyFeedback(ctx context.Context, text string, roleHint model.FeedbackRole, ticket *model.Ticket) *model.FeedbackClassification {
	if m.oracle != nil {
		history := make([]string, 0, len(ticket.Events))
		for _, e := range ticket.Events {
			if note, ok := e.Payload["note"].(string); ok && note != "" {
				history = append(history, note)
			}
		}
		fc, err := m.oracle.ClassifyFeedback(ctx, text, roleHint, ticket.Summary(), history)
		if err == nil {
			return fc
		}
		m.logger.WithTicket(ticket.Folio).Warn("oracle feedback classification failed, using heuristic", zap.Error(err))
	}
	return heuristicFeedback(text, roleHint)
}

// heuristicFeedback is the offline fallback classifier for follow-ups.
func heuristicFeedback(text string, role model.FeedbackRole) *model.FeedbackClassification {
	norm := lang.Normalize(text)

	fc := &model.FeedbackClassification{
		IsRelevant:     true,
		Role:           role,
		StatusIntent:   model.StatusIntentNone,
		RequesterSide:  model.SideNone,
		NormalizedNote: strings.TrimSpace(text),
		Confidence:     0.5,
	}

	switch {
	case containsAny(norm, "ya no hace falta", "cancelalo", "cancelar", "cancela el", "ya no es necesario"):
		fc.StatusIntent = model.StatusIntentCancelRequest

	case containsAny(norm, "sigue igual", "sigue fallando", "sigue el problema", "no quedo", "aun no", "todavia no", "otra vez", "de nuevo"):
		fc.RequesterSide = model.SideStillBroken
		fc.StatusIntent = model.StatusIntentReopenRequest

	case containsAny(norm, "ya quedo", "ya esta listo", "resuelto", "terminado", "ya lo arregl", "listo el"):
		if role == model.RoleTeam {
			fc.StatusIntent = model.StatusIntentDoneClaim
		} else {
			fc.RequesterSide = model.SideSatisfied
		}

	case containsAny(norm, "gracias", "perfecto", "todo bien", "quedo bien"):
		fc.RequesterSide = model.SideSatisfied

	case containsAny(norm, "en proceso", "ya voy", "vamos para alla", "estamos en eso", "lo estamos viendo", "en camino"):
		fc.StatusIntent = model.StatusIntentInProgress

	default:
		fc.IsRelevant = false
		fc.Confidence = 0.3
	}

	return fc
}

func feedbackNote(fc *model.FeedbackClassification, raw string) string {
	if fc.NormalizedNote != "" {
		return fc.NormalizedNote
	}
	return strings.TrimSpace(raw)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
