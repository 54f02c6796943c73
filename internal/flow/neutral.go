package flow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/oracle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
)

// handleNeutral routes a message with no draft in progress.
func (m *Machine) handleNeutral(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	result := m.router.Classify(ctx, msg.Text, oracle.Context{
		Mode:      session.Mode.String(),
		LastPlace: session.LastPlace,
		IsGroup:   session.IsGroup,
	})

	switch result.Intent {
	case model.IntentGreeting:
		return m.send(ctx, session.ChatID, msgGreeting)

	case model.IntentCancel:
		return m.send(ctx, session.ChatID, msgNothingActive)

	case model.IntentSearch:
		return m.handleSearch(ctx, session, msg)

	case model.IntentClose:
		return m.routeFeedback(ctx, session, msg)

	case model.IntentNewIncident:
		return m.startIncident(ctx, session, msg, result.Hints)

	default:
		if result.Hints.MaybeIncident {
			return m.startIncident(ctx, session, msg, result.Hints)
		}
		// A message that references a recent ticket is feedback even when
		// the intent reads as "other".
		if target, options := m.findFeedbackTarget(ctx, session, msg); target != nil || len(options) > 0 {
			return m.routeFeedback(ctx, session, msg)
		}
		session.ConfusedCount++
		return m.send(ctx, session.ChatID, msgNotUnderstood)
	}
}

// handleSearch answers a ticket status lookup.
func (m *Machine) handleSearch(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	folio, ok := lang.ExtractFolio(msg.Text)
	if !ok {
		folio, ok = lang.ExtractFolio(msg.QuotedText)
	}
	if !ok {
		// No folio named: list the group's open tickets.
		tickets, err := m.store.ListOpenForGroup(ctx, session.ChatID)
		if err != nil {
			m.logger.WithChat(session.ChatID).Error("search lookup failed", zap.Error(err))
			return m.send(ctx, session.ChatID, msgDispatchRetryable)
		}
		if len(tickets) == 0 {
			return m.send(ctx, session.ChatID, "No hay tickets abiertos aquí.")
		}
		reply := "Tickets abiertos:"
		for _, t := range tickets {
			reply += "\n• " + t.Folio + " — " + t.Place + " (" + statusLabel(t.Status) + ")"
		}
		return m.send(ctx, session.ChatID, reply)
	}

	ticket, err := m.store.GetTicketByFolio(ctx, folio)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			return m.send(ctx, session.ChatID, "No encontré el ticket "+folio+".")
		}
		m.logger.WithChat(session.ChatID).Error("search lookup failed", zap.Error(err))
		return m.send(ctx, session.ChatID, msgDispatchRetryable)
	}
	return m.send(ctx, session.ChatID, msgTicketStatus(ticket))
}
