// Package dispatch validates completed drafts and turns them into
// persisted tickets.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/cache"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/channel"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/metrics"
)

// ValidationError names the field blocking dispatch.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("draft is not dispatchable: missing %s", e.Field)
}

// Receipt is returned on successful dispatch.
type Receipt struct {
	TicketID string
	Folio    string
}

// Gate validates a draft's completeness, persists it as a ticket and
// notifies the destination team.
type Gate struct {
	store       store.Store
	notifier    channel.TeamNotifier
	dispatches  *cache.DispatchCache
	folioPrefix string
	logger      *logger.Logger
}

// NewGate creates a dispatch gate.
func NewGate(st store.Store, notifier channel.TeamNotifier, dispatches *cache.DispatchCache, folioPrefix string, log *logger.Logger) *Gate {
	if folioPrefix == "" {
		folioPrefix = "INS"
	}
	return &Gate{
		store:       st,
		notifier:    notifier,
		dispatches:  dispatches,
		folioPrefix: folioPrefix,
		logger:      log,
	}
}

// Dispatch persists the draft. An incomplete draft yields a
// *ValidationError naming the missing field. Store failures are returned
// to the caller as retryable: the session must not be reset so the draft
// is not lost.
func (g *Gate) Dispatch(ctx context.Context, session *model.Session, draft *model.Draft) (*Receipt, error) {
	if draft == nil {
		return nil, &ValidationError{Field: "description"}
	}
	if field := draft.MissingField(); field != "" {
		return nil, &ValidationError{Field: field}
	}

	seq, err := g.store.NextFolioSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate folio: %w", err)
	}

	now := time.Now()
	ticket := &model.Ticket{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Folio:       fmt.Sprintf("%s-%06d", g.folioPrefix, seq),
		Status:      model.StatusOpen,
		Place:       draft.Place,
		AreaCode:    draft.AreaCode,
		Description: draft.Description,
		ChatID:      session.ChatID,
		Attachments: append([]string(nil), draft.PendingMedia...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// GroupID doubles as the listing key for direct chats.
	ticket.GroupID = session.ChatID
	ticket.Events = append(ticket.Events, model.TicketEvent{
		Type: "created",
		Payload: map[string]any{
			"original_text":  draft.OriginalText,
			"freeform_place": draft.FreeformPlace,
		},
		CreatedAt: now,
	})

	if err := g.store.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to persist ticket: %w", err)
	}

	if g.notifier != nil {
		if err := g.notifier.NotifyTeam(ctx, ticket); err != nil {
			// The ticket exists; notification failure must not fail the
			// dispatch. The team can still find it through the read API.
			g.logger.Warn("team notification failed",
				zap.String("folio", ticket.Folio),
				zap.Error(err),
			)
		}
	}

	if g.dispatches != nil {
		g.dispatches.Record(groupKey(session), cache.DispatchRecord{
			Folio:        ticket.Folio,
			Place:        ticket.Place,
			ChatID:       session.ChatID,
			DispatchedAt: now,
		})
	}

	metrics.DispatchesTotal.WithLabelValues(string(ticket.AreaCode)).Inc()
	g.logger.Info("ticket dispatched",
		zap.String("folio", ticket.Folio),
		zap.String("area", string(ticket.AreaCode)),
		zap.String("place", ticket.Place),
		zap.String("chat_id", session.ChatID),
	)

	return &Receipt{TicketID: ticket.ID, Folio: ticket.Folio}, nil
}

func groupKey(session *model.Session) string {
	return session.ChatID
}
