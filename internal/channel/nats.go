package channel

import (
	"context"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	natsclient "github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/nats"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
)

// NATSChannel implements Sender and TeamNotifier over the NATS stream
// layer. The messaging bridge (the process that owns the actual chat
// transport) consumes the outbound subjects.
type NATSChannel struct {
	streams *natsclient.StreamManager
	logger  *logger.Logger
}

// NewNATSChannel creates a NATS-backed channel.
func NewNATSChannel(streams *natsclient.StreamManager, log *logger.Logger) *NATSChannel {
	return &NATSChannel{
		streams: streams,
		logger:  log,
	}
}

// SendText publishes outbound text for the chat's bridge subject.
func (c *NATSChannel) SendText(ctx context.Context, chatID, text string) error {
	if err := c.streams.PublishOutbound(chatID, text); err != nil {
		c.logger.Error("failed to publish outbound message",
			zap.String("chat_id", chatID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// NotifyTeam publishes a dispatched ticket to its area subject.
func (c *NATSChannel) NotifyTeam(ctx context.Context, ticket *model.Ticket) error {
	_, err := c.streams.PublishTicket(ctx, ticket)
	return err
}

// NotifyEvent publishes a ticket lifecycle event.
func (c *NATSChannel) NotifyEvent(ctx context.Context, ticket *model.Ticket, event *model.TicketEvent) error {
	_, err := c.streams.PublishEvent(ctx, ticket.Folio, event)
	return err
}
