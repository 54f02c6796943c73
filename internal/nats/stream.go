package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

const (
	// StreamName is the name of the tickets stream.
	StreamName = "TICKETS"

	// SubjectPrefix is the prefix for all ticket subjects.
	SubjectPrefix = "tickets"

	// OutboundSubjectPrefix is the prefix for outbound chat messages.
	OutboundSubjectPrefix = "chat.out"
)

// StreamManager handles JetStream stream operations for tickets.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the tickets stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	// Create stream
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "Ticket dispatches and lifecycle events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// AreaSubject returns the subject a team subscribes to for new tickets.
func AreaSubject(area model.AreaCode) string {
	return fmt.Sprintf("%s.area.%s", SubjectPrefix, area)
}

// EventSubject returns the subject for a ticket lifecycle event.
func EventSubject(folio, eventType string) string {
	return fmt.Sprintf("%s.event.%s.%s", SubjectPrefix, folio, eventType)
}

// OutboundSubject returns the subject the messaging bridge consumes for a chat.
func OutboundSubject(chatID string) string {
	return fmt.Sprintf("%s.%s", OutboundSubjectPrefix, chatID)
}

// PublishTicket publishes a dispatched ticket to its team's subject.
func (m *StreamManager) PublishTicket(ctx context.Context, ticket *model.Ticket) (uint64, error) {
	data, err := json.Marshal(ticket)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal ticket: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, AreaSubject(ticket.AreaCode), data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish ticket: %w", err)
	}

	return ack.Sequence, nil
}

// PublishEvent publishes a ticket lifecycle event.
func (m *StreamManager) PublishEvent(ctx context.Context, folio string, event *model.TicketEvent) (uint64, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, EventSubject(folio, event.Type), data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}

	return ack.Sequence, nil
}

// PublishOutbound publishes an outbound chat message for the messaging
// bridge to deliver. Core NATS, not JetStream: delivery is fire-and-forget
// and the bridge is expected to be online.
func (m *StreamManager) PublishOutbound(chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}
	return m.client.Conn().Publish(OutboundSubject(chatID), payload)
}
