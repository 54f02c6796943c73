package model

import "time"

// Ticket is a persisted, dispatched incident with a lifecycle status.
// Owned by the persistence collaborator; the core reads it and requests
// status transitions.
type Ticket struct {
	ID     string `json:"id"`
	Folio  string `json:"folio"`
	Status Status `json:"status"`

	Place       string   `json:"place"`
	AreaCode    AreaCode `json:"area_code"`
	Description string   `json:"description"`

	ChatID  string `json:"chat_id"`
	GroupID string `json:"group_id,omitempty"`

	Attachments []string      `json:"attachments,omitempty"`
	Events      []TicketEvent `json:"events,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketEvent is an immutable append-only record attached to a ticket.
type TicketEvent struct {
	Type            string         `json:"type"`
	Payload         map[string]any `json:"payload,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	SourceMessageID string         `json:"source_message_id,omitempty"`
}

// Summary returns a one-line description used as oracle context.
func (t *Ticket) Summary() string {
	return t.Folio + " [" + string(t.Status) + "] " + t.Place + ": " + t.Description
}
