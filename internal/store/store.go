// Package store defines the persistence collaborator for tickets.
package store

import (
	"context"
	"errors"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

// ErrTicketNotFound is returned when no ticket matches the lookup.
var ErrTicketNotFound = errors.New("ticket not found")

// Store is the single explicit interface the persistence collaborator must
// satisfy. The core only reads tickets and requests transitions through it.
type Store interface {
	// CreateTicket persists a new ticket.
	CreateTicket(ctx context.Context, ticket *model.Ticket) error

	// GetTicket retrieves a ticket by ID.
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)

	// GetTicketByFolio retrieves a ticket by its human-readable folio.
	GetTicketByFolio(ctx context.Context, folio string) (*model.Ticket, error)

	// UpdateStatus sets the ticket's lifecycle status.
	UpdateStatus(ctx context.Context, id string, status model.Status) error

	// AppendEvent attaches an immutable event to the ticket.
	AppendEvent(ctx context.Context, id string, event model.TicketEvent) error

	// ListOpenForGroup returns the group's tickets that are not terminal.
	ListOpenForGroup(ctx context.Context, groupID string) ([]*model.Ticket, error)

	// NextFolioSeq returns the next value of the folio sequence.
	NextFolioSeq(ctx context.Context) (uint64, error)
}
