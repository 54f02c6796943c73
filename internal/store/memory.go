package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

// MemoryStore is the in-memory Store implementation
// (would be replaced with a database in production).
type MemoryStore struct {
	mu       sync.RWMutex
	tickets  map[string]*model.Ticket
	byFolio  map[string]string // folio -> id
	folioSeq uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets: make(map[string]*model.Ticket),
		byFolio: make(map[string]string),
	}
}

// CreateTicket persists a new ticket.
func (s *MemoryStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticket.ID] = ticket
	s.byFolio[ticket.Folio] = ticket.ID
	return nil
}

// GetTicket retrieves a ticket by ID.
func (s *MemoryStore) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

// GetTicketByFolio retrieves a ticket by folio.
func (s *MemoryStore) GetTicketByFolio(ctx context.Context, folio string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byFolio[folio]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return s.tickets[id], nil
}

// UpdateStatus sets the ticket's lifecycle status.
func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

// AppendEvent attaches an immutable event to the ticket.
func (s *MemoryStore) AppendEvent(ctx context.Context, id string, event model.TicketEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	t.Events = append(t.Events, event)
	t.UpdatedAt = time.Now()
	return nil
}

// ListOpenForGroup returns the group's non-terminal tickets, oldest first.
func (s *MemoryStore) ListOpenForGroup(ctx context.Context, groupID string) ([]*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Ticket
	for _, t := range s.tickets {
		if t.GroupID == groupID && !t.Status.Terminal() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// NextFolioSeq returns the next value of the folio sequence.
func (s *MemoryStore) NextFolioSeq(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folioSeq++
	return s.folioSeq, nil
}
