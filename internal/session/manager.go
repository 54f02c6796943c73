// Package session owns the per-chat session registry and serializes message
// handling per chat identity.
package session

import (
	"context"
	"sync"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/metrics"
)

// Handler processes one inbound message against its chat's session.
type Handler func(ctx context.Context, session *model.Session, msg *model.InboundMessage) error

// Manager holds one session per chat identity, created lazily and never
// deleted, only reset. Messages for the same chat run strictly in arrival
// order; different chats run concurrently.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *model.Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// Dispatch runs the handler against the chat's session, serialized per chat.
// The entry lock is held for the whole handler so a slow oracle call for one
// chat never reorders that chat's messages.
func (m *Manager) Dispatch(ctx context.Context, msg *model.InboundMessage, handle Handler) error {
	e := m.entry(msg.ChatID, msg.IsGroup)

	e.mu.Lock()
	defer e.mu.Unlock()
	return handle(ctx, e.session, msg)
}

func (m *Manager) entry(chatID string, isGroup bool) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[chatID]
	if !ok {
		e = &entry{session: model.NewSession(chatID, isGroup)}
		m.entries[chatID] = e
		metrics.SessionsActive.Set(float64(len(m.entries)))
	}
	return e
}

// Peek returns a copy-free view of a chat's session for read-only surfaces.
// Returns nil when the chat has never messaged.
func (m *Manager) Peek(chatID string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[chatID]; ok {
		return e.session
	}
	return nil
}

// Len reports how many chats have sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
