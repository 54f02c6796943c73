package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

func TestDispatchCreatesSessionLazily(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.Peek("chat1"))
	assert.Equal(t, 0, m.Len())

	msg := &model.InboundMessage{ChatID: "chat1", IsGroup: true, Text: "hola"}
	err := m.Dispatch(context.Background(), msg, func(ctx context.Context, s *model.Session, got *model.InboundMessage) error {
		assert.Equal(t, "chat1", s.ChatID)
		assert.True(t, s.IsGroup)
		assert.Same(t, msg, got)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	require.NotNil(t, m.Peek("chat1"))
}

func TestDispatchReusesSession(t *testing.T) {
	m := NewManager()
	var first *model.Session

	for i := 0; i < 3; i++ {
		msg := &model.InboundMessage{ChatID: "chat1"}
		err := m.Dispatch(context.Background(), msg, func(ctx context.Context, s *model.Session, _ *model.InboundMessage) error {
			if first == nil {
				first = s
			} else {
				assert.Same(t, first, s)
			}
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, m.Len())
}

func TestDispatchSerializesPerChat(t *testing.T) {
	m := NewManager()
	const messages = 50
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < messages; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			msg := &model.InboundMessage{ChatID: "chat1"}
			_ = m.Dispatch(context.Background(), msg, func(ctx context.Context, s *model.Session, _ *model.InboundMessage) error {
				// Handlers for one chat never interleave, so this append
				// needs no extra locking.
				order = append(order, i)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Len(t, order, messages)
	assert.Equal(t, 1, m.Len())
}

func TestDispatchIsolatesChats(t *testing.T) {
	m := NewManager()
	for _, chat := range []string{"a", "b", "c"} {
		msg := &model.InboundMessage{ChatID: chat}
		err := m.Dispatch(context.Background(), msg, func(ctx context.Context, s *model.Session, _ *model.InboundMessage) error {
			s.LastPlace = "from " + s.ChatID
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "from a", m.Peek("a").LastPlace)
	assert.Equal(t, "from b", m.Peek("b").LastPlace)
	assert.Nil(t, m.Peek("d"))
}
