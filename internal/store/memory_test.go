package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ticket := &model.Ticket{
		ID:     "t1",
		Folio:  "INS-000001",
		Status: model.StatusOpen,
	}
	require.NoError(t, s.CreateTicket(ctx, ticket))

	got, err := s.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "INS-000001", got.Folio)

	got, err = s.GetTicketByFolio(ctx, "INS-000001")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	_, err = s.GetTicket(ctx, "missing")
	assert.ErrorIs(t, err, ErrTicketNotFound)
	_, err = s.GetTicketByFolio(ctx, "INS-999999")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestMemoryStoreUpdateStatusAndEvents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateTicket(ctx, &model.Ticket{ID: "t1", Status: model.StatusOpen}))

	require.NoError(t, s.UpdateStatus(ctx, "t1", model.StatusInProgress))
	got, err := s.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, s.AppendEvent(ctx, "t1", model.TicketEvent{Type: "feedback"}))
	got, _ = s.GetTicket(ctx, "t1")
	require.Len(t, got.Events, 1)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", model.StatusDone), ErrTicketNotFound)
	assert.ErrorIs(t, s.AppendEvent(ctx, "missing", model.TicketEvent{}), ErrTicketNotFound)
}

func TestMemoryStoreListOpenForGroup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	seed := []*model.Ticket{
		{ID: "a", GroupID: "g1", Status: model.StatusOpen, CreatedAt: base.Add(2 * time.Second)},
		{ID: "b", GroupID: "g1", Status: model.StatusInProgress, CreatedAt: base},
		{ID: "c", GroupID: "g1", Status: model.StatusDone, CreatedAt: base.Add(time.Second)},
		{ID: "d", GroupID: "g2", Status: model.StatusOpen, CreatedAt: base},
		{ID: "e", GroupID: "g1", Status: model.StatusCanceled, CreatedAt: base},
	}
	for _, ticket := range seed {
		require.NoError(t, s.CreateTicket(ctx, ticket))
	}

	open, err := s.ListOpenForGroup(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, open, 2, "terminal tickets and other groups are excluded")
	assert.Equal(t, "b", open[0].ID, "oldest first")
	assert.Equal(t, "a", open[1].ID)

	open, err = s.ListOpenForGroup(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestMemoryStoreFolioSequence(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for want := uint64(1); want <= 3; want++ {
		got, err := s.NextFolioSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
