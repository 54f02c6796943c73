package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionResetClearsDraftingState(t *testing.T) {
	s := NewSession("chat-1", true)
	s.Mode = ModeConfirm
	s.Draft = NewDraft("fuga")
	s.MultipleDrafts = []*Draft{NewDraft("a"), NewDraft("b")}
	s.CandidatePlaces = []PlaceCandidate{{Label: "Alberca"}}
	s.PendingText = "pendiente"
	s.PendingPlace = "Lobby"
	s.PendingIncidents = []Incident{{Text: "x"}}
	s.PendingAreas = []AreaCode{AreaMaintenance}
	s.EditTarget = 2
	s.PriorMode = ModeConfirmBatch
	s.PlaceAttemptCount = 1
	s.ConfusedCount = 2
	s.PendingFolio = "INS-000001"
	s.LastPlace = "Habitación 1205"

	s.Reset()

	assert.Equal(t, ModeNeutral, s.Mode)
	assert.Nil(t, s.Draft)
	assert.Nil(t, s.MultipleDrafts)
	assert.Nil(t, s.CandidatePlaces)
	assert.Empty(t, s.PendingText)
	assert.Empty(t, s.PendingPlace)
	assert.Nil(t, s.PendingIncidents)
	assert.Nil(t, s.PendingAreas)
	assert.Zero(t, s.EditTarget)
	assert.Equal(t, ModeNeutral, s.PriorMode)
	assert.Zero(t, s.PlaceAttemptCount)
	assert.Zero(t, s.ConfusedCount)
	assert.Empty(t, s.PendingFolio)
	assert.Equal(t, "chat-1", s.ChatID, "identity survives reset")
}

func TestSessionActiveDraft(t *testing.T) {
	s := NewSession("chat-1", false)
	assert.Nil(t, s.ActiveDraft())

	single := NewDraft("sin luz")
	s.Draft = single
	assert.Same(t, single, s.ActiveDraft())

	s.Draft = nil
	complete := NewDraft("fuga")
	complete.SetPlace("Lobby", false)
	complete.SetArea(AreaMaintenance)
	incomplete := NewDraft("sin toallas")
	s.MultipleDrafts = []*Draft{complete, incomplete}
	assert.Same(t, incomplete, s.ActiveDraft(), "first incomplete batch draft is active")
}

func TestSessionCollapseBatch(t *testing.T) {
	s := NewSession("chat-1", false)
	s.MultipleDrafts = []*Draft{NewDraft("a"), NewDraft("b")}
	assert.False(t, s.CollapseBatch())

	s.MultipleDrafts = s.MultipleDrafts[:1]
	require.True(t, s.CollapseBatch())
	assert.NotNil(t, s.Draft)
	assert.Zero(t, s.Draft.TicketNumber)
	assert.False(t, s.InBatch())
}

func TestSessionRenumberDrafts(t *testing.T) {
	s := NewSession("chat-1", false)
	s.MultipleDrafts = []*Draft{NewDraft("a"), NewDraft("b"), NewDraft("c")}
	s.RenumberDrafts()
	s.MultipleDrafts = append(s.MultipleDrafts[:1], s.MultipleDrafts[2:]...)
	s.RenumberDrafts()

	assert.Equal(t, 1, s.MultipleDrafts[0].TicketNumber)
	assert.Equal(t, 2, s.MultipleDrafts[1].TicketNumber)
}

func TestModeEnum(t *testing.T) {
	for _, m := range AllModes() {
		assert.True(t, m.Valid(), m.String())
		assert.NotEqual(t, "unknown", m.String())
	}
	assert.False(t, Mode(-1).Valid())
	assert.False(t, modeCount.Valid())
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]Status{
		"open":                  StatusOpen,
		"new":                   StatusOpen,
		"pending":               StatusOpen,
		"in_progress":           StatusInProgress,
		"awaiting_confirmation": StatusAwaitingConfirmation,
		"resolved":              StatusDone,
		"closed":                StatusDone,
		"done":                  StatusDone,
		"canceled":              StatusCanceled,
		"garbage":               StatusOpen,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeStatus(raw), raw)
	}

	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusCanceled.Terminal())
	assert.False(t, StatusAwaitingConfirmation.Terminal())
}
