package model

import "time"

// PlaceCandidate is a transient ranked suggestion produced by the place
// resolver while a disambiguation prompt is pending.
type PlaceCandidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Via   string  `json:"via"` // "alias", "fuzzy" or "pattern"
}

// Session is the per-conversation drafting state. One Session exists per
// chat identity; it is mutated exclusively by the draft state machine, one
// inbound message at a time, and is never deleted, only reset.
type Session struct {
	ChatID  string `json:"chat_id"`
	IsGroup bool   `json:"is_group"`

	Mode           Mode     `json:"mode"`
	Draft          *Draft   `json:"draft,omitempty"`
	MultipleDrafts []*Draft `json:"multiple_drafts,omitempty"`

	CandidatePlaces []PlaceCandidate `json:"candidate_places,omitempty"`

	// Scratch fields for deferred decisions: text and place captured while a
	// disambiguation prompt is pending.
	PendingText      string     `json:"pending_text,omitempty"`
	PendingPlace     string     `json:"pending_place,omitempty"`
	PendingIncidents []Incident `json:"pending_incidents,omitempty"`
	PendingAreas     []AreaCode `json:"pending_areas,omitempty"`

	// EditTarget is the 1-based batch position an edit command refers to;
	// 0 targets the single draft.
	EditTarget int `json:"edit_target,omitempty"`

	// PriorMode is where a context switch returns to.
	PriorMode Mode `json:"prior_mode,omitempty"`

	PlaceAttemptCount int `json:"place_attempt_count"`
	ConfusedCount     int `json:"confused_count"`

	// LastPlace is the most recently resolved place; batch fragments without
	// their own place inherit it.
	LastPlace string `json:"last_place,omitempty"`

	// PendingFolio is the ticket a followup decision refers to.
	PendingFolio string `json:"pending_folio,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a neutral session for a chat identity.
func NewSession(chatID string, isGroup bool) *Session {
	now := time.Now()
	return &Session{
		ChatID:    chatID,
		IsGroup:   isGroup,
		Mode:      ModeNeutral,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset returns the session to neutral and clears all drafting state.
// Called after dispatch, cancel or abandonment.
func (s *Session) Reset() {
	s.Mode = ModeNeutral
	s.Draft = nil
	s.MultipleDrafts = nil
	s.CandidatePlaces = nil
	s.PendingText = ""
	s.PendingPlace = ""
	s.PendingIncidents = nil
	s.PendingAreas = nil
	s.EditTarget = 0
	s.PriorMode = ModeNeutral
	s.PlaceAttemptCount = 0
	s.ConfusedCount = 0
	s.PendingFolio = ""
	s.UpdatedAt = time.Now()
}

// SetMode transitions the session to the given mode.
func (s *Session) SetMode(m Mode) {
	s.Mode = m
	s.UpdatedAt = time.Now()
}

// ActiveDraft returns the draft currently being completed: the single draft,
// or the first incomplete draft of a batch.
func (s *Session) ActiveDraft() *Draft {
	if s.Draft != nil {
		return s.Draft
	}
	for _, d := range s.MultipleDrafts {
		if !d.Dispatchable() {
			return d
		}
	}
	if len(s.MultipleDrafts) > 0 {
		return s.MultipleDrafts[0]
	}
	return nil
}

// InBatch reports whether the session is working a multi-draft batch.
func (s *Session) InBatch() bool {
	return len(s.MultipleDrafts) > 0
}

// RenumberDrafts reassigns batch positions after a deletion.
func (s *Session) RenumberDrafts() {
	for i, d := range s.MultipleDrafts {
		d.TicketNumber = i + 1
	}
}

// CollapseBatch converts a one-draft batch back into a single draft.
// Returns true when the collapse happened.
func (s *Session) CollapseBatch() bool {
	if len(s.MultipleDrafts) != 1 {
		return false
	}
	s.Draft = s.MultipleDrafts[0]
	s.Draft.TicketNumber = 0
	s.MultipleDrafts = nil
	return true
}
