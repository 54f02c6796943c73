package flow

import (
	"context"
	"strconv"
	"strings"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lang"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
)

// handleAskPlace resolves the reply into the active draft's place.
func (m *Machine) handleAskPlace(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	// A ticket lookup mid-draft is answered inline, then the draft asks
	// whether to resume.
	if _, ok := lang.ExtractFolio(msg.Text); ok && lang.IsSearch(msg.Text) {
		session.PriorMode = session.Mode
		if err := m.handleSearch(ctx, session, msg); err != nil {
			return err
		}
		session.SetMode(model.ModeContextSwitch)
		return m.send(ctx, session.ChatID, "¿Seguimos con tu reporte? (1. sí / 2. cancelarlo)")
	}

	// A reply that looks like a *different* incident with its own place must
	// not silently overwrite the draft: surface the conflict.
	if lang.LooksLikeProblem(msg.Text) {
		if token, ok := place.RoomToken(msg.Text); ok {
			session.PendingText = msg.Text
			session.PendingPlace = place.RoomLabel(token)
			session.SetMode(model.ModeAskPlaceConflict)
			return m.send(ctx, session.ChatID, promptPlaceConflict(orPending(draft.Place), session.PendingPlace))
		}
		// Problem text without a place: same problem's detail, or a new one?
		session.PendingText = msg.Text
		session.SetMode(model.ModeDescriptionOrNew)
		return m.send(ctx, session.ChatID, promptDescriptionOrNew(msg.Text))
	}

	return m.resolvePlaceReply(ctx, session, draft, msg.Text)
}

// resolvePlaceReply runs the place resolver with the session's attempt
// count and applies the outcome.
func (m *Machine) resolvePlaceReply(ctx context.Context, session *model.Session, draft *model.Draft, text string) error {
	resolution := m.resolver.Resolve(text, session.PlaceAttemptCount)

	switch resolution.Kind {
	case place.ResolvedExact:
		draft.SetPlace(resolution.Place, false)
		session.LastPlace = resolution.Place
		session.PlaceAttemptCount = 0
		return m.advanceDraft(ctx, session)

	case place.ResolvedFreeform:
		// Accepted without catalog backing; tagged so the caller may later
		// offer to add it to the catalog.
		draft.SetPlace(resolution.Place, true)
		session.LastPlace = resolution.Place
		session.PlaceAttemptCount = 0
		return m.advanceDraft(ctx, session)

	case place.ResolvedSuggestions:
		session.CandidatePlaces = resolution.Suggestions
		session.PendingText = text
		session.SetMode(model.ModeChoosePlaceFromCandidates)
		return m.send(ctx, session.ChatID, promptCandidates(resolution.Suggestions))

	default:
		session.PlaceAttemptCount++
		if session.PlaceAttemptCount > m.maxPlaceAttempts {
			// Degrade to freeform acceptance instead of looping forever.
			draft.SetPlace(strings.TrimSpace(text), true)
			session.LastPlace = draft.Place
			session.PlaceAttemptCount = 0
			return m.advanceDraft(ctx, session)
		}
		return m.reprompt(ctx, session, promptPlaceRetry())
	}
}

// handleChoosePlaceFromCandidates resolves a pick among ranked suggestions.
func (m *Machine) handleChoosePlaceFromCandidates(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	norm := lang.Normalize(msg.Text)

	// Numeric pick.
	if n, err := strconv.Atoi(norm); err == nil {
		if n >= 1 && n <= len(session.CandidatePlaces) {
			return m.acceptCandidate(ctx, session, draft, session.CandidatePlaces[n-1].Label)
		}
		return m.reprompt(ctx, session, promptCandidates(session.CandidatePlaces))
	}

	// Rejection: keep the originally typed text as freeform after the
	// refusal, per the graduated acceptance policy.
	if norm == "no" || norm == "ninguno" || norm == "ninguna" || norm == "none" {
		pending := session.PendingText
		session.CandidatePlaces = nil
		session.PendingText = ""
		if pending != "" && place.LooksLikePlace(pending) {
			draft.SetPlace(pending, true)
			session.LastPlace = pending
			return m.advanceDraft(ctx, session)
		}
		session.PlaceAttemptCount++
		session.SetMode(model.ModeAskPlace)
		return m.reprompt(ctx, session, promptPlaceRetry())
	}

	// Text matching one of the candidates.
	for _, c := range session.CandidatePlaces {
		if lang.Normalize(c.Label) == norm {
			return m.acceptCandidate(ctx, session, draft, c.Label)
		}
	}

	// A fresh place attempt replaces the pending disambiguation.
	session.CandidatePlaces = nil
	session.PendingText = ""
	session.SetMode(model.ModeAskPlace)
	return m.resolvePlaceReply(ctx, session, draft, msg.Text)
}

func (m *Machine) acceptCandidate(ctx context.Context, session *model.Session, draft *model.Draft, label string) error {
	draft.SetPlace(label, false)
	session.LastPlace = label
	session.CandidatePlaces = nil
	session.PendingText = ""
	session.PlaceAttemptCount = 0
	return m.advanceDraft(ctx, session)
}

// handleAskPlaceConflict resolves the "different place, different problem?"
// prompt.
func (m *Machine) handleAskPlaceConflict(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if lang.IsCancel(msg.Text) {
		return m.cancelSession(ctx, session)
	}

	draft := m.targetDraft(session)
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}

	switch pickOption(msg.Text, 3) {
	case 1: // correct the current draft's place
		draft.SetPlace(session.PendingPlace, false)
		session.LastPlace = session.PendingPlace
		session.PendingText = ""
		session.PendingPlace = ""
		return m.advanceDraft(ctx, session)

	case 2: // separate incident: build a batch of both
		second := model.NewDraft(session.PendingText)
		second.SetPlace(session.PendingPlace, false)
		session.MultipleDrafts = []*model.Draft{draft, second}
		session.Draft = nil
		session.RenumberDrafts()
		session.LastPlace = session.PendingPlace
		session.PendingText = ""
		session.PendingPlace = ""
		session.SetMode(model.ModeMultipleTickets)
		return m.advanceBatch(ctx, session)

	case 3:
		return m.cancelSession(ctx, session)

	default:
		return m.reprompt(ctx, session, promptPlaceConflict(orPending(draft.Place), session.PendingPlace))
	}
}

// pickOption reads a 1..max menu choice from a reply, tolerating common
// phrasings ("la 1", "opcion 2").
func pickOption(text string, max int) int {
	norm := lang.Normalize(text)
	norm = strings.TrimPrefix(norm, "la ")
	norm = strings.TrimPrefix(norm, "el ")
	norm = strings.TrimPrefix(norm, "opcion ")
	if n, err := strconv.Atoi(strings.TrimSpace(norm)); err == nil && n >= 1 && n <= max {
		return n
	}
	return 0
}
