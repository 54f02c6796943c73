// Package flow is the draft state machine: it owns one conversation's
// session, dispatches inbound messages to mode handlers and drives all
// user-visible prompts and transitions.
package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/cache"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/channel"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/dispatch"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/intent"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lifecycle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/oracle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/splitter"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/turn"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/metrics"
)

// Machine drives one session through the drafting mode graph. It is not
// safe for concurrent messages from the same chat: the session manager
// serializes per chat identity.
type Machine struct {
	router      *intent.Router
	interpreter *turn.Interpreter
	resolver    *place.Resolver
	splitter    *splitter.Splitter
	gate        *dispatch.Gate
	store       store.Store
	lifecycle   *lifecycle.Engine
	dispatches  *cache.DispatchCache
	sender      channel.Sender
	notifier    channel.TeamNotifier
	oracle      oracle.Client
	logger      *logger.Logger

	maxPlaceAttempts int
}

// Deps bundles the machine's collaborators.
type Deps struct {
	Router      *intent.Router
	Interpreter *turn.Interpreter
	Resolver    *place.Resolver
	Splitter    *splitter.Splitter
	Gate        *dispatch.Gate
	Store       store.Store
	Lifecycle   *lifecycle.Engine
	Dispatches  *cache.DispatchCache
	Sender      channel.Sender
	Notifier    channel.TeamNotifier
	Oracle      oracle.Client
	Logger      *logger.Logger

	MaxPlaceAttempts int
}

// NewMachine creates the state machine.
func NewMachine(deps Deps) *Machine {
	maxAttempts := deps.MaxPlaceAttempts
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	return &Machine{
		router:           deps.Router,
		interpreter:      deps.Interpreter,
		resolver:         deps.Resolver,
		splitter:         deps.Splitter,
		gate:             deps.Gate,
		store:            deps.Store,
		lifecycle:        deps.Lifecycle,
		dispatches:       deps.Dispatches,
		sender:           deps.Sender,
		notifier:         deps.Notifier,
		oracle:           deps.Oracle,
		logger:           deps.Logger,
		maxPlaceAttempts: maxAttempts,
	}
}

// HandleMessage processes one inbound message against the session's mode.
// The switch is exhaustive over model.Mode: a new mode without a handler
// fails the exhaustiveness test in machine_test.go.
func (m *Machine) HandleMessage(ctx context.Context, session *model.Session, msg *model.InboundMessage) error {
	if msg.HasMedia {
		m.attachMedia(session, msg)
	}

	log := m.logger.WithChat(session.ChatID)
	log.Debug("handling message",
		zap.String("mode", session.Mode.String()),
		zap.Int("text_len", len(msg.Text)),
	)

	switch session.Mode {
	case model.ModeNeutral:
		return m.handleNeutral(ctx, session, msg)
	case model.ModeAskPlace:
		return m.handleAskPlace(ctx, session, msg)
	case model.ModeChoosePlaceFromCandidates:
		return m.handleChoosePlaceFromCandidates(ctx, session, msg)
	case model.ModeAskPlaceConflict:
		return m.handleAskPlaceConflict(ctx, session, msg)
	case model.ModeChooseAreaSingle:
		return m.handleChooseAreaSingle(ctx, session, msg)
	case model.ModeChooseAreaMulti:
		return m.handleChooseAreaMulti(ctx, session, msg)
	case model.ModeAskAreaMultiple:
		return m.handleAskAreaMultiple(ctx, session, msg)
	case model.ModeConfirm:
		return m.handleConfirm(ctx, session, msg)
	case model.ModeConfirmBatch:
		return m.handleConfirmBatch(ctx, session, msg)
	case model.ModeConfirmNewTicketDecision:
		return m.handleConfirmNewTicketDecision(ctx, session, msg)
	case model.ModeMultipleTickets:
		return m.handleMultipleTickets(ctx, session, msg)
	case model.ModeEditDescription:
		return m.handleEditDescription(ctx, session, msg)
	case model.ModeEditPlace:
		return m.handleEditPlace(ctx, session, msg)
	case model.ModeEditArea:
		return m.handleEditArea(ctx, session, msg)
	case model.ModeDifferentProblem:
		return m.handleDifferentProblem(ctx, session, msg)
	case model.ModeDescriptionOrNew:
		return m.handleDescriptionOrNew(ctx, session, msg)
	case model.ModeContextSwitch:
		return m.handleContextSwitch(ctx, session, msg)
	case model.ModeFollowupDecision:
		return m.handleFollowupDecision(ctx, session, msg)
	case model.ModeFollowupPlaceDecision:
		return m.handleFollowupPlaceDecision(ctx, session, msg)
	case model.ModeConfusedRecovery:
		return m.handleConfusedRecovery(ctx, session, msg)
	case model.ModeChooseIncidentVersion:
		return m.handleChooseIncidentVersion(ctx, session, msg)
	default:
		// Unknown mode means corrupted session state: recover instead of
		// guessing.
		log.Error("session in unknown mode, resetting", zap.Int("mode", int(session.Mode)))
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}
}

func (m *Machine) attachMedia(session *model.Session, msg *model.InboundMessage) {
	ref := msg.MediaRef
	if ref == "" {
		ref = msg.ID
	}
	if d := session.ActiveDraft(); d != nil {
		d.PendingMedia = append(d.PendingMedia, ref)
	}
}

func (m *Machine) send(ctx context.Context, chatID, text string) error {
	if err := m.sender.SendText(ctx, chatID, text); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// reprompt re-sends the current mode's options on unrecognized input.
// No mode ever guesses or silently advances to dispatch. Three consecutive
// reprompts on an active draft escalate to the recovery prompt.
func (m *Machine) reprompt(ctx context.Context, session *model.Session, text string) error {
	metrics.RepromptsTotal.WithLabelValues(session.Mode.String()).Inc()
	session.ConfusedCount++
	if session.ConfusedCount >= 3 && session.Mode != model.ModeConfusedRecovery {
		if draft := session.ActiveDraft(); draft != nil {
			session.SetMode(model.ModeConfusedRecovery)
			return m.send(ctx, session.ChatID, promptConfusedRecovery(draft))
		}
	}
	return m.send(ctx, session.ChatID, text)
}

// advanceDraft moves the session to whichever mode the draft's completeness
// requires: place first, then area, then preview.
func (m *Machine) advanceDraft(ctx context.Context, session *model.Session) error {
	draft := session.ActiveDraft()
	if draft == nil {
		session.Reset()
		return m.send(ctx, session.ChatID, msgStartOver)
	}
	session.ConfusedCount = 0

	if session.InBatch() {
		return m.advanceBatch(ctx, session)
	}

	switch draft.MissingField() {
	case "place":
		session.SetMode(model.ModeAskPlace)
		session.PlaceAttemptCount = 0
		return m.send(ctx, session.ChatID, promptAskPlace(draft))
	case "area":
		session.SetMode(model.ModeChooseAreaSingle)
		return m.send(ctx, session.ChatID, promptAreaMenu(draft))
	default:
		session.SetMode(model.ModeConfirm)
		return m.send(ctx, session.ChatID, promptPreview(draft))
	}
}

// dispatchDraft pushes a draft through the gate, handling both failure
// classes: validation failures re-prompt the missing field, store failures
// are surfaced as retryable without losing the draft.
func (m *Machine) dispatchDraft(ctx context.Context, session *model.Session, draft *model.Draft) error {
	receipt, err := m.gate.Dispatch(ctx, session, draft)
	if err != nil {
		var vErr *dispatch.ValidationError
		if errors.As(err, &vErr) {
			return m.promptMissingField(ctx, session, vErr.Field)
		}
		m.logger.WithChat(session.ChatID).Error("dispatch failed", zap.Error(err))
		// Session intentionally not reset: the draft survives the failure.
		return m.send(ctx, session.ChatID, msgDispatchRetryable)
	}

	session.LastPlace = draft.Place
	if !session.InBatch() {
		session.Reset()
		session.LastPlace = draft.Place
	}
	return m.send(ctx, session.ChatID, msgDispatched(receipt.Folio, draft))
}

func (m *Machine) promptMissingField(ctx context.Context, session *model.Session, field string) error {
	draft := session.ActiveDraft()
	switch field {
	case "place":
		session.SetMode(model.ModeAskPlace)
		session.PlaceAttemptCount = 0
		return m.send(ctx, session.ChatID, promptAskPlace(draft))
	case "area":
		session.SetMode(model.ModeChooseAreaSingle)
		return m.send(ctx, session.ChatID, promptAreaMenu(draft))
	default:
		session.SetMode(model.ModeEditDescription)
		return m.send(ctx, session.ChatID, msgAskDescription)
	}
}

// cancelSession resets the session after an explicit user cancel, the only
// cancellation primitive.
func (m *Machine) cancelSession(ctx context.Context, session *model.Session) error {
	session.Reset()
	return m.send(ctx, session.ChatID, msgCanceled)
}
