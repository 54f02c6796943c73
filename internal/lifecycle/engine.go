// Package lifecycle computes ticket status transitions from classified
// feedback.
package lifecycle

import (
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/metrics"
)

// Input is one classified feedback event against a ticket's current status.
type Input struct {
	Current        model.Status
	Actor          model.FeedbackRole
	Classification *model.FeedbackClassification
}

// Outcome is the engine's decision. Status is always defined.
type Outcome struct {
	Status  model.Status
	Changed bool
	Rule    string
	Reason  string
}

// StatusCore is an optional delegate that may override the built-in table.
// When it is unavailable or errors, the table is the mandatory fallback.
type StatusCore interface {
	Decide(in Input) (Outcome, error)
}

// Engine applies the transition policy, by priority:
//  1. team reports in-progress from open/awaiting_confirmation -> in_progress
//  2. team claims done -> awaiting_confirmation (never directly done)
//  3. explicit cancel from either actor -> canceled
//  4. reopen signal, or requester reporting the issue persists while
//     awaiting_confirmation/done -> open
//  5. requester satisfied while non-closed -> done, only when auto-close is
//     configured
//
// Default: status unchanged. A rule later in the list wins over an earlier
// one when a single classification triggers both.
type Engine struct {
	core      StatusCore
	autoClose bool
}

// NewEngine creates a lifecycle engine. core may be nil.
func NewEngine(core StatusCore, autoClose bool) *Engine {
	return &Engine{core: core, autoClose: autoClose}
}

// Transition computes the next status. It never leaves status undefined:
// every path yields a valid Outcome.
func (e *Engine) Transition(in Input) Outcome {
	if !in.Current.Valid() {
		in.Current = model.NormalizeStatus(string(in.Current))
	}

	if e.core != nil {
		if out, err := e.core.Decide(in); err == nil && out.Status.Valid() {
			e.record(in.Current, out)
			return out
		}
		// Delegate unavailable or nonsense answer: the table decides.
	}

	out := e.applyTable(in)
	e.record(in.Current, out)
	return out
}

func (e *Engine) applyTable(in Input) Outcome {
	fc := in.Classification
	if fc == nil || !fc.IsRelevant {
		return Outcome{Status: in.Current, Rule: "irrelevant"}
	}

	out := Outcome{Status: in.Current, Rule: "unchanged"}

	// Rule 1: team reports work started.
	if in.Actor == model.RoleTeam && fc.StatusIntent == model.StatusIntentInProgress {
		switch in.Current {
		case model.StatusOpen, model.StatusAwaitingConfirmation:
			out = Outcome{Status: model.StatusInProgress, Changed: true, Rule: "team_in_progress", Reason: fc.NormalizedNote}
		}
	}

	// Rule 2: a team done-claim always lands in awaiting_confirmation: the
	// requester must confirm before the ticket is done. From
	// awaiting_confirmation it is a no-op, never a regression.
	if in.Actor == model.RoleTeam && fc.StatusIntent == model.StatusIntentDoneClaim {
		switch in.Current {
		case model.StatusOpen, model.StatusInProgress:
			out = Outcome{Status: model.StatusAwaitingConfirmation, Changed: true, Rule: "team_done_claim", Reason: fc.NormalizedNote}
		}
	}

	// Rule 3: explicit cancel from either actor.
	if fc.StatusIntent == model.StatusIntentCancelRequest && !in.Current.Terminal() {
		out = Outcome{Status: model.StatusCanceled, Changed: true, Rule: "cancel_request", Reason: fc.NormalizedNote}
	}

	// Rule 4: reopen. Evaluated after the done-claim rule so a reopen signal
	// arriving in the same classification wins (product decision, see
	// DESIGN.md). canceled is terminal and in_progress already has the team
	// on it, so only open/awaiting_confirmation/done can reopen.
	reopenByIntent := fc.StatusIntent == model.StatusIntentReopenRequest &&
		(in.Current == model.StatusOpen ||
			in.Current == model.StatusAwaitingConfirmation ||
			in.Current == model.StatusDone)
	reopenBySide := in.Actor == model.RoleRequester &&
		fc.RequesterSide == model.SideStillBroken &&
		(in.Current == model.StatusAwaitingConfirmation || in.Current == model.StatusDone)
	if reopenByIntent || reopenBySide {
		out = Outcome{Status: model.StatusOpen, Changed: in.Current != model.StatusOpen, Rule: "reopen", Reason: fc.NormalizedNote}
	}

	// Rule 5: requester satisfaction auto-closes only when configured.
	if e.autoClose &&
		in.Actor == model.RoleRequester &&
		fc.RequesterSide == model.SideSatisfied &&
		in.Current != model.StatusDone && in.Current != model.StatusCanceled &&
		out.Rule == "unchanged" {
		out = Outcome{Status: model.StatusDone, Changed: true, Rule: "requester_satisfied", Reason: fc.NormalizedNote}
	}

	return out
}

func (e *Engine) record(from model.Status, out Outcome) {
	if out.Changed {
		metrics.RecordTransition(string(from), string(out.Status), out.Rule)
	}
}
