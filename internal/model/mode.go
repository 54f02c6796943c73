// Package model defines data structures for the intake pipeline.
package model

// Mode is the conversational state a Session is in. Every inbound message
// is handled by exactly one mode handler keyed on this value.
type Mode int

const (
	// ModeNeutral is the initial state: no draft in progress.
	ModeNeutral Mode = iota
	// ModeAskPlace waits for the place of the active draft.
	ModeAskPlace
	// ModeChoosePlaceFromCandidates waits for a pick among ranked place suggestions.
	ModeChoosePlaceFromCandidates
	// ModeAskPlaceConflict waits for a decision after a reply that names a
	// different place and looks like a different incident.
	ModeAskPlaceConflict
	// ModeChooseAreaSingle waits for the destination area of a single draft.
	ModeChooseAreaSingle
	// ModeChooseAreaMulti waits for the destination area while several drafts
	// share the prompt.
	ModeChooseAreaMulti
	// ModeAskAreaMultiple waits for per-draft areas in a batch, one at a time.
	ModeAskAreaMultiple
	// ModeConfirm shows a single-draft preview and waits for confirm/cancel/edit.
	ModeConfirm
	// ModeConfirmBatch shows a batch preview and waits for send-all/send-one/edit/delete.
	ModeConfirmBatch
	// ModeConfirmNewTicketDecision waits for the user to decide whether a verbose
	// reply during confirmation is really a second, separate incident.
	ModeConfirmNewTicketDecision
	// ModeMultipleTickets manages a numbered batch of drafts.
	ModeMultipleTickets
	// ModeEditDescription waits for a replacement description.
	ModeEditDescription
	// ModeEditPlace waits for a replacement place.
	ModeEditPlace
	// ModeEditArea waits for a replacement area.
	ModeEditArea
	// ModeDifferentProblem waits for a decision after the user pivoted to an
	// unrelated problem mid-draft.
	ModeDifferentProblem
	// ModeDescriptionOrNew waits for whether a reply extends the current
	// description or starts a new incident.
	ModeDescriptionOrNew
	// ModeContextSwitch waits for a decision after an abrupt topic change.
	ModeContextSwitch
	// ModeFollowupDecision waits for whether a post-dispatch message is feedback
	// on a recent ticket or a new incident.
	ModeFollowupDecision
	// ModeFollowupPlaceDecision waits for which recent ticket a feedback message
	// refers to when several share the group.
	ModeFollowupPlaceDecision
	// ModeConfusedRecovery re-anchors the conversation after repeated
	// unclassifiable replies.
	ModeConfusedRecovery
	// ModeChooseIncidentVersion waits for a pick between two competing readings
	// of the same message.
	ModeChooseIncidentVersion

	modeCount
)

var modeNames = map[Mode]string{
	ModeNeutral:                   "neutral",
	ModeAskPlace:                  "ask_place",
	ModeChoosePlaceFromCandidates: "choose_place_from_candidates",
	ModeAskPlaceConflict:          "ask_place_conflict",
	ModeChooseAreaSingle:          "choose_area_single",
	ModeChooseAreaMulti:           "choose_area_multi",
	ModeAskAreaMultiple:           "ask_area_multiple",
	ModeConfirm:                   "confirm",
	ModeConfirmBatch:              "confirm_batch",
	ModeConfirmNewTicketDecision:  "confirm_new_ticket_decision",
	ModeMultipleTickets:           "multiple_tickets",
	ModeEditDescription:           "edit_description",
	ModeEditPlace:                 "edit_place",
	ModeEditArea:                  "edit_area",
	ModeDifferentProblem:          "different_problem",
	ModeDescriptionOrNew:          "description_or_new",
	ModeContextSwitch:             "context_switch",
	ModeFollowupDecision:          "followup_decision",
	ModeFollowupPlaceDecision:     "followup_place_decision",
	ModeConfusedRecovery:          "confused_recovery",
	ModeChooseIncidentVersion:     "choose_incident_version",
}

// String returns the wire name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= ModeNeutral && m < modeCount
}

// AllModes returns every defined mode, in declaration order.
func AllModes() []Mode {
	modes := make([]Mode, 0, int(modeCount))
	for m := ModeNeutral; m < modeCount; m++ {
		modes = append(modes, m)
	}
	return modes
}
