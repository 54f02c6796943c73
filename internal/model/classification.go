package model

// Intent is the top-level reading of an inbound message.
type Intent string

const (
	IntentNewIncident Intent = "new_incident"
	IntentCancel      Intent = "cancel"
	IntentSearch      Intent = "search"
	IntentClose       Intent = "close"
	IntentGreeting    Intent = "greeting"
	IntentOther       Intent = "other"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	switch i {
	case IntentNewIncident, IntentCancel, IntentSearch, IntentClose, IntentGreeting, IntentOther:
		return true
	}
	return false
}

// IntentHints are secondary signals extracted alongside the top-level intent.
type IntentHints struct {
	MaybeIncident bool   `json:"maybe_incident"`
	PlaceHint     string `json:"place_hint,omitempty"`
	AreaHint      string `json:"area_hint,omitempty"`
}

// OpKind is a discrete edit operation produced by the turn interpreter.
type OpKind string

const (
	OpConfirm      OpKind = "confirm"
	OpCancel       OpKind = "cancel"
	OpSetField     OpKind = "set_field"
	OpReplaceAreas OpKind = "replace_areas"
	OpAddArea      OpKind = "add_area"
	OpRemoveArea   OpKind = "remove_area"
	OpAppendDetail OpKind = "append_detail"
	OpShowPreview  OpKind = "show_preview"
)

// Valid reports whether k is a known operation kind.
func (k OpKind) Valid() bool {
	switch k {
	case OpConfirm, OpCancel, OpSetField, OpReplaceAreas, OpAddArea,
		OpRemoveArea, OpAppendDetail, OpShowPreview:
		return true
	}
	return false
}

// TurnOp is one edit operation against the active draft.
type TurnOp struct {
	Kind  OpKind `json:"kind"`
	Field string `json:"field,omitempty"` // for set_field: "description", "place", "area"
	Value string `json:"value,omitempty"`
}

// FeedbackRole identifies who sent a feedback message.
type FeedbackRole string

const (
	RoleTeam      FeedbackRole = "team"
	RoleRequester FeedbackRole = "requester"
)

// StatusIntent is what a feedback message asks to happen to the ticket.
type StatusIntent string

const (
	StatusIntentNone          StatusIntent = "none"
	StatusIntentInProgress    StatusIntent = "in_progress"
	StatusIntentDoneClaim     StatusIntent = "done_claim"
	StatusIntentCancelRequest StatusIntent = "cancel_request"
	StatusIntentReopenRequest StatusIntent = "reopen_request"
)

// Valid reports whether si is a known status intent.
func (si StatusIntent) Valid() bool {
	switch si {
	case StatusIntentNone, StatusIntentInProgress, StatusIntentDoneClaim,
		StatusIntentCancelRequest, StatusIntentReopenRequest:
		return true
	}
	return false
}

// RequesterSide is the requester's reading of the incident after dispatch.
type RequesterSide string

const (
	SideNone        RequesterSide = "none"
	SideStillBroken RequesterSide = "still_broken"
	SideSatisfied   RequesterSide = "satisfied"
)

// FeedbackClassification is the structured judgment of a follow-up message.
// Transient: only its derived effects (status change, event) are persisted.
type FeedbackClassification struct {
	IsRelevant     bool          `json:"is_relevant"`
	Role           FeedbackRole  `json:"role"`
	Kind           string        `json:"kind,omitempty"`
	StatusIntent   StatusIntent  `json:"status_intent"`
	RequesterSide  RequesterSide `json:"requester_side"`
	Polarity       string        `json:"polarity,omitempty"`
	NormalizedNote string        `json:"normalized_note,omitempty"`
	Confidence     float64       `json:"confidence"`
}

// Incident is one problem extracted by the multi-incident splitter.
type Incident struct {
	Text  string `json:"text"`
	Place string `json:"place,omitempty"`
	Area  string `json:"area,omitempty"`
}
