package model

// Draft is an in-progress, unpersisted ticket being assembled through
// conversation. It becomes a Ticket only through the dispatch gate.
type Draft struct {
	Description     string     `json:"description"`
	OriginalText    string     `json:"original_text"`
	Place           string     `json:"place"`
	FreeformPlace   bool       `json:"freeform_place,omitempty"`
	AreaCode        AreaCode   `json:"area_code,omitempty"`
	Areas           []AreaCode `json:"areas,omitempty"`
	DetailFragments []string   `json:"detail_fragments,omitempty"`
	TicketNumber    int        `json:"ticket_number,omitempty"`
	PendingMedia    []string   `json:"pending_media,omitempty"`
}

// NewDraft starts a draft from the raw incident text.
func NewDraft(text string) *Draft {
	return &Draft{
		Description:  text,
		OriginalText: text,
	}
}

// SetArea sets the destination area and keeps Areas equal to [code].
// All area writes must go through here or ClearArea.
func (d *Draft) SetArea(code AreaCode) {
	d.AreaCode = code
	d.Areas = []AreaCode{code}
}

// ClearArea removes the destination area.
func (d *Draft) ClearArea() {
	d.AreaCode = ""
	d.Areas = nil
}

// SetPlace records a resolved place. Freeform marks a place accepted
// without catalog confirmation.
func (d *Draft) SetPlace(place string, freeform bool) {
	d.Place = place
	d.FreeformPlace = freeform
}

// AppendDetail appends a clarification fragment to the description.
func (d *Draft) AppendDetail(fragment string) {
	if fragment == "" {
		return
	}
	d.DetailFragments = append(d.DetailFragments, fragment)
	if d.Description == "" {
		d.Description = fragment
		return
	}
	d.Description = d.Description + ". " + fragment
}

// Dispatchable reports whether the draft is complete enough to persist.
func (d *Draft) Dispatchable() bool {
	return d.Description != "" && d.Place != "" && d.AreaCode.Valid()
}

// MissingField names the first field blocking dispatch, or "" when complete.
func (d *Draft) MissingField() string {
	switch {
	case d.Description == "":
		return "description"
	case d.Place == "":
		return "place"
	case !d.AreaCode.Valid():
		return "area"
	default:
		return ""
	}
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Areas = append([]AreaCode(nil), d.Areas...)
	c.DetailFragments = append([]string(nil), d.DetailFragments...)
	c.PendingMedia = append([]string(nil), d.PendingMedia...)
	return &c
}
