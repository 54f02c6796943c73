package flow

import (
	"context"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
)

// startIncident populates the session from an incident-looking message and
// advances to whichever mode completeness requires.
func (m *Machine) startIncident(ctx context.Context, session *model.Session, msg *model.InboundMessage, hints model.IntentHints) error {
	incidents := m.splitter.Split(ctx, msg.Text, session.LastPlace)

	if len(incidents) > 1 {
		// Competing readings: when only the oracle sees several problems and
		// the local segmentation sees one, ask instead of guessing.
		local := m.splitter.LocalSplit(msg.Text)
		if len(local) == 1 {
			session.PendingIncidents = incidents
			session.PendingText = msg.Text
			session.SetMode(model.ModeChooseIncidentVersion)
			return m.send(ctx, session.ChatID, promptIncidentVersions(incidents))
		}
		return m.startBatch(ctx, session, msg, incidents)
	}

	incident := model.Incident{Text: msg.Text}
	if len(incidents) == 1 {
		incident = incidents[0]
	}
	return m.startSingle(ctx, session, msg, incident, hints)
}

func (m *Machine) startSingle(ctx context.Context, session *model.Session, msg *model.InboundMessage, incident model.Incident, hints model.IntentHints) error {
	draft := model.NewDraft(incident.Text)
	draft.OriginalText = msg.Text

	if incident.Place != "" {
		draft.SetPlace(incident.Place, false)
	} else if hints.PlaceHint != "" {
		if token, ok := place.RoomToken(hints.PlaceHint); ok {
			draft.SetPlace(place.RoomLabel(token), false)
		} else if label, ok := m.resolver.Catalog().Lookup(hints.PlaceHint); ok {
			draft.SetPlace(label, false)
		}
	}

	areaHint := incident.Area
	if areaHint == "" {
		areaHint = hints.AreaHint
	}
	if code, err := model.ParseAreaCode(areaHint); err == nil {
		draft.SetArea(code)
	}

	if msg.HasMedia {
		ref := msg.MediaRef
		if ref == "" {
			ref = msg.ID
		}
		draft.PendingMedia = append(draft.PendingMedia, ref)
	}

	session.Draft = draft
	if draft.Place != "" {
		session.LastPlace = draft.Place
	}
	return m.advanceDraft(ctx, session)
}

func (m *Machine) startBatch(ctx context.Context, session *model.Session, msg *model.InboundMessage, incidents []model.Incident) error {
	drafts := make([]*model.Draft, 0, len(incidents))
	for i, in := range incidents {
		d := model.NewDraft(in.Text)
		d.OriginalText = msg.Text
		d.TicketNumber = i + 1
		if in.Place != "" {
			d.SetPlace(in.Place, false)
			session.LastPlace = in.Place
		}
		if code, err := model.ParseAreaCode(in.Area); err == nil {
			d.SetArea(code)
		}
		drafts = append(drafts, d)
	}

	session.Draft = nil
	session.MultipleDrafts = drafts
	session.SetMode(model.ModeMultipleTickets)
	return m.advanceBatch(ctx, session)
}

// advanceBatch walks the batch toward completeness: each draft needs its
// place and area before the batch preview is shown.
func (m *Machine) advanceBatch(ctx context.Context, session *model.Session) error {
	for _, d := range session.MultipleDrafts {
		switch d.MissingField() {
		case "place":
			session.EditTarget = d.TicketNumber
			session.SetMode(model.ModeAskPlace)
			session.PlaceAttemptCount = 0
			return m.send(ctx, session.ChatID, promptBatchPlace(d))
		case "area":
			session.EditTarget = d.TicketNumber
			session.SetMode(model.ModeAskAreaMultiple)
			return m.send(ctx, session.ChatID, promptBatchArea(d))
		}
	}

	session.EditTarget = 0
	session.SetMode(model.ModeConfirmBatch)
	return m.send(ctx, session.ChatID, promptBatchPreview(session.MultipleDrafts))
}

// batchDraft returns the draft at the 1-based batch position.
func (m *Machine) batchDraft(session *model.Session, n int) *model.Draft {
	if n < 1 || n > len(session.MultipleDrafts) {
		return nil
	}
	return session.MultipleDrafts[n-1]
}

// targetDraft returns the draft an edit applies to: the single draft, or
// the batch draft named by EditTarget.
func (m *Machine) targetDraft(session *model.Session) *model.Draft {
	if session.Draft != nil {
		return session.Draft
	}
	if d := m.batchDraft(session, session.EditTarget); d != nil {
		return d
	}
	return session.ActiveDraft()
}
