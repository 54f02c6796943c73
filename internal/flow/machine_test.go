package flow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/cache"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/dispatch"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/intent"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lifecycle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/splitter"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/turn"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
)

type sent struct {
	chatID string
	text   string
}

type fakeSender struct {
	msgs []sent
}

func (f *fakeSender) SendText(ctx context.Context, chatID, text string) error {
	f.msgs = append(f.msgs, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) last() sent {
	if len(f.msgs) == 0 {
		return sent{}
	}
	return f.msgs[len(f.msgs)-1]
}

// lastFor returns the most recent message sent to chatID.
func (f *fakeSender) lastFor(chatID string) string {
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].chatID == chatID {
			return f.msgs[i].text
		}
	}
	return ""
}

type fakeTeamNotifier struct {
	tickets []*model.Ticket
	events  []*model.TicketEvent
}

func (f *fakeTeamNotifier) NotifyTeam(ctx context.Context, ticket *model.Ticket) error {
	f.tickets = append(f.tickets, ticket)
	return nil
}

func (f *fakeTeamNotifier) NotifyEvent(ctx context.Context, ticket *model.Ticket, event *model.TicketEvent) error {
	f.events = append(f.events, event)
	return nil
}

type harness struct {
	machine    *Machine
	sender     *fakeSender
	notifier   *fakeTeamNotifier
	store      *store.MemoryStore
	dispatches *cache.DispatchCache
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)

	sender := &fakeSender{}
	notifier := &fakeTeamNotifier{}
	st := store.NewMemoryStore()
	dispatches := cache.NewDispatchCache(time.Minute)
	t.Cleanup(dispatches.Close)
	resolver := place.NewResolver(place.DefaultCatalog())

	m := NewMachine(Deps{
		Router:      intent.NewRouter(nil, log),
		Interpreter: turn.NewInterpreter(nil, log),
		Resolver:    resolver,
		Splitter:    splitter.New(nil, resolver, log),
		Gate:        dispatch.NewGate(st, notifier, dispatches, "INS", log),
		Store:       st,
		Lifecycle:   lifecycle.NewEngine(nil, true),
		Dispatches:  dispatches,
		Sender:      sender,
		Notifier:    notifier,
		Logger:      log,
	})
	return &harness{machine: m, sender: sender, notifier: notifier, store: st, dispatches: dispatches}
}

// say feeds one message into the machine and returns the last reply to the
// session's own chat.
func (h *harness) say(t *testing.T, session *model.Session, text string) string {
	t.Helper()
	msg := &model.InboundMessage{
		ID:         fmt.Sprintf("m%d", len(h.sender.msgs)),
		ChatID:     session.ChatID,
		Text:       text,
		IsGroup:    session.IsGroup,
		ReceivedAt: time.Now(),
	}
	require.NoError(t, h.machine.HandleMessage(context.Background(), session, msg))
	return h.sender.lastFor(session.ChatID)
}

func TestSingleTicketHappyPath(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", true)

	reply := h.say(t, session, "no hay agua caliente en la 1205")
	assert.Equal(t, model.ModeChooseAreaSingle, session.Mode)
	assert.Contains(t, reply, "Habitación 1205")
	assert.Contains(t, reply, "¿A qué equipo lo mando?")

	reply = h.say(t, session, "mantenimiento")
	assert.Equal(t, model.ModeConfirm, session.Mode)
	assert.Contains(t, reply, "Así va tu reporte")
	assert.Contains(t, reply, "Habitación 1205")

	reply = h.say(t, session, "sí, mándalo")
	assert.Contains(t, reply, "INS-000001")

	// Session is back to neutral with the draft gone, keeping the place.
	assert.Equal(t, model.ModeNeutral, session.Mode)
	assert.Nil(t, session.Draft)
	assert.Equal(t, "Habitación 1205", session.LastPlace)

	ticket, err := h.store.GetTicketByFolio(context.Background(), "INS-000001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, ticket.Status)
	assert.Equal(t, model.AreaMaintenance, ticket.AreaCode)
	require.Len(t, h.notifier.tickets, 1)
	assert.Len(t, h.dispatches.Recent("chat1"), 1)

	// The remembered place carries into the next report.
	reply = h.say(t, session, "tampoco hay toallas, faltan dos")
	assert.Equal(t, model.ModeChooseAreaSingle, session.Mode)
	require.NotNil(t, session.Draft)
	assert.Equal(t, "Habitación 1205", session.Draft.Place)
}

func TestAskPlaceRound(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	reply := h.say(t, session, "no funciona el aire")
	assert.Equal(t, model.ModeAskPlace, session.Mode)
	assert.Contains(t, reply, "¿En dónde está el problema?")

	reply = h.say(t, session, "1205")
	assert.Equal(t, model.ModeChooseAreaSingle, session.Mode)
	assert.Equal(t, "Habitación 1205", session.Draft.Place)

	reply = h.say(t, session, "1")
	assert.Equal(t, model.ModeConfirm, session.Mode)
	assert.Equal(t, model.AreaMaintenance, session.Draft.AreaCode)
	assert.Contains(t, reply, "¿Lo envío?")
}

func TestCancelMidDraft(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	h.say(t, session, "no funciona el aire")
	require.Equal(t, model.ModeAskPlace, session.Mode)

	reply := h.say(t, session, "cancelar")
	assert.Equal(t, msgCanceled, reply)
	assert.Equal(t, model.ModeNeutral, session.Mode)
	assert.Nil(t, session.ActiveDraft())
}

func TestPlaceCorrectionAtPreview(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	h.say(t, session, "no hay agua caliente en la 1205")
	h.say(t, session, "mantenimiento")
	require.Equal(t, model.ModeConfirm, session.Mode)

	reply := h.say(t, session, "es en la 1108")
	assert.Equal(t, model.ModeConfirm, session.Mode, "a place correction never spawns a ticket")
	assert.Equal(t, "Habitación 1108", session.Draft.Place)
	assert.Contains(t, reply, "Habitación 1108")
}

func TestNewProblemAtPreviewAsksFirst(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	h.say(t, session, "no hay agua caliente en la 1205")
	h.say(t, session, "mantenimiento")
	require.Equal(t, model.ModeConfirm, session.Mode)

	reply := h.say(t, session, "no hay luz en la 1108 tampoco")
	assert.Equal(t, model.ModeConfirmNewTicketDecision, session.Mode)
	assert.Contains(t, reply, "otro problema")

	// Keep both: the session becomes a batch of two.
	h.say(t, session, "1")
	assert.Len(t, session.MultipleDrafts, 2)
	assert.Nil(t, session.Draft)
}

func TestGraduatedFreeformPlaceAcceptance(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	h.say(t, session, "hay una fuga")
	require.Equal(t, model.ModeAskPlace, session.Mode)

	// A place-like reply outside the catalog is refused once, then accepted.
	reply := h.say(t, session, "bodega de blancos del piso 9")
	assert.Equal(t, model.ModeAskPlace, session.Mode)
	assert.Contains(t, reply, "No ubico ese lugar")

	h.say(t, session, "bodega de blancos del piso 9")
	require.NotNil(t, session.Draft)
	assert.Equal(t, "bodega de blancos del piso 9", session.Draft.Place)
	assert.True(t, session.Draft.FreeformPlace)
	assert.Equal(t, model.ModeChooseAreaSingle, session.Mode)
}

func TestPlaceSuggestionsNeverAutoSelect(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	h.say(t, session, "hay una fuga")
	require.Equal(t, model.ModeAskPlace, session.Mode)

	reply := h.say(t, session, "alverca")
	assert.Equal(t, model.ModeChoosePlaceFromCandidates, session.Mode)
	assert.Contains(t, reply, "Alberca")
	assert.Empty(t, session.Draft.Place, "a near miss is never silently accepted")

	h.say(t, session, "1")
	assert.Equal(t, "Alberca", session.Draft.Place)
	assert.False(t, session.Draft.FreeformPlace)
	assert.Equal(t, model.ModeChooseAreaSingle, session.Mode)
}

func TestBatchFlow(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", true)

	reply := h.say(t, session, "no hay luz en la 1205 además gotea la regadera en la 1206")
	require.Len(t, session.MultipleDrafts, 2)
	assert.Equal(t, model.ModeAskAreaMultiple, session.Mode)
	assert.Contains(t, reply, "reporte 1")

	reply = h.say(t, session, "mantenimiento")
	assert.Equal(t, model.ModeAskAreaMultiple, session.Mode)
	assert.Contains(t, reply, "reporte 2")

	reply = h.say(t, session, "mantenimiento")
	assert.Equal(t, model.ModeConfirmBatch, session.Mode)
	assert.Contains(t, reply, "Tengo 2 reportes")

	reply = h.say(t, session, "enviar todos")
	assert.Contains(t, reply, "INS-000001")
	assert.Contains(t, reply, "INS-000002")
	assert.Equal(t, model.ModeNeutral, session.Mode)
	assert.Empty(t, session.MultipleDrafts)
	assert.Equal(t, "Habitación 1206", session.LastPlace)

	open, err := h.store.ListOpenForGroup(context.Background(), "chat1")
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestBatchEditAndDrop(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", true)

	h.say(t, session, "no hay luz en la 1205 además gotea la regadera en la 1206")
	h.say(t, session, "mantenimiento")
	h.say(t, session, "mantenimiento")
	require.Equal(t, model.ModeConfirmBatch, session.Mode)

	reply := h.say(t, session, "editar 2 lugar")
	assert.Equal(t, model.ModeEditPlace, session.Mode)

	reply = h.say(t, session, "recepcion")
	assert.Equal(t, model.ModeConfirmBatch, session.Mode)
	assert.Contains(t, reply, "Lobby")

	reply = h.say(t, session, "borrar 2")
	assert.Equal(t, model.ModeConfirm, session.Mode, "a single survivor collapses to the plain preview")
	require.NotNil(t, session.Draft)
	assert.Equal(t, "Habitación 1205", session.Draft.Place)
}

func TestSearchByFolio(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)
	require.NoError(t, h.store.CreateTicket(context.Background(), &model.Ticket{
		ID:       "t1",
		Folio:    "INS-000042",
		Status:   model.StatusInProgress,
		Place:    "Alberca",
		AreaCode: model.AreaMaintenance,
		ChatID:   "chat1",
		GroupID:  "chat1",
	}))

	reply := h.say(t, session, "cómo va el INS-000042")
	assert.Contains(t, reply, "INS-000042")
	assert.Contains(t, reply, "en proceso")

	reply = h.say(t, session, "estatus de INS-999999")
	assert.Contains(t, reply, "No encontré el ticket")
}

func TestSearchInterruptMidDraftOffersResume(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)
	require.NoError(t, h.store.CreateTicket(context.Background(), &model.Ticket{
		ID:      "t1",
		Folio:   "INS-000042",
		Status:  model.StatusOpen,
		Place:   "Alberca",
		ChatID:  "chat1",
		GroupID: "chat1",
	}))

	h.say(t, session, "no funciona el aire")
	require.Equal(t, model.ModeAskPlace, session.Mode)

	reply := h.say(t, session, "cómo va el folio INS-000042")
	assert.Equal(t, model.ModeContextSwitch, session.Mode)
	assert.Contains(t, reply, "¿Seguimos con tu reporte?")

	reply = h.say(t, session, "1")
	assert.Equal(t, model.ModeAskPlace, session.Mode)
	require.NotNil(t, session.Draft)
	assert.Equal(t, "no funciona el aire", session.Draft.Description)
}

func TestTeamDoneClaimNeedsRequesterConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.CreateTicket(ctx, &model.Ticket{
		ID:      "t1",
		Folio:   "INS-000007",
		Status:  model.StatusOpen,
		Place:   "Habitación 1205",
		ChatID:  "guest-chat",
		GroupID: "guest-chat",
	}))

	team := model.NewSession("team-chat", true)
	reply := h.say(t, team, "ya quedo INS-000007")

	ticket, err := h.store.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAwaitingConfirmation, ticket.Status, "a team done-claim never closes directly")
	assert.Contains(t, reply, "INS-000007")

	// The requester's chat is asked to confirm.
	confirm := h.sender.lastFor("guest-chat")
	assert.Contains(t, confirm, "INS-000007")
	assert.Contains(t, confirm, "¿Quedó resuelto?")

	require.NotEmpty(t, ticket.Events)
	assert.Equal(t, "feedback", ticket.Events[len(ticket.Events)-1].Type)
}

func TestRequesterStillBrokenReopens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.CreateTicket(ctx, &model.Ticket{
		ID:      "t1",
		Folio:   "INS-000008",
		Status:  model.StatusAwaitingConfirmation,
		Place:   "Habitación 1205",
		ChatID:  "guest-chat",
		GroupID: "guest-chat",
	}))

	guest := model.NewSession("guest-chat", true)
	reply := h.say(t, guest, "sigue igual el INS-000008")

	ticket, err := h.store.GetTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, ticket.Status)
	assert.Contains(t, reply, "reabierto")
}

func TestFollowupDisambiguationSingleRecent(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", true)

	h.say(t, session, "no hay agua caliente en la 1205")
	h.say(t, session, "mantenimiento")
	h.say(t, session, "sí")
	require.Equal(t, model.ModeNeutral, session.Mode)

	// A close-looking message with no folio refers to the one recent ticket.
	reply := h.say(t, session, "ya quedo")
	assert.Equal(t, model.ModeFollowupDecision, session.Mode)
	assert.Contains(t, reply, "INS-000001")

	reply = h.say(t, session, "1")
	assert.Equal(t, model.ModeNeutral, session.Mode)

	ticket, err := h.store.GetTicketByFolio(context.Background(), "INS-000001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, ticket.Status, "the requester's own done report closes the ticket")
	assert.Empty(t, h.dispatches.Recent("chat1"), "terminal tickets leave the recent-dispatch window")
}

func TestConfusedEscalatesToRecovery(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	h.say(t, session, "no funciona el aire")
	require.Equal(t, model.ModeAskPlace, session.Mode)
	session.Draft.SetPlace("Habitación 1205", false)
	session.SetMode(model.ModeChooseAreaSingle)

	h.say(t, session, "xyzzy")
	h.say(t, session, "qwerty")
	reply := h.say(t, session, "zzz")
	assert.Equal(t, model.ModeConfusedRecovery, session.Mode)
	assert.Contains(t, reply, "Me perdí un poco")

	reply = h.say(t, session, "1")
	assert.Equal(t, 0, session.ConfusedCount)
	assert.Equal(t, model.ModeChooseAreaSingle, session.Mode)
}

func TestMediaAttachesToActiveDraft(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)

	h.say(t, session, "no hay agua caliente en la 1205")
	require.NotNil(t, session.Draft)

	msg := &model.InboundMessage{
		ID:       "m-photo",
		ChatID:   "chat1",
		Text:     "mira la foto",
		HasMedia: true,
		MediaRef: "media/abc",
	}
	require.NoError(t, h.machine.HandleMessage(context.Background(), session, msg))
	assert.Contains(t, session.Draft.PendingMedia, "media/abc")
}

// Every mode must answer unrecognized input with a reprompt instead of an
// error, a guess, or silence. A mode added to model.AllModes without a
// handler lands in the reset branch and fails the mode assertion here.
func TestEveryModeHandlesUnrecognizedInput(t *testing.T) {
	for _, mode := range model.AllModes() {
		t.Run(mode.String(), func(t *testing.T) {
			h := newHarness(t)
			session := model.NewSession("chat1", false)

			draft := model.NewDraft("no hay agua")
			switch mode {
			case model.ModeMultipleTickets, model.ModeConfirmBatch, model.ModeAskAreaMultiple:
				second := model.NewDraft("sin luz en la 1206")
				session.MultipleDrafts = []*model.Draft{draft, second}
				session.RenumberDrafts()
				session.EditTarget = 1
			default:
				session.Draft = draft
			}
			session.PendingText = "no funciona la tele"
			session.PendingPlace = "Habitación 1205"
			session.PendingFolio = "INS-000001"
			session.PendingAreas = []model.AreaCode{model.AreaMaintenance, model.AreaHousekeeping}
			session.PendingIncidents = []model.Incident{{Text: "no hay agua"}, {Text: "sin luz"}}
			session.CandidatePlaces = []model.PlaceCandidate{{Label: "Alberca"}}
			session.SetMode(mode)

			reply := h.say(t, session, "xyzzy")
			assert.NotEmpty(t, reply, "mode %s must always answer", mode)
			assert.True(t, session.Mode.Valid(), "mode %s left the session in an invalid mode", mode)
		})
	}
}

func TestUnknownModeRecovers(t *testing.T) {
	h := newHarness(t)
	session := model.NewSession("chat1", false)
	session.Mode = model.Mode(999)

	reply := h.say(t, session, "hola")
	assert.Equal(t, msgStartOver, reply)
	assert.Equal(t, model.ModeNeutral, session.Mode)
}
