package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/middleware"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/session"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func postWebhook(t *testing.T, h *WebhookHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhook/messages", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func TestWebhookReceiveAccepted(t *testing.T) {
	var handled *model.InboundMessage
	handle := func(ctx context.Context, s *model.Session, msg *model.InboundMessage) error {
		handled = msg
		return nil
	}
	h := NewWebhookHandler(session.NewManager(), handle, testLogger(t))

	rec := postWebhook(t, h, map[string]any{
		"message_id": "m1",
		"chat_id":    "5215551234567@g.us",
		"text":       "no hay agua en la 1205",
		"is_group":   true,
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, handled)
	assert.Equal(t, "m1", handled.ID)
	assert.True(t, handled.IsGroup)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])
	assert.Equal(t, "m1", resp["message_id"])
}

func TestWebhookReceiveGeneratesMessageID(t *testing.T) {
	handle := func(ctx context.Context, s *model.Session, msg *model.InboundMessage) error { return nil }
	h := NewWebhookHandler(session.NewManager(), handle, testLogger(t))

	rec := postWebhook(t, h, map[string]any{
		"chat_id": "chat-1",
		"text":    "hola",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["message_id"])
}

func TestWebhookReceiveRejections(t *testing.T) {
	handle := func(ctx context.Context, s *model.Session, msg *model.InboundMessage) error {
		t.Fatal("handler must not run for rejected payloads")
		return nil
	}
	h := NewWebhookHandler(session.NewManager(), handle, testLogger(t))

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad chat id", map[string]any{"chat_id": "!!", "text": "hola"}},
		{"empty text", map[string]any{"chat_id": "chat-1", "text": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postWebhook(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestWebhookReceiveMediaWithoutText(t *testing.T) {
	handle := func(ctx context.Context, s *model.Session, msg *model.InboundMessage) error { return nil }
	h := NewWebhookHandler(session.NewManager(), handle, testLogger(t))

	rec := postWebhook(t, h, map[string]any{
		"chat_id":   "chat-1",
		"has_media": true,
		"media_ref": "media/abc",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code, "media messages may carry no text")
}

func TestWebhookReceiveHandlerFailure(t *testing.T) {
	handle := func(ctx context.Context, s *model.Session, msg *model.InboundMessage) error {
		return errors.New("boom")
	}
	h := NewWebhookHandler(session.NewManager(), handle, testLogger(t))

	rec := postWebhook(t, h, map[string]any{"chat_id": "chat-1", "text": "hola"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func ticketRouter(h *TicketHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/tickets/{folio}", h.Get)
	r.Get("/api/v1/chats/{chatID}/tickets", h.ListOpen)
	return r
}

func TestTicketGet(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateTicket(ctx, &model.Ticket{
		ID:     "t1",
		Folio:  "INS-000001",
		Status: model.StatusOpen,
		Place:  "Habitación 1205",
	}))
	router := ticketRouter(NewTicketHandler(st, testLogger(t)))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/INS-000001", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ticket model.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.Equal(t, "Habitación 1205", ticket.Place)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/INS-999999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/lowercase-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func signedToken(t *testing.T, secret string, scopes []string) string {
	t.Helper()
	claims := &middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		PropertyID: "prop-1",
		Scopes:     scopes,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestTicketAPIRequiresScope(t *testing.T) {
	const secret = "test-secret"
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateTicket(context.Background(), &model.Ticket{
		ID:     "t1",
		Folio:  "INS-000001",
		Status: model.StatusOpen,
	}))
	h := NewTicketHandler(st, testLogger(t))

	// Mounted the same way the server mounts the read API.
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(secret))
		r.Use(middleware.RequireScope("tickets:read"))
		r.Get("/tickets/{folio}", h.Get)
	})

	get := func(scopes []string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/INS-000001", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, scopes))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get([]string{"tickets:read"}).Code)
	assert.Equal(t, http.StatusForbidden, get([]string{"tickets:write"}).Code)
	assert.Equal(t, http.StatusForbidden, get(nil).Code)
}

func TestTicketListOpen(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateTicket(ctx, &model.Ticket{ID: "a", Folio: "INS-000001", GroupID: "chat-1", Status: model.StatusOpen}))
	require.NoError(t, st.CreateTicket(ctx, &model.Ticket{ID: "b", Folio: "INS-000002", GroupID: "chat-1", Status: model.StatusDone}))
	router := ticketRouter(NewTicketHandler(st, testLogger(t)))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-1/tickets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tickets []*model.Ticket `json:"tickets"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count, "terminal tickets are not listed")
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, "INS-000001", resp.Tickets[0].Folio)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chats/chat-2/tickets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}
