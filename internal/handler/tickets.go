package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/middleware"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
)

// TicketHandler exposes read-only ticket endpoints for dashboards and the
// servicing teams.
type TicketHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewTicketHandler creates a ticket handler.
func NewTicketHandler(st store.Store, log *logger.Logger) *TicketHandler {
	return &TicketHandler{store: st, logger: log}
}

// Get handles GET /api/v1/tickets/{folio}
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	folio := chi.URLParam(r, "folio")
	if err := middleware.ValidateFolio(folio); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.store.GetTicketByFolio(r.Context(), folio)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found")
			return
		}
		h.logger.Error("failed to get ticket", zap.String("folio", folio), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get ticket")
		return
	}

	h.logger.Debug("ticket read",
		zap.String("folio", folio),
		zap.String("user_id", middleware.GetUserID(r.Context())),
		zap.String("property_id", middleware.GetPropertyID(r.Context())))
	writeJSON(w, http.StatusOK, ticket)
}

// ListOpen handles GET /api/v1/chats/{chatID}/tickets
func (h *TicketHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := middleware.ValidateChatID(chatID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tickets, err := h.store.ListOpenForGroup(r.Context(), chatID)
	if err != nil {
		h.logger.Error("failed to list tickets", zap.String("chat_id", chatID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}
	if tickets == nil {
		tickets = []*model.Ticket{}
	}

	h.logger.Debug("ticket list read",
		zap.String("chat_id", chatID),
		zap.String("user_id", middleware.GetUserID(r.Context())))
	writeJSON(w, http.StatusOK, map[string]any{
		"tickets": tickets,
		"count":   len(tickets),
	})
}
