package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/middleware"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/session"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/metrics"
)

// WebhookHandler receives inbound chat messages from the messaging channel.
type WebhookHandler struct {
	sessions *session.Manager
	handle   session.Handler
	logger   *logger.Logger
}

// NewWebhookHandler creates a webhook handler wired to the state machine.
func NewWebhookHandler(sessions *session.Manager, handle session.Handler, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		sessions: sessions,
		handle:   handle,
		logger:   log,
	}
}

// inboundPayload is the channel's webhook body.
type inboundPayload struct {
	MessageID       string `json:"message_id"`
	ChatID          string `json:"chat_id"`
	Text            string `json:"text"`
	IsGroup         bool   `json:"is_group"`
	HasMedia        bool   `json:"has_media"`
	MediaRef        string `json:"media_ref,omitempty"`
	QuotedMessageID string `json:"quoted_message_id,omitempty"`
	QuotedText      string `json:"quoted_text,omitempty"`
	Timestamp       int64  `json:"timestamp,omitempty"`
}

// Receive handles POST /webhook/messages
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload inboundPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateChatID(payload.ChatID); err != nil {
		metrics.InboundMessagesTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !payload.HasMedia {
		if err := middleware.ValidateMessageText(payload.Text); err != nil {
			metrics.InboundMessagesTotal.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	msg := &model.InboundMessage{
		ID:              payload.MessageID,
		ChatID:          payload.ChatID,
		Text:            payload.Text,
		HasMedia:        payload.HasMedia,
		MediaRef:        payload.MediaRef,
		QuotedMessageID: payload.QuotedMessageID,
		QuotedText:      payload.QuotedText,
		IsGroup:         payload.IsGroup,
		ReceivedAt:      time.Now(),
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if payload.Timestamp > 0 {
		msg.ReceivedAt = time.Unix(payload.Timestamp, 0)
	}

	if err := h.sessions.Dispatch(r.Context(), msg, h.handle); err != nil {
		metrics.InboundMessagesTotal.WithLabelValues("failed").Inc()
		h.logger.WithChat(msg.ChatID).Error("message handling failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	metrics.InboundMessagesTotal.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":     "accepted",
		"message_id": msg.ID,
	})
}
