package model

import "time"

// InboundMessage is one message delivered by the messaging channel.
type InboundMessage struct {
	ID              string    `json:"id"`
	ChatID          string    `json:"chat_id"`
	Text            string    `json:"text"`
	HasMedia        bool      `json:"has_media"`
	MediaRef        string    `json:"media_ref,omitempty"`
	QuotedMessageID string    `json:"quoted_message_id,omitempty"`
	QuotedText      string    `json:"quoted_text,omitempty"`
	IsGroup         bool      `json:"is_group"`
	ReceivedAt      time.Time `json:"received_at"`
}
