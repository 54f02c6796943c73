// Package channel defines the messaging channel boundary: how the core
// talks back to chats and notifies teams.
package channel

import (
	"context"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/model"
)

// Sender delivers outbound text to a chat identity.
type Sender interface {
	SendText(ctx context.Context, chatID, text string) error
}

// TeamNotifier announces dispatched tickets and lifecycle events to the
// servicing teams.
type TeamNotifier interface {
	NotifyTeam(ctx context.Context, ticket *model.Ticket) error
	NotifyEvent(ctx context.Context, ticket *model.Ticket, event *model.TicketEvent) error
}
