package repo

import (
	"context"

	"telegram-filter-bot/internal/biz/domain"
)

// SentMessage identifies a message the transport delivered.
type SentMessage struct {
	ChatID    int64
	MessageID int
}

// MessageRepo is the outbound transport interface. It consumes send plans
// and simple replies; the core never touches the platform API directly.
type MessageRepo interface {
	// SendPlan dispatches a filter send plan to a chat.
	SendPlan(ctx context.Context, chatID int64, plan *domain.SendPlan) (*SentMessage, error)

	// SendText sends a plain text message, no parse mode.
	SendText(ctx context.Context, chatID int64, text string) (*SentMessage, error)

	// SendHTML sends an HTML-formatted message with an optional button grid.
	SendHTML(ctx context.Context, chatID int64, html string, buttons [][]domain.Button) (*SentMessage, error)

	// EditHTML replaces the text and buttons of a sent message.
	EditHTML(ctx context.Context, chatID int64, messageID int, html string, buttons [][]domain.Button) error

	// Delete removes a message. Deleting an already-gone message is not
	// an error worth surfacing.
	Delete(ctx context.Context, chatID int64, messageID int) error

	// AnswerCallback acknowledges a callback query.
	AnswerCallback(ctx context.Context, callbackID string) error
}
