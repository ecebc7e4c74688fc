package data

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
)

// TelegramSender implements the outbound transport over the Telegram Bot
// API.
type TelegramSender struct {
	api *tgbotapi.BotAPI
}

// NewTelegramSender creates a sender over an authorized bot API client.
func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

// SendPlan dispatches a send plan: one media primitive or a text message,
// plus the sticker follow-up text when present.
func (s *TelegramSender) SendPlan(ctx context.Context, chatID int64, plan *domain.SendPlan) (*repo.SentMessage, error) {
	var (
		sent tgbotapi.Message
		err  error
	)

	switch plan.Media.Kind {
	case domain.MediaNone:
		msg := tgbotapi.NewMessage(chatID, plan.Text)
		msg.ParseMode = string(plan.ParseMode)
		msg.ReplyMarkup = keyboard(plan.Buttons)
		sent, err = s.api.Send(msg)

	case domain.MediaPhoto:
		msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(plan.Media.FileID))
		msg.Caption = plan.Text
		msg.ParseMode = string(plan.ParseMode)
		msg.ReplyMarkup = keyboard(plan.Buttons)
		sent, err = s.api.Send(msg)

	case domain.MediaVideo:
		msg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(plan.Media.FileID))
		msg.Caption = plan.Text
		msg.ParseMode = string(plan.ParseMode)
		msg.ReplyMarkup = keyboard(plan.Buttons)
		sent, err = s.api.Send(msg)

	case domain.MediaDocument:
		msg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(plan.Media.FileID))
		msg.Caption = plan.Text
		msg.ParseMode = string(plan.ParseMode)
		msg.ReplyMarkup = keyboard(plan.Buttons)
		sent, err = s.api.Send(msg)

	case domain.MediaAnimation:
		msg := tgbotapi.NewAnimation(chatID, tgbotapi.FileID(plan.Media.FileID))
		msg.Caption = plan.Text
		msg.ParseMode = string(plan.ParseMode)
		msg.ReplyMarkup = keyboard(plan.Buttons)
		sent, err = s.api.Send(msg)

	case domain.MediaAudio:
		msg := tgbotapi.NewAudio(chatID, tgbotapi.FileID(plan.Media.FileID))
		msg.Caption = plan.Text
		msg.ParseMode = string(plan.ParseMode)
		msg.ReplyMarkup = keyboard(plan.Buttons)
		sent, err = s.api.Send(msg)

	case domain.MediaVoice:
		msg := tgbotapi.NewVoice(chatID, tgbotapi.FileID(plan.Media.FileID))
		msg.Caption = plan.Text
		msg.ParseMode = string(plan.ParseMode)
		msg.ReplyMarkup = keyboard(plan.Buttons)
		sent, err = s.api.Send(msg)

	case domain.MediaSticker:
		msg := tgbotapi.NewSticker(chatID, tgbotapi.FileID(plan.Media.FileID))
		sent, err = s.api.Send(msg)
		if err == nil && plan.FollowUpText != "" {
			followUp := tgbotapi.NewMessage(chatID, plan.FollowUpText)
			followUp.ParseMode = string(plan.FollowUpParseMode)
			followUp.ReplyMarkup = keyboard(plan.Buttons)
			sent, err = s.api.Send(followUp)
		}

	default:
		return nil, fmt.Errorf("unknown media kind %q", plan.Media.Kind)
	}

	if err != nil {
		return nil, fmt.Errorf("send %s: %w", mediaLabel(plan.Media.Kind), err)
	}
	return &repo.SentMessage{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// SendText sends a plain text message.
func (s *TelegramSender) SendText(ctx context.Context, chatID int64, text string) (*repo.SentMessage, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := s.api.Send(msg)
	if err != nil {
		return nil, err
	}
	return &repo.SentMessage{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// SendHTML sends an HTML-formatted message with an optional button grid.
func (s *TelegramSender) SendHTML(ctx context.Context, chatID int64, html string, buttons [][]domain.Button) (*repo.SentMessage, error) {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard(buttons)
	sent, err := s.api.Send(msg)
	if err != nil {
		return nil, err
	}
	return &repo.SentMessage{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// EditHTML replaces the text and buttons of a sent message.
func (s *TelegramSender) EditHTML(ctx context.Context, chatID int64, messageID int, html string, buttons [][]domain.Button) error {
	var err error
	if kb := keyboard(buttons); kb != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, html, *kb)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err = s.api.Send(edit)
	} else {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, html)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err = s.api.Send(edit)
	}
	return err
}

// Delete removes a message.
func (s *TelegramSender) Delete(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// AnswerCallback acknowledges a callback query.
func (s *TelegramSender) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := s.api.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

// keyboard translates a button grid into an inline keyboard, preserving the
// row/column structure. Returns nil for an empty grid so no reply markup is
// attached.
func keyboard(buttons [][]domain.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		if len(row) == 0 {
			continue
		}
		out := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				out = append(out, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			} else {
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.CallbackData))
			}
		}
		rows = append(rows, out)
	}
	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func mediaLabel(kind domain.MediaKind) string {
	if kind == domain.MediaNone {
		return "text"
	}
	return string(kind)
}

var _ repo.MessageRepo = (*TelegramSender)(nil)
