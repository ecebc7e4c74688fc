package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-filter-bot/internal/biz"
	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
)

// managementPrefixes are the filter-management commands. Messages starting
// with one of these never reach trigger resolution.
var managementPrefixes = []string{"!add", "!del", "!list", "!rename", "!clone", "!status"}

// Dispatcher routes inbound updates: access checks first, then commands,
// then filter trigger resolution, with the AI path behind /ask.
type Dispatcher struct {
	uc        *biz.Usecases
	filters   repo.FilterRepo
	sender    repo.MessageRepo
	scheduler *AutoDeleteScheduler

	commandDelete time.Duration
	replyDelete   time.Duration
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(
	uc *biz.Usecases,
	filters repo.FilterRepo,
	sender repo.MessageRepo,
	scheduler *AutoDeleteScheduler,
	commandDelete, replyDelete time.Duration,
) *Dispatcher {
	return &Dispatcher{
		uc:            uc,
		filters:       filters,
		sender:        sender,
		scheduler:     scheduler,
		commandDelete: commandDelete,
		replyDelete:   replyDelete,
	}
}

// HandleUpdate processes one Telegram update to completion.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		d.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.Text == "" || msg.From == nil {
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	if blocked, err := d.uc.Guard.IsBlacklisted(ctx, userID); err != nil {
		fmt.Printf("[Dispatcher] Blacklist check failed for %d: %v\n", userID, err)
		return
	} else if blocked {
		return
	}
	if muted, err := d.uc.Guard.IsTimedOut(ctx, userID); err != nil {
		fmt.Printf("[Dispatcher] Timeout check failed for %d: %v\n", userID, err)
		return
	} else if muted {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		d.handleSlashCommand(ctx, msg)
		return
	}
	if isManagementCommand(msg.Text) {
		d.handleFilterCommand(ctx, msg)
		return
	}

	d.dispatchTrigger(ctx, chatID, msg.Text)
}

func isManagementCommand(text string) bool {
	for _, prefix := range managementPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// dispatchTrigger resolves the message against the filter table and sends
// the matched filter's content.
func (d *Dispatcher) dispatchTrigger(ctx context.Context, chatID int64, text string) {
	f, name, err := d.uc.Trigger.Resolve(ctx, text)
	if err != nil {
		fmt.Printf("[Dispatcher] Trigger resolution failed: %v\n", err)
		return
	}
	if f == nil {
		return
	}

	plan, err := d.uc.Render.Plan(f)
	if err != nil {
		// Contentless filters and malformed spans are data-integrity
		// bugs from filter creation; log them loudly instead of
		// producing a silent no-op send.
		fmt.Printf("[Dispatcher] Filter %q is corrupt: %v\n", name, err)
		return
	}

	if _, err := d.sender.SendPlan(ctx, chatID, plan); err != nil {
		fmt.Printf("[Dispatcher] Failed to send filter %q: %v\n", name, err)
	}
}

// handleAsk runs the AI fallback path for /ask.
func (d *Dispatcher) handleAsk(ctx context.Context, msg *tgbotapi.Message, question string) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if d.uc.Chat == nil {
		d.replyEphemeral(ctx, chatID, "AI answers are not enabled on this bot.")
		return
	}
	if question == "" {
		d.replyEphemeral(ctx, chatID, "Usage: /ask &lt;question&gt;")
		return
	}
	if !d.uc.RateLimit.Allow(userID) {
		d.replyEphemeral(ctx, chatID, "Slow down! Too many requests.")
		return
	}

	tier, err := d.uc.Guard.RequesterTier(ctx, userID)
	if err != nil {
		fmt.Printf("[Dispatcher] Tier lookup failed for %d: %v\n", userID, err)
		tier = domain.RequesterUser
	}

	answer, err := d.uc.Chat.Ask(ctx, tier, question)
	if err != nil {
		var provErr *repo.ProviderError
		switch {
		case errors.Is(err, domain.ErrAllModelsExhausted):
			d.replyEphemeral(ctx, chatID, "All models are at capacity right now, please try again in a minute.")
		case errors.As(err, &provErr):
			fmt.Printf("[Dispatcher] Provider error: %v\n", provErr)
			d.replyEphemeral(ctx, chatID, "Sorry, I couldn't get an answer right now. Please try again later.")
		default:
			fmt.Printf("[Dispatcher] Ask failed: %v\n", err)
			d.replyEphemeral(ctx, chatID, "Sorry, something went wrong.")
		}
		return
	}

	if _, err := d.sender.SendText(ctx, chatID, answer); err != nil {
		fmt.Printf("[Dispatcher] Failed to send answer: %v\n", err)
	}
}

// handleCallback answers pagination callbacks from the !list keyboard.
func (d *Dispatcher) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	defer func() {
		if err := d.sender.AnswerCallback(ctx, query.ID); err != nil {
			fmt.Printf("[Dispatcher] Failed to answer callback: %v\n", err)
		}
	}()

	if query.Data == "noop" || query.Message == nil {
		return
	}

	page, ok := parseFilterPageCallback(query.Data)
	if !ok {
		return
	}

	names, err := d.filters.Names(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] Failed to list filters: %v\n", err)
		return
	}

	text, buttons := filterListPage(names, page)
	chatID := query.Message.Chat.ID
	if err := d.sender.EditHTML(ctx, chatID, query.Message.MessageID, text, buttons); err != nil {
		fmt.Printf("[Dispatcher] Failed to edit filter list: %v\n", err)
	}
}

// replyEphemeral sends an HTML reply scheduled for auto-deletion.
func (d *Dispatcher) replyEphemeral(ctx context.Context, chatID int64, html string) {
	sent, err := d.sender.SendHTML(ctx, chatID, html, nil)
	if err != nil {
		fmt.Printf("[Dispatcher] Failed to send reply: %v\n", err)
		return
	}
	d.scheduler.Schedule(sent.ChatID, sent.MessageID, d.commandDelete)
}

// replyKept sends an HTML reply with the longer auto-delete delay used for
// successful outcomes.
func (d *Dispatcher) replyKept(ctx context.Context, chatID int64, html string, buttons [][]domain.Button) {
	sent, err := d.sender.SendHTML(ctx, chatID, html, buttons)
	if err != nil {
		fmt.Printf("[Dispatcher] Failed to send reply: %v\n", err)
		return
	}
	d.scheduler.Schedule(sent.ChatID, sent.MessageID, d.replyDelete)
}
