package service

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-filter-bot/internal/biz/domain"
)

const filtersPerPage = 15

// handleSlashCommand handles the admin-management and AI commands.
func (d *Dispatcher) handleSlashCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	command := msg.Command()
	if command == "" {
		return
	}

	// Command chatter is cleaned up regardless of outcome.
	d.scheduler.Schedule(chatID, msg.MessageID, d.commandDelete)

	if command == "ask" {
		d.handleAsk(ctx, msg, strings.TrimSpace(msg.CommandArguments()))
		return
	}
	if command == "start" || command == "help" {
		d.replyKept(ctx, chatID, helpText(), nil)
		return
	}

	admin, err := d.uc.Guard.IsAdmin(ctx, userID)
	if err != nil {
		fmt.Printf("[Dispatcher] Admin check failed for %d: %v\n", userID, err)
		return
	}
	if !admin {
		d.replyEphemeral(ctx, chatID, "You are not an admin!")
		return
	}
	if !d.uc.RateLimit.Allow(userID) {
		d.replyEphemeral(ctx, chatID, "Slow down! Too many requests.")
		return
	}

	switch command {
	case "addadmin":
		d.withRepliedUser(ctx, msg, "Reply to a message from the user you want to promote.", func(targetID int64) {
			if already, _ := d.uc.Guard.IsAdmin(ctx, targetID); already {
				d.replyEphemeral(ctx, chatID, "That user is already an admin.")
				return
			}
			if err := d.uc.Guard.AddAdmin(ctx, targetID); err != nil {
				d.replyEphemeral(ctx, chatID, "Could not add admin: "+html.EscapeString(err.Error()))
				return
			}
			d.replyKept(ctx, chatID, fmt.Sprintf("Admin added!\nUser ID: <code>%d</code>", targetID), nil)
		})

	case "removeadmin":
		d.withRepliedUser(ctx, msg, "Reply to a message from the admin you want to remove.", func(targetID int64) {
			if d.uc.Guard.IsOwner(targetID) {
				d.replyEphemeral(ctx, chatID, "The owner cannot be removed.")
				return
			}
			if isAdmin, _ := d.uc.Guard.IsAdmin(ctx, targetID); !isAdmin {
				d.replyEphemeral(ctx, chatID, "That user is not an admin.")
				return
			}
			if err := d.uc.Guard.RemoveAdmin(ctx, targetID); err != nil {
				d.replyEphemeral(ctx, chatID, "Could not remove admin: "+html.EscapeString(err.Error()))
				return
			}
			d.replyKept(ctx, chatID, fmt.Sprintf("Admin removed!\nUser ID: <code>%d</code>", targetID), nil)
		})

	case "listadmins":
		d.listAdmins(ctx, chatID)

	case "ban":
		d.withRepliedUser(ctx, msg, "Reply to a message from the user you want to ban.", func(targetID int64) {
			if err := d.uc.Guard.Ban(ctx, targetID); err != nil {
				d.replyEphemeral(ctx, chatID, "Could not ban: "+html.EscapeString(err.Error()))
				return
			}
			d.replyKept(ctx, chatID, fmt.Sprintf("User banned.\nUser ID: <code>%d</code>", targetID), nil)
		})

	case "unban":
		d.withRepliedUser(ctx, msg, "Reply to a message from the user you want to unban.", func(targetID int64) {
			if err := d.uc.Guard.Unban(ctx, targetID); err != nil {
				d.replyEphemeral(ctx, chatID, "Could not unban: "+html.EscapeString(err.Error()))
				return
			}
			d.replyKept(ctx, chatID, fmt.Sprintf("User unbanned.\nUser ID: <code>%d</code>", targetID), nil)
		})

	case "timeout":
		args := strings.Fields(msg.CommandArguments())
		if len(args) == 0 {
			d.replyEphemeral(ctx, chatID, "Usage: /timeout &lt;minutes&gt; [reason] (as a reply)")
			return
		}
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes <= 0 {
			d.replyEphemeral(ctx, chatID, "Timeout minutes must be a positive number.")
			return
		}
		reason := strings.Join(args[1:], " ")
		d.withRepliedUser(ctx, msg, "Reply to a message from the user you want to mute.", func(targetID int64) {
			if err := d.uc.Guard.TimeoutUser(ctx, targetID, time.Duration(minutes)*time.Minute, reason); err != nil {
				d.replyEphemeral(ctx, chatID, "Could not mute: "+html.EscapeString(err.Error()))
				return
			}
			d.replyKept(ctx, chatID, fmt.Sprintf("User muted for %d minutes.\nUser ID: <code>%d</code>", minutes, targetID), nil)
		})
	}
}

// withRepliedUser resolves the reply-capture target or reports usage.
func (d *Dispatcher) withRepliedUser(ctx context.Context, msg *tgbotapi.Message, usage string, fn func(targetID int64)) {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		d.replyEphemeral(ctx, msg.Chat.ID, usage)
		return
	}
	fn(msg.ReplyToMessage.From.ID)
}

func (d *Dispatcher) listAdmins(ctx context.Context, chatID int64) {
	admins, err := d.uc.Guard.ListAdmins(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] Failed to list admins: %v\n", err)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Owner:</b>\nUser ID: <code>%d</code>\n", d.uc.Guard.OwnerID()))
	others := admins[:0:0]
	for _, id := range admins {
		if !d.uc.Guard.IsOwner(id) {
			others = append(others, id)
		}
	}
	if len(others) > 0 {
		sb.WriteString("\n<b>Admins:</b>\n")
		for i, id := range others {
			sb.WriteString(fmt.Sprintf("%d. User ID: <code>%d</code>\n", i+1, id))
		}
	}
	d.replyKept(ctx, chatID, sb.String(), nil)
}

// handleFilterCommand handles the !-prefixed filter management commands.
// All of them are admin-only.
func (d *Dispatcher) handleFilterCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	d.scheduler.Schedule(chatID, msg.MessageID, d.commandDelete)

	admin, err := d.uc.Guard.IsAdmin(ctx, userID)
	if err != nil {
		fmt.Printf("[Dispatcher] Admin check failed for %d: %v\n", userID, err)
		return
	}
	if !admin {
		d.replyEphemeral(ctx, chatID, "You are not an admin!")
		return
	}

	fields := strings.Fields(msg.Text)
	command := fields[0]

	// !list and !status only read; the rest mutate and are rate limited.
	if command != "!list" && command != "!status" && !d.uc.RateLimit.Allow(userID) {
		d.replyEphemeral(ctx, chatID, "Slow down! Too many requests.")
		return
	}

	switch command {
	case "!add":
		d.addFilter(ctx, msg, fields)
	case "!del":
		d.deleteFilter(ctx, msg, fields)
	case "!list":
		d.listFilters(ctx, chatID)
	case "!rename":
		d.renameFilter(ctx, msg, fields)
	case "!clone":
		d.cloneFilter(ctx, msg, fields)
	case "!status":
		d.status(ctx, chatID)
	}
}

func (d *Dispatcher) addFilter(ctx context.Context, msg *tgbotapi.Message, fields []string) {
	chatID := msg.Chat.ID
	if len(fields) < 2 {
		d.replyEphemeral(ctx, chatID, "Usage: !add &lt;name&gt; (as a reply to the message to store)")
		return
	}
	if msg.ReplyToMessage == nil {
		d.replyEphemeral(ctx, chatID, "Reply to the message you want to store as a filter.")
		return
	}

	name := strings.ToLower(fields[1])
	f := captureFilter(msg.ReplyToMessage, msg.From.ID)
	if !f.HasContent() {
		d.replyEphemeral(ctx, chatID, "That message has no storable content.")
		return
	}

	if err := d.filters.Put(ctx, name, f); err != nil {
		fmt.Printf("[Dispatcher] Failed to store filter %q: %v\n", name, err)
		d.replyEphemeral(ctx, chatID, "Could not save the filter.")
		return
	}
	d.replyKept(ctx, chatID, fmt.Sprintf("Filter <b>%s</b> added!", html.EscapeString(name)), nil)
}

func (d *Dispatcher) deleteFilter(ctx context.Context, msg *tgbotapi.Message, fields []string) {
	chatID := msg.Chat.ID
	if len(fields) < 2 {
		d.replyEphemeral(ctx, chatID, "Usage: !del &lt;name&gt;")
		return
	}

	name := strings.ToLower(fields[1])
	f, err := d.filters.Get(ctx, name)
	if err != nil {
		fmt.Printf("[Dispatcher] Failed to read filter %q: %v\n", name, err)
		return
	}
	if f == nil {
		d.replyEphemeral(ctx, chatID, fmt.Sprintf("Filter <b>%s</b> does not exist.", html.EscapeString(name)))
		return
	}

	if err := d.filters.Delete(ctx, name); err != nil {
		fmt.Printf("[Dispatcher] Failed to delete filter %q: %v\n", name, err)
		d.replyEphemeral(ctx, chatID, "Could not delete the filter.")
		return
	}
	d.replyKept(ctx, chatID, fmt.Sprintf("Filter <b>%s</b> deleted!", html.EscapeString(name)), nil)
}

func (d *Dispatcher) renameFilter(ctx context.Context, msg *tgbotapi.Message, fields []string) {
	chatID := msg.Chat.ID
	if len(fields) < 3 {
		d.replyEphemeral(ctx, chatID, "Usage: !rename &lt;old&gt; &lt;new&gt;")
		return
	}

	oldName := strings.ToLower(fields[1])
	newName := strings.ToLower(fields[2])
	if err := d.filters.Rename(ctx, oldName, newName); err != nil {
		d.replyEphemeral(ctx, chatID, "Could not rename: "+html.EscapeString(err.Error()))
		return
	}
	d.replyKept(ctx, chatID, fmt.Sprintf("Filter <b>%s</b> renamed to <b>%s</b>!",
		html.EscapeString(oldName), html.EscapeString(newName)), nil)
}

func (d *Dispatcher) cloneFilter(ctx context.Context, msg *tgbotapi.Message, fields []string) {
	chatID := msg.Chat.ID
	if len(fields) < 3 {
		d.replyEphemeral(ctx, chatID, "Usage: !clone &lt;source&gt; &lt;target&gt;")
		return
	}

	srcName := strings.ToLower(fields[1])
	dstName := strings.ToLower(fields[2])

	src, err := d.filters.Get(ctx, srcName)
	if err != nil {
		fmt.Printf("[Dispatcher] Failed to read filter %q: %v\n", srcName, err)
		return
	}
	if src == nil {
		d.replyEphemeral(ctx, chatID, fmt.Sprintf("Filter <b>%s</b> does not exist.", html.EscapeString(srcName)))
		return
	}
	if existing, _ := d.filters.Get(ctx, dstName); existing != nil {
		d.replyEphemeral(ctx, chatID, fmt.Sprintf("Filter <b>%s</b> already exists.", html.EscapeString(dstName)))
		return
	}

	clone := src.Clone()
	clone.CreatedAt = time.Now()
	clone.CreatedBy = msg.From.ID
	if err := d.filters.Put(ctx, dstName, clone); err != nil {
		fmt.Printf("[Dispatcher] Failed to store filter %q: %v\n", dstName, err)
		d.replyEphemeral(ctx, chatID, "Could not save the clone.")
		return
	}
	d.replyKept(ctx, chatID, fmt.Sprintf("Filter <b>%s</b> cloned to <b>%s</b>!",
		html.EscapeString(srcName), html.EscapeString(dstName)), nil)
}

func (d *Dispatcher) listFilters(ctx context.Context, chatID int64) {
	names, err := d.filters.Names(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] Failed to list filters: %v\n", err)
		return
	}
	if len(names) == 0 {
		d.replyEphemeral(ctx, chatID, "No filters yet.")
		return
	}

	text, buttons := filterListPage(names, 1)
	d.replyKept(ctx, chatID, text, buttons)
}

func (d *Dispatcher) status(ctx context.Context, chatID int64) {
	admins, _ := d.uc.Guard.ListAdmins(ctx)
	filterCount, _ := d.filters.Count(ctx)

	var sb strings.Builder
	sb.WriteString("<b>Bot status</b>\n\n")
	sb.WriteString(fmt.Sprintf("Admins: <b>%d</b>\n", len(admins)))
	sb.WriteString(fmt.Sprintf("Filters: <b>%d</b>\n", filterCount))
	sb.WriteString(fmt.Sprintf("Pending deletions: <b>%d</b>\n", d.scheduler.PendingCount()))
	for _, m := range d.uc.Router.Snapshot() {
		sb.WriteString(fmt.Sprintf("Model %s (tier %d): <b>%d/%d</b> today\n",
			html.EscapeString(m.Name), m.Tier, m.DailyUsed, m.DailyLimit))
	}
	d.replyKept(ctx, chatID, sb.String(), nil)
}

func helpText() string {
	return strings.Join([]string{
		"<b>Filter bot</b>",
		"",
		"Trigger a filter with <code>!name</code>, by sending its name, or by mentioning it.",
		"",
		"<b>Admin commands</b>",
		"<code>!add name</code> — store the replied message as a filter",
		"<code>!del name</code> — delete a filter",
		"<code>!rename old new</code> — rename a filter",
		"<code>!clone src dst</code> — copy a filter",
		"<code>!list</code> — list filters",
		"<code>!status</code> — bot status",
		"/addadmin, /removeadmin, /listadmins — manage admins (reply)",
		"/ban, /unban, /timeout — moderate users (reply)",
		"",
		"/ask question — ask the AI",
	}, "\n")
}

// captureFilter builds a filter record from a replied message: its text or
// caption, both entity lists, the single media payload, and any inline
// keyboard.
func captureFilter(reply *tgbotapi.Message, createdBy int64) *domain.Filter {
	f := &domain.Filter{
		Text:            reply.Text,
		Entities:        spansFromEntities(reply.Entities),
		CaptionEntities: spansFromEntities(reply.CaptionEntities),
		CreatedAt:       time.Now(),
		CreatedBy:       createdBy,
	}
	if f.Text == "" {
		f.Text = reply.Caption
	}

	switch {
	case len(reply.Photo) > 0:
		// The last size is the largest rendition.
		f.Media = domain.MediaRef{Kind: domain.MediaPhoto, FileID: reply.Photo[len(reply.Photo)-1].FileID}
	case reply.Video != nil:
		f.Media = domain.MediaRef{Kind: domain.MediaVideo, FileID: reply.Video.FileID}
	case reply.Document != nil:
		f.Media = domain.MediaRef{Kind: domain.MediaDocument, FileID: reply.Document.FileID}
	case reply.Animation != nil:
		f.Media = domain.MediaRef{Kind: domain.MediaAnimation, FileID: reply.Animation.FileID}
	case reply.Audio != nil:
		f.Media = domain.MediaRef{Kind: domain.MediaAudio, FileID: reply.Audio.FileID}
	case reply.Voice != nil:
		f.Media = domain.MediaRef{Kind: domain.MediaVoice, FileID: reply.Voice.FileID}
	case reply.Sticker != nil:
		f.Media = domain.MediaRef{Kind: domain.MediaSticker, FileID: reply.Sticker.FileID}
	}

	if reply.ReplyMarkup != nil {
		f.Buttons = buttonsFromMarkup(reply.ReplyMarkup)
	}
	return f
}

func spansFromEntities(entities []tgbotapi.MessageEntity) []domain.Span {
	if len(entities) == 0 {
		return nil
	}
	spans := make([]domain.Span, 0, len(entities))
	for _, e := range entities {
		sp := domain.Span{
			Kind:   domain.SpanKind(e.Type),
			Offset: e.Offset,
			Length: e.Length,
			URL:    e.URL,
		}
		if e.User != nil {
			sp.UserID = e.User.ID
		}
		spans = append(spans, sp)
	}
	return spans
}

func buttonsFromMarkup(markup *tgbotapi.InlineKeyboardMarkup) [][]domain.Button {
	if markup == nil || len(markup.InlineKeyboard) == 0 {
		return nil
	}
	grid := make([][]domain.Button, 0, len(markup.InlineKeyboard))
	for _, row := range markup.InlineKeyboard {
		out := make([]domain.Button, 0, len(row))
		for _, b := range row {
			btn := domain.Button{Label: b.Text}
			if b.URL != nil {
				btn.URL = *b.URL
			}
			if b.CallbackData != nil {
				btn.CallbackData = *b.CallbackData
			}
			out = append(out, btn)
		}
		grid = append(grid, out)
	}
	return grid
}

// filterListPage renders one page of the filter list with its pagination
// keyboard (nil for a single page).
func filterListPage(names []string, page int) (string, [][]domain.Button) {
	totalPages := (len(names) + filtersPerPage - 1) / filtersPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * filtersPerPage
	end := start + filtersPerPage
	if end > len(names) {
		end = len(names)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Filters (%d total):</b>\n\n", len(names)))
	for i, name := range names[start:end] {
		escaped := html.EscapeString(name)
		sb.WriteString(fmt.Sprintf("%d. <code>!%s</code> or <code>%s</code>\n", start+i+1, escaped, escaped))
	}

	if totalPages <= 1 {
		return sb.String(), nil
	}

	var row []domain.Button
	if page > 1 {
		row = append(row, domain.Button{Label: "< Prev", CallbackData: fmt.Sprintf("filters_%d", page-1)})
	}
	row = append(row, domain.Button{Label: fmt.Sprintf("%d/%d", page, totalPages), CallbackData: "noop"})
	if page < totalPages {
		row = append(row, domain.Button{Label: "Next >", CallbackData: fmt.Sprintf("filters_%d", page+1)})
	}
	return sb.String(), [][]domain.Button{row}
}

func parseFilterPageCallback(data string) (int, bool) {
	const prefix = "filters_"
	if !strings.HasPrefix(data, prefix) {
		return 0, false
	}
	page, err := strconv.Atoi(data[len(prefix):])
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}
