package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = `Owner commands:
/enable - start auto-posting
/disable - stop auto-posting
/set_message <text> - set the post text
/set_interval <15m|2h|1d|secs> - set the posting interval
/set_photo <url|file_id|none> - set or clear the photo
/set_buttons Label|url;Label2|url - replace the button list
/add_button Label|url - append one button
/clear_buttons - remove all buttons
/mode <copy|forward> - template delivery mode
/import - reply to a message to capture it as the template
/clear_template - drop the template
/preview - send the current post here
/forward - reply to a message to broadcast it once
/attach - put the buttons on the original template post
/detach - remove the buttons from the original template post
/add_group <id|@name|t.me link> - register a target chat
/remove_group <id|@name|t.me link> - unregister a target chat
/list_groups - list target chats
/status - show the current configuration`

// extractCommand returns the leading bot command (without the @botname
// suffix) and its arguments, or "" when the message is not a command.
// Photo uploads carry their command in the caption.
func extractCommand(message *models.Message) (string, string) {
	text := message.Text
	entities := message.Entities
	if text == "" && message.Caption != "" {
		text = message.Caption
		entities = message.CaptionEntities
	}

	for _, entity := range entities {
		if entity.Type != "bot_command" || entity.Offset != 0 {
			continue
		}
		command := text[:entity.Length]
		if at := strings.Index(command, "@"); at > 0 {
			command = command[:at]
		}
		args := strings.TrimSpace(text[entity.Length:])
		return command, args
	}
	return "", ""
}

var knownCommands = map[string]struct{}{
	"/start": {}, "/help": {},
	"/enable": {}, "/disable": {},
	"/set_message": {}, "/set_interval": {}, "/set_photo": {},
	"/set_buttons": {}, "/add_button": {}, "/clear_buttons": {},
	"/mode": {}, "/import": {}, "/clear_template": {},
	"/preview": {}, "/forward": {}, "/attach": {}, "/detach": {},
	"/add_group": {}, "/remove_group": {}, "/list_groups": {},
	"/status": {},
}

func (b *Bot) handleUpdate(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	command, args := extractCommand(message)
	if command == "" {
		return
	}
	if _, known := knownCommands[command]; !known {
		// Unrecognized input is ignored.
		return
	}

	if !b.isOwner(message) {
		unauthorizedTotal.Inc()
		if message.Chat.Type == "private" {
			b.sendResponse(ctx, message.Chat.ID, "Only bot owners can configure this bot.")
		}
		return
	}

	commandsTotal.WithLabelValues(command).Inc()
	chatID := message.Chat.ID

	switch command {
	case "/start", "/help":
		b.sendResponse(ctx, chatID, helpText)
	case "/enable":
		b.cmdEnable(ctx, chatID)
	case "/disable":
		b.cmdDisable(ctx, chatID)
	case "/set_message":
		b.cmdSetMessage(ctx, chatID, args)
	case "/set_interval":
		b.cmdSetInterval(ctx, chatID, args)
	case "/set_photo":
		b.cmdSetPhoto(ctx, chatID, message, args)
	case "/set_buttons":
		b.cmdSetButtons(ctx, chatID, args)
	case "/add_button":
		b.cmdAddButton(ctx, chatID, args)
	case "/clear_buttons":
		b.cmdClearButtons(ctx, chatID)
	case "/mode":
		b.cmdMode(ctx, chatID, args)
	case "/import":
		b.cmdImport(ctx, chatID, message)
	case "/clear_template":
		b.cmdClearTemplate(ctx, chatID)
	case "/preview":
		b.cmdPreview(ctx, chatID)
	case "/forward":
		b.cmdForward(ctx, chatID, message)
	case "/attach":
		b.cmdAttach(ctx, chatID)
	case "/detach":
		b.cmdDetach(ctx, chatID)
	case "/add_group":
		b.cmdAddGroup(ctx, chatID, args)
	case "/remove_group":
		b.cmdRemoveGroup(ctx, chatID, args)
	case "/list_groups":
		b.cmdListGroups(ctx, chatID)
	case "/status":
		b.cmdStatus(ctx, chatID)
	}
}

func (b *Bot) cmdEnable(ctx context.Context, chatID int64) {
	settings, err := b.store.SetEnabled(true)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.poster.Reschedule(true, settings.Interval(), true)
	b.sendResponse(ctx, chatID, "Auto-posting enabled ✅")
}

func (b *Bot) cmdDisable(ctx context.Context, chatID int64) {
	if _, err := b.store.SetEnabled(false); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.poster.Reschedule(false, 0, false)
	b.sendResponse(ctx, chatID, "Auto-posting disabled ⏹")
}

func (b *Bot) cmdSetMessage(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.sendResponse(ctx, chatID, "Usage: /set_message <text>")
		return
	}
	if _, err := b.store.SetMessage(args); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, "Message updated ✅")
}

func (b *Bot) cmdSetInterval(ctx context.Context, chatID int64, args string) {
	interval, err := parseInterval(args)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if interval.Seconds() < minIntervalSeconds {
		b.sendResponse(ctx, chatID, fmt.Sprintf("Interval too small; minimum is %ds.", minIntervalSeconds))
		return
	}

	settings, err := b.store.SetInterval(interval)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	// An active schedule restarts on the new cadence right away.
	b.poster.Reschedule(settings.Enabled, settings.Interval(), settings.Enabled)
	b.sendResponse(ctx, chatID, fmt.Sprintf("Interval set to %ds ✅", settings.IntervalSeconds))
}

func (b *Bot) cmdSetPhoto(ctx context.Context, chatID int64, message *models.Message, args string) {
	// A photo upload with the command in its caption sets the photo directly.
	if len(message.Photo) > 0 {
		fileID := message.Photo[len(message.Photo)-1].FileID
		if _, err := b.store.SetPhoto(fileID); err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		b.sendResponse(ctx, chatID, "Photo updated ✅")
		return
	}

	switch strings.ToLower(args) {
	case "":
		b.sendResponse(ctx, chatID, "Usage: /set_photo <url|file_id|none>")
	case "none", "clear", "remove":
		if _, err := b.store.SetPhoto(""); err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		b.sendResponse(ctx, chatID, "Photo cleared ✅")
	default:
		if _, err := b.store.SetPhoto(args); err != nil {
			b.replyError(ctx, chatID, err)
			return
		}
		b.sendResponse(ctx, chatID, "Photo updated ✅")
	}
}

func (b *Bot) cmdSetButtons(ctx context.Context, chatID int64, args string) {
	specs, err := parseButtonList(args)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if err := b.store.ReplaceButtons(specs); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, fmt.Sprintf("Buttons updated ✅ (%d)", len(specs)))
}

func (b *Bot) cmdAddButton(ctx context.Context, chatID int64, args string) {
	spec, err := parseButton(args)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if err := b.store.AddButton(spec); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, fmt.Sprintf("Button %q added ✅", spec.Label))
}

func (b *Bot) cmdClearButtons(ctx context.Context, chatID int64) {
	if err := b.store.ClearButtons(); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, "Buttons cleared ✅")
}

func (b *Bot) cmdMode(ctx context.Context, chatID int64, args string) {
	mode := strings.ToLower(args)
	if mode != "copy" && mode != "forward" {
		b.sendResponse(ctx, chatID, "Usage: /mode copy  or  /mode forward")
		return
	}
	useForward := mode == "forward"
	if _, err := b.store.SetMode(useForward); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, fmt.Sprintf("Mode set to %s ✅", modeBadge(useForward)))
}

func (b *Bot) cmdImport(ctx context.Context, chatID int64, message *models.Message) {
	src := message.ReplyToMessage
	if src == nil {
		b.sendResponse(ctx, chatID, "Reply /import to the message you want as the template.")
		return
	}

	// Prefer the original channel post over the DM copy, so /attach can
	// edit the post everyone sees.
	templateChatID := src.Chat.ID
	templateMessageID := src.ID
	if src.ForwardOrigin != nil && src.ForwardOrigin.Type == models.MessageOriginTypeChannel {
		if origin := src.ForwardOrigin.MessageOriginChannel; origin != nil && origin.Chat.ID != 0 && origin.MessageID != 0 {
			templateChatID = origin.Chat.ID
			templateMessageID = origin.MessageID
		}
	}

	text := src.Text
	entities := src.Entities
	if text == "" && src.Caption != "" {
		text = src.Caption
		entities = src.CaptionEntities
	}

	photo := ""
	if len(src.Photo) > 0 {
		photo = src.Photo[len(src.Photo)-1].FileID
	}

	// Most replied-to messages carry no inline keyboard at all.
	hasKeyboard := src.ReplyMarkup != nil && len(src.ReplyMarkup.InlineKeyboard) > 0

	_, err := b.store.SetTemplate(templateChatID, templateMessageID, hasKeyboard, text, encodeEntities(entities), photo)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}

	note := ""
	if hasKeyboard {
		note = " (with its own buttons)"
	}
	b.sendResponse(ctx, chatID, fmt.Sprintf("Template imported ✅%s", note))
}

func (b *Bot) cmdClearTemplate(ctx context.Context, chatID int64) {
	if _, err := b.store.ClearTemplate(); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, "Template cleared ✅; posting falls back to the stored text/photo.")
}

func (b *Bot) cmdPreview(ctx context.Context, chatID int64) {
	snap, err := b.store.Snapshot()
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if _, err := b.sendPost(ctx, chatID, snap); err != nil {
		b.replyError(ctx, chatID, err)
	}
}

func (b *Bot) cmdForward(ctx context.Context, chatID int64, message *models.Message) {
	src := message.ReplyToMessage
	if src == nil {
		b.sendResponse(ctx, chatID, "Reply /forward to the message you want to broadcast.")
		return
	}

	snap, err := b.store.Snapshot()
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	keyboard := buildKeyboard(snap.Buttons)

	forwarded := 0
	var failures []string
	for _, group := range snap.Groups {
		if err := sendPacer.Wait(ctx); err != nil {
			return
		}
		err := b.forwardWithKeyboard(ctx, group.ChatID, src.Chat.ID, src.ID, keyboard)
		if recErr := b.store.RecordPost(group.ChatID, "forward", err); recErr != nil {
			ErrorLogger.Printf("Error recording forward outcome for group %d: %v", group.ChatID, recErr)
		}
		if err != nil {
			postsFailed.WithLabelValues("forward").Inc()
			failures = append(failures, fmt.Sprintf("%d: %v", group.ChatID, err))
			continue
		}
		postsSent.WithLabelValues("forward").Inc()
		forwarded++
	}

	summary := fmt.Sprintf("Forwarded to %d group(s).", forwarded)
	if len(failures) > 0 {
		summary += "\nFailed:\n" + strings.Join(failures, "\n")
	}
	b.sendResponse(ctx, chatID, summary)
}

func (b *Bot) cmdAttach(ctx context.Context, chatID int64) {
	settings, err := b.store.Settings()
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if !settings.HasTemplate() {
		b.sendResponse(ctx, chatID, "No template set. Use /import first.")
		return
	}
	buttons, err := b.store.Buttons()
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	keyboard := buildKeyboard(buttons)
	if keyboard == nil {
		b.sendResponse(ctx, chatID, "No buttons set. Use /set_buttons first.")
		return
	}

	_, err = b.tgBot.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      settings.TemplateChatID,
		MessageID:   settings.TemplateMessageID,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		b.sendResponse(ctx, chatID, fmt.Sprintf("Edit failed: %v\nThe bot must be an admin of that channel with the edit-messages permission.", err))
		return
	}
	if _, err := b.store.SetTemplateKeyboard(true); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, "Attached the buttons to the original post ✅")
}

func (b *Bot) cmdDetach(ctx context.Context, chatID int64) {
	settings, err := b.store.Settings()
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if !settings.HasTemplate() {
		b.sendResponse(ctx, chatID, "No template set. Use /import first.")
		return
	}

	_, err = b.tgBot.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:    settings.TemplateChatID,
		MessageID: settings.TemplateMessageID,
	})
	if err != nil {
		b.sendResponse(ctx, chatID, fmt.Sprintf("Remove failed: %v", err))
		return
	}
	if _, err := b.store.SetTemplateKeyboard(false); err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, "Removed the buttons from the original post ✅")
}

// resolveChatRef turns a user-supplied chat reference into a chat ID,
// asking Telegram to resolve usernames.
func (b *Bot) resolveChatRef(ctx context.Context, args string) (int64, string, error) {
	ref, err := normalizeChatRef(args)
	if err != nil {
		return 0, "", err
	}
	if ref.ID != 0 {
		return ref.ID, "", nil
	}
	chat, err := b.tgBot.GetChat(ctx, &bot.GetChatParams{ChatID: ref.Username})
	if err != nil {
		return 0, "", fmt.Errorf("failed to resolve %s: %w", ref.Username, err)
	}
	return chat.ID, chat.Title, nil
}

func (b *Bot) cmdAddGroup(ctx context.Context, chatID int64, args string) {
	targetID, title, err := b.resolveChatRef(ctx, args)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	added, err := b.store.AddGroup(targetID, title)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if !added {
		b.sendResponse(ctx, chatID, fmt.Sprintf("Group %d is already registered.", targetID))
		return
	}
	b.sendResponse(ctx, chatID, fmt.Sprintf("Group %d added ✅", targetID))
}

func (b *Bot) cmdRemoveGroup(ctx context.Context, chatID int64, args string) {
	targetID, _, err := b.resolveChatRef(ctx, args)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	removed, err := b.store.RemoveGroup(targetID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if !removed {
		b.sendResponse(ctx, chatID, fmt.Sprintf("Group %d was not registered.", targetID))
		return
	}
	b.sendResponse(ctx, chatID, fmt.Sprintf("Group %d removed ✅", targetID))
}

func (b *Bot) cmdListGroups(ctx context.Context, chatID int64) {
	groups, err := b.store.Groups()
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if len(groups) == 0 {
		b.sendResponse(ctx, chatID, "No groups registered.")
		return
	}
	lines := make([]string, 0, len(groups))
	for _, group := range groups {
		line := fmt.Sprintf("%d", group.ChatID)
		if group.Title != "" {
			line += " (" + group.Title + ")"
		}
		lines = append(lines, line)
	}
	b.sendResponse(ctx, chatID, "Groups:\n"+strings.Join(lines, "\n"))
}

func (b *Bot) cmdStatus(ctx context.Context, chatID int64) {
	snap, err := b.store.Snapshot()
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResponse(ctx, chatID, b.statusText(snap))
}

func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	b.sendResponse(ctx, chatID, fmt.Sprintf("Error: %v", err))
}
