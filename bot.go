package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Bot struct {
	tgBot  TelegramClient
	store  *Store
	config Config
	owners map[int64]struct{}
	poster *Poster
	clock  Clock
}

func NewBot(store *Store, config Config, clock Clock, tgClient TelegramClient) (*Bot, error) {
	if len(config.OwnerIDs) == 0 {
		return nil, fmt.Errorf("at least one owner id is required")
	}

	b := &Bot{
		store:  store,
		config: config,
		owners: config.ownerSet(),
		clock:  clock,
		tgBot:  tgClient,
	}
	b.poster = newPoster(b.broadcast)

	return b, nil
}

// Start runs the poster job and then blocks on the Telegram long-poll
// loop until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	settings, err := b.store.Settings()
	if err != nil {
		ErrorLogger.Printf("Error loading settings on start: %v", err)
	} else {
		// Resume the persisted schedule across restarts. No immediate
		// send here; a restart should not surprise the groups.
		b.poster.Start(ctx)
		b.poster.Reschedule(settings.Enabled, settings.Interval(), false)
	}

	b.tgBot.Start(ctx)
	b.poster.Stop()
}

// isOwner reports whether the message comes from an owner in a private
// chat. Configuration is deliberately DM-only.
func (b *Bot) isOwner(message *models.Message) bool {
	if message == nil || message.From == nil {
		return false
	}
	if message.Chat.Type != "private" {
		return false
	}
	_, ok := b.owners[message.From.ID]
	return ok
}

func initTelegramBot(token string, handleUpdate func(ctx context.Context, tgBot *bot.Bot, update *models.Update)) (TelegramClient, error) {
	opts := []bot.Option{
		bot.WithDefaultHandler(handleUpdate),
	}

	tgBot, err := bot.New(token, opts...)
	if err != nil {
		return nil, err
	}

	return tgBot, nil
}

func (b *Bot) sendResponse(ctx context.Context, chatID int64, text string) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}

	_, err := b.tgBot.SendMessage(ctx, params)
	if err != nil {
		ErrorLogger.Printf("Error sending message to chat %d: %v", chatID, err)
		return err
	}
	return nil
}

// modeBadge renders the broadcast mode for /status and /mode replies.
func modeBadge(useForward bool) string {
	caser := cases.Title(language.English)
	if useForward {
		return caser.String("forward")
	}
	return caser.String("copy")
}

func formatButtons(buttons []Button) string {
	if len(buttons) == 0 {
		return "-"
	}
	lines := make([]string, 0, len(buttons))
	for _, btn := range buttons {
		lines = append(lines, fmt.Sprintf("%s → %s", btn.Label, btn.URL))
	}
	return strings.Join(lines, "\n")
}

// statusText renders the current configuration exactly as stored.
func (b *Bot) statusText(snap Snapshot) string {
	st := snap.Settings

	enabled := "Disabled ⏹"
	if st.Enabled {
		enabled = "Enabled ✅"
	}

	template := "none"
	if st.HasTemplate() {
		template = fmt.Sprintf("%d:%d", st.TemplateChatID, st.TemplateMessageID)
		if st.TemplateHasKeyboard {
			template += " (own keyboard)"
		}
	}

	photo := st.Photo
	if photo == "" {
		photo = "none"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", enabled)
	fmt.Fprintf(&sb, "Interval: %ds (~%dm)\n", st.IntervalSeconds, st.IntervalSeconds/60)
	fmt.Fprintf(&sb, "Mode: %s\n", modeBadge(st.UseForward))
	fmt.Fprintf(&sb, "Template: %s\n", template)
	fmt.Fprintf(&sb, "Photo: %s\n", photo)
	fmt.Fprintf(&sb, "Message:\n%s\n", st.Message)
	fmt.Fprintf(&sb, "Buttons:\n%s\n", formatButtons(snap.Buttons))
	fmt.Fprintf(&sb, "Groups: %d", len(snap.Groups))

	if st.Enabled {
		if next := b.poster.NextRun(); !next.IsZero() {
			fmt.Fprintf(&sb, "\nNext post: %s (in %s)",
				next.UTC().Format(time.RFC3339),
				next.Sub(b.clock.Now()).Round(time.Second))
		}
	}

	return sb.String()
}
