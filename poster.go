package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

// invisibleText is a word joiner: a reply carrying only the inline
// keyboard renders as an empty-looking message glued under the forward.
const invisibleText = "⁠"

// Poster owns the repeating broadcast job. Enable/disable and interval
// changes reschedule the single cron entry; the broadcast itself reads
// a fresh settings snapshot on every run.
type Poster struct {
	mu        sync.Mutex
	cron      *cron.Cron
	entry     cron.EntryID
	ctx       context.Context
	broadcast func(ctx context.Context)
}

func newPoster(broadcast func(ctx context.Context)) *Poster {
	return &Poster{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		broadcast: broadcast,
	}
}

// Start begins running scheduled entries. Must be called before any
// broadcast can fire.
func (p *Poster) Start(ctx context.Context) {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
	p.cron.Start()
}

// Stop halts the schedule and waits for a running broadcast to finish.
func (p *Poster) Stop() {
	stopCtx := p.cron.Stop()
	<-stopCtx.Done()
}

// Reschedule replaces the repeating entry to match the given state.
// With immediate set, an enabled schedule also broadcasts right away,
// mirroring the behavior of enabling from a command.
func (p *Poster) Reschedule(enabled bool, interval time.Duration, immediate bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.entry != 0 {
		p.cron.Remove(p.entry)
		p.entry = 0
	}
	if !enabled {
		return
	}

	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	entry, err := p.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		p.broadcast(ctx)
	})
	if err != nil {
		ErrorLogger.Printf("Error scheduling broadcast every %s: %v", interval, err)
		return
	}
	p.entry = entry

	if immediate {
		go p.broadcast(ctx)
	}
}

// Scheduled reports whether a repeating entry is active.
func (p *Poster) Scheduled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entry != 0
}

// NextRun returns the time of the next scheduled broadcast, or the
// zero time when nothing is scheduled.
func (p *Poster) NextRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entry == 0 {
		return time.Time{}
	}
	return p.cron.Entry(p.entry).Next
}

// sendPacer spaces out sends across groups so a large group list does
// not trip Telegram's flood limits.
var sendPacer = rate.NewLimiter(rate.Every(500*time.Millisecond), 1)

// broadcast sends the current post to every registered group. Failures
// are logged per group and do not abort the rest of the run.
func (b *Bot) broadcast(ctx context.Context) {
	snap, err := b.store.Snapshot()
	if err != nil {
		ErrorLogger.Printf("Error loading snapshot for broadcast: %v", err)
		return
	}
	if !snap.Settings.Enabled {
		return
	}

	broadcastsTotal.Inc()

	for _, group := range snap.Groups {
		if err := sendPacer.Wait(ctx); err != nil {
			return
		}
		kind, err := b.sendPost(ctx, group.ChatID, snap)
		if err != nil {
			ErrorLogger.Printf("Error sending %s post to group %d: %v", kind, group.ChatID, err)
			postsFailed.WithLabelValues(kind).Inc()
		} else {
			postsSent.WithLabelValues(kind).Inc()
		}
		if recErr := b.store.RecordPost(group.ChatID, kind, err); recErr != nil {
			ErrorLogger.Printf("Error recording post outcome for group %d: %v", group.ChatID, recErr)
		}
	}
}

// sendPost delivers one post to one chat using the current snapshot,
// and reports the delivery kind used.
func (b *Bot) sendPost(ctx context.Context, chatID int64, snap Snapshot) (string, error) {
	st := snap.Settings
	keyboard := buildKeyboard(snap.Buttons)

	if st.HasTemplate() {
		if st.UseForward {
			return "forward", b.forwardWithKeyboard(ctx, chatID, st.TemplateChatID, st.TemplateMessageID, keyboard)
		}
		params := &bot.CopyMessageParams{
			ChatID:     chatID,
			FromChatID: st.TemplateChatID,
			MessageID:  st.TemplateMessageID,
		}
		// The original post may already carry its own keyboard.
		if keyboard != nil && !st.TemplateHasKeyboard {
			params.ReplyMarkup = keyboard
		}
		_, err := b.tgBot.CopyMessage(ctx, params)
		return "copy", err
	}

	entities := decodeEntities(st.Entities)

	if st.Photo != "" {
		params := &bot.SendPhotoParams{
			ChatID:          chatID,
			Photo:           &models.InputFileString{Data: st.Photo},
			Caption:         st.Message,
			CaptionEntities: entities,
		}
		if keyboard != nil {
			params.ReplyMarkup = keyboard
		}
		_, err := b.tgBot.SendPhoto(ctx, params)
		return "photo", err
	}

	params := &bot.SendMessageParams{
		ChatID:   chatID,
		Text:     st.Message,
		Entities: entities,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := b.tgBot.SendMessage(ctx, params)
	return "message", err
}

// forwardWithKeyboard forwards a message and, when buttons are set,
// glues the keyboard underneath as an invisible reply. Forwarded
// messages cannot carry a keyboard of their own.
func (b *Bot) forwardWithKeyboard(ctx context.Context, chatID, fromChatID int64, messageID int, keyboard *models.InlineKeyboardMarkup) error {
	fwd, err := b.tgBot.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     chatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	})
	if err != nil {
		return err
	}
	if keyboard == nil {
		return nil
	}

	_, err = b.tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        invisibleText,
		ReplyMarkup: keyboard,
		ReplyParameters: &models.ReplyParameters{
			MessageID:                fwd.ID,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		ErrorLogger.Printf("Error attaching buttons under forward in chat %d: %v", chatID, err)
	}
	return nil
}
