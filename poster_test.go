package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestBroadcast_DisabledSendsNothing(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.AddGroup(-100111, "")
	assert.NoError(t, err)

	var sends int
	mockTgClient.SendMessageFunc = func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
		sends++
		return &models.Message{}, nil
	}

	b.broadcast(ctx)
	assert.Zero(t, sends)
}

func TestBroadcast_TextToAllGroups(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.SetMessage("scheduled post")
	assert.NoError(t, err)
	_, err = b.store.SetEnabled(true)
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100111, "")
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100222, "")
	assert.NoError(t, err)

	var mu sync.Mutex
	var chatIDs []any
	mockTgClient.SendMessageFunc = func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		chatIDs = append(chatIDs, params.ChatID)
		assert.Equal(t, "scheduled post", params.Text)
		assert.Nil(t, params.ReplyMarkup)
		return &models.Message{}, nil
	}

	b.broadcast(ctx)

	assert.Equal(t, []any{int64(-100111), int64(-100222)}, chatIDs)

	// Every send outcome is recorded
	var records []PostRecord
	assert.NoError(t, b.store.db.Find(&records).Error)
	assert.Len(t, records, 2)
	assert.True(t, records[0].Success)
	assert.Equal(t, "message", records[0].Kind)
}

func TestBroadcast_AttachesKeyboard(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.SetEnabled(true)
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100111, "")
	assert.NoError(t, err)
	assert.NoError(t, b.store.AddButton(ButtonSpec{Label: "Open", URL: "https://a.com"}))
	assert.NoError(t, b.store.AddButton(ButtonSpec{Label: "Docs", URL: "https://b.com"}))

	mockTgClient.SendMessageFunc = func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
		markup, ok := params.ReplyMarkup.(*models.InlineKeyboardMarkup)
		assert.True(t, ok)
		assert.Len(t, markup.InlineKeyboard, 2)
		assert.Equal(t, "Open", markup.InlineKeyboard[0][0].Text)
		assert.Equal(t, "https://b.com", markup.InlineKeyboard[1][0].URL)
		return &models.Message{}, nil
	}

	b.broadcast(ctx)
}

func TestBroadcast_Photo(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.SetMessage("caption text")
	assert.NoError(t, err)
	_, err = b.store.SetPhoto("photo-file-id")
	assert.NoError(t, err)
	_, err = b.store.SetEnabled(true)
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100111, "")
	assert.NoError(t, err)

	var photos int
	mockTgClient.SendPhotoFunc = func(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
		photos++
		file, ok := params.Photo.(*models.InputFileString)
		assert.True(t, ok)
		assert.Equal(t, "photo-file-id", file.Data)
		assert.Equal(t, "caption text", params.Caption)
		return &models.Message{}, nil
	}

	b.broadcast(ctx)
	assert.Equal(t, 1, photos)
}

func TestBroadcast_TemplateCopy(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.SetTemplate(-100777, 42, false, "text", "", "")
	assert.NoError(t, err)
	_, err = b.store.SetEnabled(true)
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100111, "")
	assert.NoError(t, err)
	assert.NoError(t, b.store.AddButton(ButtonSpec{Label: "Open", URL: "https://a.com"}))

	var copies int
	mockTgClient.CopyMessageFunc = func(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
		copies++
		assert.Equal(t, int64(-100111), params.ChatID)
		assert.Equal(t, int64(-100777), params.FromChatID)
		assert.Equal(t, 42, params.MessageID)
		assert.NotNil(t, params.ReplyMarkup)
		return &models.MessageID{}, nil
	}

	b.broadcast(ctx)
	assert.Equal(t, 1, copies)
}

func TestBroadcast_TemplateWithOwnKeyboardSkipsButtons(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.SetTemplate(-100777, 42, true, "text", "", "")
	assert.NoError(t, err)
	_, err = b.store.SetEnabled(true)
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100111, "")
	assert.NoError(t, err)
	assert.NoError(t, b.store.AddButton(ButtonSpec{Label: "Open", URL: "https://a.com"}))

	mockTgClient.CopyMessageFunc = func(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
		assert.Nil(t, params.ReplyMarkup)
		return &models.MessageID{}, nil
	}

	b.broadcast(ctx)
}

func TestBroadcast_TemplateForward(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.SetTemplate(-100777, 42, false, "text", "", "")
	assert.NoError(t, err)
	_, err = b.store.SetMode(true)
	assert.NoError(t, err)
	_, err = b.store.SetEnabled(true)
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100111, "")
	assert.NoError(t, err)
	assert.NoError(t, b.store.AddButton(ButtonSpec{Label: "Open", URL: "https://a.com"}))

	mockTgClient.ForwardMessageFunc = func(ctx context.Context, params *bot.ForwardMessageParams) (*models.Message, error) {
		assert.Equal(t, int64(-100777), params.FromChatID)
		assert.Equal(t, 42, params.MessageID)
		return &models.Message{ID: 900}, nil
	}

	// The keyboard rides on an invisible reply under the forward
	var replies int
	mockTgClient.SendMessageFunc = func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
		replies++
		assert.Equal(t, invisibleText, params.Text)
		assert.NotNil(t, params.ReplyMarkup)
		if assert.NotNil(t, params.ReplyParameters) {
			assert.Equal(t, 900, params.ReplyParameters.MessageID)
			assert.True(t, params.ReplyParameters.AllowSendingWithoutReply)
		}
		return &models.Message{}, nil
	}

	b.broadcast(ctx)
	assert.Equal(t, 1, replies)
}

func TestBroadcast_FailureDoesNotAbortRun(t *testing.T) {
	b, mockTgClient, _ := newTestBot(t)
	ctx := context.Background()

	_, err := b.store.SetEnabled(true)
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100111, "")
	assert.NoError(t, err)
	_, err = b.store.AddGroup(-100222, "")
	assert.NoError(t, err)

	var mu sync.Mutex
	var attempts []any
	mockTgClient.SendMessageFunc = func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts = append(attempts, params.ChatID)
		if params.ChatID == any(int64(-100111)) {
			return nil, assert.AnError
		}
		return &models.Message{}, nil
	}

	b.broadcast(ctx)
	assert.Len(t, attempts, 2)

	var failed []PostRecord
	assert.NoError(t, b.store.db.Where("success = ?", false).Find(&failed).Error)
	assert.Len(t, failed, 1)
	assert.Equal(t, int64(-100111), failed[0].ChatID)
}

func TestPosterReschedule(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	p := newPoster(func(ctx context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	assert.False(t, p.Scheduled())
	assert.True(t, p.NextRun().IsZero())

	p.Reschedule(true, time.Minute, false)
	assert.True(t, p.Scheduled())

	// Rescheduling replaces the entry rather than stacking a second one
	p.Reschedule(true, 2*time.Minute, false)
	assert.True(t, p.Scheduled())
	assert.Len(t, p.cron.Entries(), 1)

	p.Reschedule(false, 0, false)
	assert.False(t, p.Scheduled())
	assert.True(t, p.NextRun().IsZero())

	mu.Lock()
	assert.Zero(t, runs)
	mu.Unlock()
}

func TestPosterNextRunWhenStarted(t *testing.T) {
	p := newPoster(func(ctx context.Context) {})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	defer p.Stop()

	p.Reschedule(true, time.Hour, false)
	next := p.NextRun()
	assert.False(t, next.IsZero())
	assert.True(t, next.After(time.Now()))
}
