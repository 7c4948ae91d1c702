// telegram_client_mock.go
package main

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/mock"
)

// MockTelegramClient is a mock implementation of TelegramClient for testing.
type MockTelegramClient struct {
	mock.Mock
	SendMessageFunc            func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhotoFunc              func(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	CopyMessageFunc            func(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error)
	ForwardMessageFunc         func(ctx context.Context, params *bot.ForwardMessageParams) (*models.Message, error)
	EditMessageReplyMarkupFunc func(ctx context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error)
	GetChatFunc                func(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
	StartFunc                  func(ctx context.Context)
}

// SendMessage mocks sending a message.
func (m *MockTelegramClient) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

// SendPhoto mocks sending a photo.
func (m *MockTelegramClient) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	if m.SendPhotoFunc != nil {
		return m.SendPhotoFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

// CopyMessage mocks copying a message.
func (m *MockTelegramClient) CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
	if m.CopyMessageFunc != nil {
		return m.CopyMessageFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if id, ok := args.Get(0).(*models.MessageID); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// ForwardMessage mocks forwarding a message.
func (m *MockTelegramClient) ForwardMessage(ctx context.Context, params *bot.ForwardMessageParams) (*models.Message, error) {
	if m.ForwardMessageFunc != nil {
		return m.ForwardMessageFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

// EditMessageReplyMarkup mocks editing a message's inline keyboard.
func (m *MockTelegramClient) EditMessageReplyMarkup(ctx context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error) {
	if m.EditMessageReplyMarkupFunc != nil {
		return m.EditMessageReplyMarkupFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetChat mocks resolving a chat.
func (m *MockTelegramClient) GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error) {
	if m.GetChatFunc != nil {
		return m.GetChatFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if chat, ok := args.Get(0).(*models.ChatFullInfo); ok {
		return chat, args.Error(1)
	}
	return nil, args.Error(1)
}

// Start mocks starting the Telegram client.
func (m *MockTelegramClient) Start(ctx context.Context) {
	if m.StartFunc != nil {
		m.StartFunc(ctx)
		return
	}
	m.Called(ctx)
}
