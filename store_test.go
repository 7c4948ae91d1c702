package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// AutoMigrate the models
	err = db.AutoMigrate(&Settings{}, &Button{}, &Group{}, &PostRecord{})
	if err != nil {
		t.Fatalf("Failed to migrate database schema: %v", err)
	}

	if err := ensureSettings(db); err != nil {
		t.Fatalf("Failed to seed settings: %v", err)
	}

	return db
}

func TestEnsureSettings_Defaults(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, RealClock{})

	settings, err := store.Settings()
	assert.NoError(t, err)
	assert.False(t, settings.Enabled)
	assert.Equal(t, defaultIntervalSeconds, settings.IntervalSeconds)
	assert.Equal(t, defaultMessage, settings.Message)
	assert.Empty(t, settings.Photo)
	assert.False(t, settings.HasTemplate())
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, RealClock{})

	_, err := store.SetMessage("new text")
	assert.NoError(t, err)
	_, err = store.SetInterval(30 * time.Minute)
	assert.NoError(t, err)
	_, err = store.SetEnabled(true)
	assert.NoError(t, err)

	// A fresh store over the same database sees the same state, as a
	// restarted process would.
	reopened := NewStore(db, RealClock{})
	settings, err := reopened.Settings()
	assert.NoError(t, err)
	assert.Equal(t, "new text", settings.Message)
	assert.Equal(t, 1800, settings.IntervalSeconds)
	assert.True(t, settings.Enabled)
}

func TestStore_Buttons(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, RealClock{})

	err := store.ReplaceButtons([]ButtonSpec{
		{Label: "Open", URL: "https://a.com"},
		{Label: "Docs", URL: "https://b.com"},
	})
	assert.NoError(t, err)

	err = store.AddButton(ButtonSpec{Label: "Contact", URL: "https://t.me/someone"})
	assert.NoError(t, err)

	buttons, err := store.Buttons()
	assert.NoError(t, err)
	assert.Len(t, buttons, 3)
	assert.Equal(t, "Open", buttons[0].Label)
	assert.Equal(t, "Docs", buttons[1].Label)
	assert.Equal(t, "Contact", buttons[2].Label)
	assert.Equal(t, 2, buttons[2].Position)

	// Replacing resets positions from zero
	err = store.ReplaceButtons([]ButtonSpec{{Label: "Only", URL: "https://c.com"}})
	assert.NoError(t, err)
	buttons, err = store.Buttons()
	assert.NoError(t, err)
	assert.Len(t, buttons, 1)
	assert.Equal(t, 0, buttons[0].Position)

	err = store.ClearButtons()
	assert.NoError(t, err)
	buttons, err = store.Buttons()
	assert.NoError(t, err)
	assert.Empty(t, buttons)
}

func TestStore_Groups(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, RealClock{})

	added, err := store.AddGroup(-100123456789, "Test Group")
	assert.NoError(t, err)
	assert.True(t, added)

	// Adding the same chat twice is a no-op
	added, err = store.AddGroup(-100123456789, "Test Group")
	assert.NoError(t, err)
	assert.False(t, added)

	added, err = store.AddGroup(-100987654321, "")
	assert.NoError(t, err)
	assert.True(t, added)

	groups, err := store.Groups()
	assert.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.Equal(t, int64(-100123456789), groups[0].ChatID)

	removed, err := store.RemoveGroup(-100123456789)
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.RemoveGroup(-100123456789)
	assert.NoError(t, err)
	assert.False(t, removed)

	groups, err = store.Groups()
	assert.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestStore_Template(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, RealClock{})

	settings, err := store.SetTemplate(-100555, 42, true, "caption", "", "photo-file-id")
	assert.NoError(t, err)
	assert.True(t, settings.HasTemplate())
	assert.Equal(t, int64(-100555), settings.TemplateChatID)
	assert.Equal(t, 42, settings.TemplateMessageID)
	assert.True(t, settings.TemplateHasKeyboard)
	assert.Equal(t, "caption", settings.Message)
	assert.Equal(t, "photo-file-id", settings.Photo)

	settings, err = store.ClearTemplate()
	assert.NoError(t, err)
	assert.False(t, settings.HasTemplate())
	// Clearing the template keeps the fallback text and photo
	assert.Equal(t, "caption", settings.Message)
	assert.Equal(t, "photo-file-id", settings.Photo)
}

func TestStore_RecordPost(t *testing.T) {
	db := setupTestDB(t)
	mockClock := &MockClock{}
	mockClock.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewStore(db, mockClock)

	assert.NoError(t, store.RecordPost(-100123, "message", nil))
	assert.NoError(t, store.RecordPost(-100456, "copy", errors.New("chat not found")))

	var records []PostRecord
	assert.NoError(t, db.Order("id asc").Find(&records).Error)
	assert.Len(t, records, 2)
	assert.True(t, records[0].Success)
	assert.True(t, records[0].PostedAt.Equal(mockClock.Now()))
	assert.False(t, records[1].Success)
	assert.Equal(t, "chat not found", records[1].Error)
}
