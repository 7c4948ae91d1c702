package main

import (
	"time"

	"gorm.io/gorm"
)

// Settings is the single persistent configuration record driving the
// poster. Exactly one row exists; commands mutate it through the Store.
type Settings struct {
	gorm.Model
	Enabled         bool
	Message         string `gorm:"type:text"`
	IntervalSeconds int

	// Photo is a Telegram file_id or an HTTP(S) URL; empty means no photo.
	Photo string

	// Entities is a JSON-encoded array of Telegram message entities
	// captured with the template text (keeps custom emoji and formatting).
	Entities string `gorm:"type:text"`

	// UseForward selects forwardMessage over copyMessage when a template
	// is set. Forwarded posts show the "Forwarded from" header.
	UseForward bool

	// Template points at an existing message to copy or forward.
	// A zero TemplateChatID means no template is set.
	TemplateChatID      int64
	TemplateMessageID   int
	TemplateHasKeyboard bool
}

// Interval returns the configured posting interval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// HasTemplate reports whether an imported template is set.
func (s Settings) HasTemplate() bool {
	return s.TemplateChatID != 0 && s.TemplateMessageID != 0
}

// Button is one inline URL button. Buttons are ordered by Position and
// rendered one per keyboard row; duplicates are allowed.
type Button struct {
	gorm.Model
	Position int `gorm:"index"`
	Label    string
	URL      string
}

// Group is a broadcast target chat.
type Group struct {
	gorm.Model
	ChatID int64 `gorm:"uniqueIndex;not null"`
	Title  string
}

// PostRecord logs the outcome of a single send attempt.
type PostRecord struct {
	gorm.Model
	ChatID   int64 `gorm:"index"`
	Kind     string
	Success  bool
	Error    string
	PostedAt time.Time `gorm:"index"`
}
