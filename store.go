package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Store guards all access to the persistent poster configuration.
// Command handlers write through it; the poster reads consistent
// snapshots on each tick. It replaces ad-hoc global state with an
// explicitly passed, lock-guarded object.
type Store struct {
	db    *gorm.DB
	mu    sync.Mutex
	clock Clock
}

// Snapshot is a consistent read of everything a broadcast needs.
type Snapshot struct {
	Settings Settings
	Buttons  []Button
	Groups   []Group
}

func NewStore(db *gorm.DB, clock Clock) *Store {
	return &Store{db: db, clock: clock}
}

func (s *Store) settingsLocked() (Settings, error) {
	var settings Settings
	if err := s.db.First(&settings).Error; err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Settings returns the current settings row.
func (s *Store) Settings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsLocked()
}

func (s *Store) updateSettings(mutate func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settingsLocked()
	if err != nil {
		return Settings{}, err
	}
	mutate(&settings)
	if err := s.db.Save(&settings).Error; err != nil {
		return Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

func (s *Store) SetEnabled(enabled bool) (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.Enabled = enabled
	})
}

func (s *Store) SetMessage(text string) (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.Message = text
		st.Entities = ""
	})
}

func (s *Store) SetInterval(d time.Duration) (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.IntervalSeconds = int(d / time.Second)
	})
}

// SetPhoto stores a photo reference; an empty string clears it.
func (s *Store) SetPhoto(ref string) (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.Photo = ref
	})
}

func (s *Store) SetMode(useForward bool) (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.UseForward = useForward
	})
}

// SetTemplate captures an imported message as the broadcast template.
func (s *Store) SetTemplate(chatID int64, messageID int, hasKeyboard bool, text, entities, photo string) (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.TemplateChatID = chatID
		st.TemplateMessageID = messageID
		st.TemplateHasKeyboard = hasKeyboard
		st.Message = text
		st.Entities = entities
		if photo != "" {
			st.Photo = photo
		}
	})
}

func (s *Store) ClearTemplate() (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.TemplateChatID = 0
		st.TemplateMessageID = 0
		st.TemplateHasKeyboard = false
	})
}

// SetTemplateKeyboard flips the flag tracking whether the original
// template post carries its own inline keyboard (after /attach, /detach).
func (s *Store) SetTemplateKeyboard(has bool) (Settings, error) {
	return s.updateSettings(func(st *Settings) {
		st.TemplateHasKeyboard = has
	})
}

// Buttons returns the button list in insertion order.
func (s *Store) Buttons() ([]Button, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttonsLocked()
}

func (s *Store) buttonsLocked() ([]Button, error) {
	var buttons []Button
	if err := s.db.Order("position asc").Find(&buttons).Error; err != nil {
		return nil, fmt.Errorf("failed to load buttons: %w", err)
	}
	return buttons, nil
}

// ReplaceButtons swaps the whole button list for the given specs.
func (s *Store) ReplaceButtons(specs []ButtonSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&Button{}).Error; err != nil {
			return fmt.Errorf("failed to clear buttons: %w", err)
		}
		for i, spec := range specs {
			button := Button{Position: i, Label: spec.Label, URL: spec.URL}
			if err := tx.Create(&button).Error; err != nil {
				return fmt.Errorf("failed to store button %q: %w", spec.Label, err)
			}
		}
		return nil
	})
}

// AddButton appends one button, preserving insertion order.
func (s *Store) AddButton(spec ButtonSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next int64
	if err := s.db.Model(&Button{}).Count(&next).Error; err != nil {
		return fmt.Errorf("failed to count buttons: %w", err)
	}
	button := Button{Position: int(next), Label: spec.Label, URL: spec.URL}
	if err := s.db.Create(&button).Error; err != nil {
		return fmt.Errorf("failed to store button %q: %w", spec.Label, err)
	}
	return nil
}

func (s *Store) ClearButtons() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Unscoped().Where("1 = 1").Delete(&Button{}).Error; err != nil {
		return fmt.Errorf("failed to clear buttons: %w", err)
	}
	return nil
}

// Groups returns the broadcast targets in insertion order.
func (s *Store) Groups() ([]Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupsLocked()
}

func (s *Store) groupsLocked() ([]Group, error) {
	var groups []Group
	if err := s.db.Order("id asc").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	return groups, nil
}

// AddGroup registers a target chat. Returns false when it was already present.
func (s *Store) AddGroup(chatID int64, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing Group
	err := s.db.Where("chat_id = ?", chatID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check group %d: %w", chatID, err)
	}
	group := Group{ChatID: chatID, Title: title}
	if err := s.db.Create(&group).Error; err != nil {
		return false, fmt.Errorf("failed to store group %d: %w", chatID, err)
	}
	return true, nil
}

// RemoveGroup drops a target chat. Returns false when it was not registered.
func (s *Store) RemoveGroup(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.Unscoped().Where("chat_id = ?", chatID).Delete(&Group{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove group %d: %w", chatID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// RecordPost logs a single send attempt outcome.
func (s *Store) RecordPost(chatID int64, kind string, sendErr error) error {
	record := PostRecord{
		ChatID:   chatID,
		Kind:     kind,
		Success:  sendErr == nil,
		PostedAt: s.clock.Now(),
	}
	if sendErr != nil {
		record.Error = sendErr.Error()
	}
	return s.db.Create(&record).Error
}

// Snapshot reads settings, buttons and groups under one lock.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settingsLocked()
	if err != nil {
		return Snapshot{}, err
	}
	buttons, err := s.buttonsLocked()
	if err != nil {
		return Snapshot{}, err
	}
	groups, err := s.groupsLocked()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Settings: settings, Buttons: buttons, Groups: groups}, nil
}
