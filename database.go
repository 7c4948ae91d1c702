package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Defaults applied when the settings row is first created.
const (
	defaultMessage         = "Hello! Scheduled message \U0001F31F"
	defaultIntervalSeconds = 900
	minIntervalSeconds     = 10
)

func initDB(path string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(&Settings{}, &Button{}, &Group{}, &PostRecord{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	if err := ensureSettings(db); err != nil {
		return nil, err
	}

	return db, nil
}

// ensureSettings seeds the single settings row on first start.
func ensureSettings(db *gorm.DB) error {
	var settings Settings
	err := db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = Settings{
			Enabled:         false,
			Message:         defaultMessage,
			IntervalSeconds: defaultIntervalSeconds,
		}
		if err := db.Create(&settings).Error; err != nil {
			return fmt.Errorf("failed to create default settings: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	return nil
}
