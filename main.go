package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Initialize custom loggers
	initLoggers()

	// Log the start of the application
	InfoLogger.Println("Starting Telegram Poster Bot")

	// Load configuration from the environment
	cfg, err := loadConfig()
	if err != nil {
		ErrorLogger.Fatalf("Error loading configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg.DatabasePath)
	if err != nil {
		ErrorLogger.Fatalf("Error initializing database: %v", err)
	}

	store := NewStore(db, RealClock{})
	registerMetrics()

	// Set up context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create Bot instance without TelegramClient initially
	b, err := NewBot(store, cfg, RealClock{}, nil)
	if err != nil {
		ErrorLogger.Fatalf("Error creating bot: %v", err)
	}

	// Initialize TelegramClient with the bot's handleUpdate method
	tgClient, err := initTelegramBot(cfg.BotToken, b.handleUpdate)
	if err != nil {
		ErrorLogger.Fatalf("Error initializing Telegram client: %v", err)
	}

	// Assign the TelegramClient to the bot
	b.tgBot = tgClient

	startHealthServer(ctx, cfg.Port)
	if cfg.PublicURL != "" {
		startKeepalive(ctx, cfg.PublicURL)
	}

	// Start the bot; blocks until the context is cancelled
	InfoLogger.Printf("Starting bot with %d owner(s)...", len(cfg.OwnerIDs))
	b.Start(ctx)

	InfoLogger.Println("Bot has stopped. Exiting application.")
}
