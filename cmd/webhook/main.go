package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"telegram-filter-bot/internal/app"
	"telegram-filter-bot/internal/conf"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Webhook.URL == "" {
		log.Fatal("WEBHOOK_URL not set! Example: https://bot.example.com")
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down webhook...")
		cancel()
	}()

	fmt.Println("Starting filter bot (webhook mode)...")
	if err := a.RunWebhook(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
	fmt.Println("Bot stopped")
}
