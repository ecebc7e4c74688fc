package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-filter-bot/internal/service"
)

// BotServer feeds Telegram updates into the dispatcher, either by long
// polling or through a webhook endpoint.
type BotServer struct {
	api        *tgbotapi.BotAPI
	dispatcher *service.Dispatcher

	httpServer *http.Server
	startedAt  time.Time
}

// NewBotServer creates a new bot server.
func NewBotServer(api *tgbotapi.BotAPI, dispatcher *service.Dispatcher) *BotServer {
	return &BotServer{
		api:        api,
		dispatcher: dispatcher,
		startedAt:  time.Now(),
	}
}

// RunPolling consumes updates via long polling until ctx is cancelled.
func (s *BotServer) RunPolling(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 10

	updates := s.api.GetUpdatesChan(cfg)
	fmt.Printf("[Server] Polling as @%s\n", s.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			s.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			s.dispatcher.HandleUpdate(ctx, update)
		}
	}
}

// RunWebhook registers the webhook with Telegram and serves updates over
// HTTP until ctx is cancelled. A /health endpoint reports liveness.
func (s *BotServer) RunWebhook(ctx context.Context, webhookURL, port string) error {
	endpoint := "/bot" + s.api.Token

	wh, err := tgbotapi.NewWebhook(webhookURL + endpoint)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := s.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	fmt.Printf("[Server] Webhook set to %s%s\n", webhookURL, endpoint)

	updates := make(chan tgbotapi.Update, 100)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "healthy",
			"mode":   "webhook",
			"uptime": time.Since(s.startedAt).Seconds(),
		})
	})
	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		update, err := s.api.HandleUpdate(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		updates <- *update
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{Addr: ":" + port, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("[Server] Webhook server listening on :%s\n", port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.httpServer.Shutdown(shutdownCtx)
			if _, err := s.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
				fmt.Printf("[Server] Failed to delete webhook: %v\n", err)
			}
			return nil
		case err := <-errCh:
			return fmt.Errorf("webhook server: %w", err)
		case update := <-updates:
			s.dispatcher.HandleUpdate(ctx, update)
		}
	}
}
