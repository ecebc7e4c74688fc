package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-filter-bot/internal/biz"
	"telegram-filter-bot/internal/biz/usecase"
	"telegram-filter-bot/internal/conf"
	"telegram-filter-bot/internal/data"
	"telegram-filter-bot/internal/server"
	"telegram-filter-bot/internal/service"
)

// Per-user limit on mutating commands, matching the original bot.
const (
	rateLimitWindow = time.Second
	rateLimitMax    = 5
)

// App wires the stores, usecases, services, and the Telegram server
// together.
type App struct {
	cfg       *conf.Config
	repos     *data.Repositories
	scheduler *service.AutoDeleteScheduler
	resets    *service.ResetRunner
	server    *server.BotServer
}

// New assembles the application from configuration.
func New(cfg *conf.Config) (*App, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = cfg.Debug

	repos, err := data.NewRepositories(api, cfg.DataDir, cfg.AI.APIKey, cfg.AI.BaseURL)
	if err != nil {
		return nil, err
	}

	modelsCfg, err := conf.LoadModelsConfig(cfg.AI.ModelsPath)
	if err != nil {
		return nil, err
	}

	router := usecase.NewRouterUsecase(modelsCfg.ToDescriptors(), repos.Usage)
	if err := router.LoadPersisted(context.Background()); err != nil {
		return nil, err
	}

	guard := usecase.NewGuardUsecase(cfg.Telegram.OwnerID, repos.Access)

	var chat *usecase.ChatUsecase
	if repos.Completion != nil {
		chat = usecase.NewChatUsecase(router, repos.Completion, cfg.AI.SystemPrompt)
	}

	usecases := &biz.Usecases{
		Trigger:   usecase.NewTriggerUsecase(repos.Filter),
		Router:    router,
		Render:    usecase.NewRenderUsecase(),
		Guard:     guard,
		Chat:      chat,
		RateLimit: usecase.NewRateLimiter(rateLimitWindow, rateLimitMax),
	}

	scheduler := service.NewAutoDeleteScheduler(repos.Message)
	dispatcher := service.NewDispatcher(
		usecases,
		repos.Filter,
		repos.Message,
		scheduler,
		time.Duration(cfg.AutoDelete.CommandMinutes)*time.Minute,
		time.Duration(cfg.AutoDelete.ReplyMinutes)*time.Minute,
	)

	return &App{
		cfg:       cfg,
		repos:     repos,
		scheduler: scheduler,
		resets:    service.NewResetRunner(router, cfg.ResetHour),
		server:    server.NewBotServer(api, dispatcher),
	}, nil
}

// RunPolling runs the bot in long-polling mode until ctx is cancelled.
func (a *App) RunPolling(ctx context.Context) error {
	if err := a.resets.Start(); err != nil {
		return err
	}
	defer a.shutdown()
	return a.server.RunPolling(ctx)
}

// RunWebhook runs the bot in webhook mode until ctx is cancelled.
func (a *App) RunWebhook(ctx context.Context) error {
	if a.cfg.Webhook.URL == "" {
		return &conf.ConfigError{Field: "WEBHOOK_URL", Message: "required"}
	}
	if err := a.resets.Start(); err != nil {
		return err
	}
	defer a.shutdown()
	return a.server.RunWebhook(ctx, a.cfg.Webhook.URL, a.cfg.Webhook.Port)
}

func (a *App) shutdown() {
	a.resets.Stop()
	a.scheduler.Stop()
	if err := a.repos.Close(); err != nil {
		fmt.Printf("[App] Failed to close stores: %v\n", err)
	}
}
