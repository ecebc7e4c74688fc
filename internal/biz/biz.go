package biz

import (
	"telegram-filter-bot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Trigger   *usecase.TriggerUsecase
	Router    *usecase.RouterUsecase
	Render    *usecase.RenderUsecase
	Guard     *usecase.GuardUsecase
	Chat      *usecase.ChatUsecase
	RateLimit *usecase.RateLimiter
}
