package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"telegram-filter-bot/internal/biz/usecase"
)

// ResetRunner drives the model counter resets: a per-minute sweep of the
// rate windows and a daily quota reset at the configured hour.
type ResetRunner struct {
	router    *usecase.RouterUsecase
	resetHour int
	cron      *cron.Cron
}

// NewResetRunner creates a new reset runner.
func NewResetRunner(router *usecase.RouterUsecase, resetHour int) *ResetRunner {
	return &ResetRunner{
		router:    router,
		resetHour: resetHour,
		cron:      cron.New(),
	}
}

// Start registers the jobs and starts the cron scheduler.
func (r *ResetRunner) Start() error {
	if _, err := r.cron.AddFunc("* * * * *", r.router.SweepMinuteWindows); err != nil {
		return fmt.Errorf("add minute sweep: %w", err)
	}

	daily := fmt.Sprintf("0 %d * * *", r.resetHour)
	if _, err := r.cron.AddFunc(daily, func() {
		if err := r.router.ResetDaily(context.Background()); err != nil {
			fmt.Printf("[CronRunner] Daily reset error: %v\n", err)
			return
		}
		fmt.Println("[CronRunner] Daily usage counters reset")
	}); err != nil {
		return fmt.Errorf("add daily reset: %w", err)
	}

	r.cron.Start()
	fmt.Printf("[CronRunner] Started (daily reset at %02d:00)\n", r.resetHour)
	return nil
}

// Stop stops the cron scheduler and waits for running jobs.
func (r *ResetRunner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	fmt.Println("[CronRunner] Stopped")
}
