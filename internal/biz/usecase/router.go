package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
)

const dayFormat = "2006-01-02"

var technicalKeywords = []string{"code", "function", "algorithm", "technical", "programming", "debug"}

var complexQuestionKeywords = []string{"explain", "analyze", "compare", "detailed", "why", "how does", "difference"}

// RouterUsecase selects a completion backend for a query under tiered
// priority and capacity constraints, and records usage against the chosen
// model. Counters are guarded by the router's mutex because cron sweeps and
// dispatch run on different goroutines.
type RouterUsecase struct {
	mu     sync.Mutex
	models []*domain.ModelDescriptor
	usage  repo.UsageRepo // optional; nil keeps counters in memory only
	now    func() time.Time
}

// NewRouterUsecase creates a router over the configured model descriptors.
func NewRouterUsecase(models []*domain.ModelDescriptor, usage repo.UsageRepo) *RouterUsecase {
	return &RouterUsecase{
		models: models,
		usage:  usage,
		now:    time.Now,
	}
}

// LoadPersisted restores today's daily counters from the usage store, so a
// restart does not refill daily quotas.
func (uc *RouterUsecase) LoadPersisted(ctx context.Context) error {
	if uc.usage == nil {
		return nil
	}
	used, err := uc.usage.LoadDay(ctx, uc.now().Format(dayFormat))
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	for _, m := range uc.models {
		if n, ok := used[m.Name]; ok {
			m.DailyUsed = n
		}
	}
	return nil
}

// Classify estimates query complexity from cheap text features.
func (uc *RouterUsecase) Classify(query string) domain.Complexity {
	score := 0.0
	if len(query) > 500 {
		score += 0.3
	}
	if len(strings.Split(query, "\n")) > 5 {
		score += 0.2
	}
	lowered := strings.ToLower(query)
	for _, kw := range technicalKeywords {
		if strings.Contains(lowered, kw) {
			score += 0.3
			break
		}
	}
	for _, kw := range complexQuestionKeywords {
		if strings.Contains(lowered, kw) {
			score += 0.2
			break
		}
	}

	switch {
	case score < 0.3:
		return domain.ComplexitySimple
	case score < 0.7:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityComplex
	}
}

// Select picks the first eligible model: the premium tier only for
// privileged requesters with complex queries, then the general tier, the
// fallback tier, and the premium tier once more in case its window just
// reset. Selection itself mutates nothing; usage is recorded separately.
func (uc *RouterUsecase) Select(requester domain.RequesterTier, query string) (*domain.ModelDescriptor, error) {
	complexity := uc.Classify(query)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	now := uc.now()

	privileged := requester == domain.RequesterAdmin || requester == domain.RequesterOwner
	if privileged && complexity == domain.ComplexityComplex {
		if m := uc.eligibleByTier(domain.TierPremium, now); m != nil {
			return m, nil
		}
	}
	if m := uc.eligibleByTier(domain.TierGeneral, now); m != nil {
		return m, nil
	}
	if m := uc.eligibleByTier(domain.TierFallback, now); m != nil {
		return m, nil
	}
	if m := uc.eligibleByTier(domain.TierPremium, now); m != nil {
		return m, nil
	}
	return nil, domain.ErrAllModelsExhausted
}

func (uc *RouterUsecase) eligibleByTier(tier int, now time.Time) *domain.ModelDescriptor {
	for _, m := range uc.models {
		if m.Tier == tier && m.Eligible(now) {
			return m
		}
	}
	return nil
}

// RecordUsage counts one successful completion against the model. Callers
// invoke it exactly once per successful downstream call, never on failure.
func (uc *RouterUsecase) RecordUsage(ctx context.Context, m *domain.ModelDescriptor) error {
	uc.mu.Lock()
	now := uc.now()
	m.Record(now)
	uc.mu.Unlock()

	if uc.usage == nil {
		return nil
	}
	if err := uc.usage.Increment(ctx, m.Name, now.Format(dayFormat)); err != nil {
		return fmt.Errorf("persist usage: %w", err)
	}
	return nil
}

// SweepMinuteWindows zeroes per-minute counters whose window has elapsed.
// Driven by the cron runner once a minute.
func (uc *RouterUsecase) SweepMinuteWindows() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	now := uc.now()
	for _, m := range uc.models {
		m.SweepMinuteWindow(now)
	}
}

// ResetDaily zeroes all daily counters and prunes old persisted rows.
// Driven by the cron runner at the configured reset hour.
func (uc *RouterUsecase) ResetDaily(ctx context.Context) error {
	uc.mu.Lock()
	for _, m := range uc.models {
		m.ResetDaily()
	}
	day := uc.now().Format(dayFormat)
	uc.mu.Unlock()

	if uc.usage == nil {
		return nil
	}
	return uc.usage.Prune(ctx, day)
}

// Snapshot returns a copy of the descriptors for status reporting.
func (uc *RouterUsecase) Snapshot() []domain.ModelDescriptor {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]domain.ModelDescriptor, len(uc.models))
	for i, m := range uc.models {
		out[i] = *m
	}
	return out
}
