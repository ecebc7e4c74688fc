package repo

import "context"

// UsageRepo persists daily model usage counters so a restart does not
// refill daily quotas. Days are "2006-01-02" strings in local time.
type UsageRepo interface {
	// LoadDay returns model name -> requests used for the given day.
	LoadDay(ctx context.Context, day string) (map[string]int, error)

	// Increment counts one request against a model for the given day.
	Increment(ctx context.Context, model, day string) error

	// Prune deletes rows for days before the given day.
	Prune(ctx context.Context, before string) error

	Close() error
}
