package repo

import (
	"context"

	"telegram-filter-bot/internal/biz/domain"
)

// FilterRepo is the filter table interface. Names are lowercase and unique;
// Names returns them in insertion order, which the trigger resolver relies
// on for deterministic tie-breaking.
type FilterRepo interface {
	// Get returns the filter for name, or nil when absent.
	Get(ctx context.Context, name string) (*domain.Filter, error)

	// Names returns all filter names in insertion order.
	Names(ctx context.Context) ([]string, error)

	// Put stores or replaces a filter. New names append to the order.
	Put(ctx context.Context, name string, f *domain.Filter) error

	// Delete removes a filter. Removing an absent name is a no-op.
	Delete(ctx context.Context, name string) error

	// Rename moves a filter to a new name, keeping its position in the
	// insertion order.
	Rename(ctx context.Context, oldName, newName string) error

	// Count returns the number of stored filters.
	Count(ctx context.Context) (int, error)
}
