package repo

import (
	"context"

	"telegram-filter-bot/internal/biz/domain"
)

// AccessRepo holds admin and blacklist membership plus volatile timeout
// records. Membership mutations persist; timeouts are in-memory only.
type AccessRepo interface {
	ListAdmins(ctx context.Context) ([]int64, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AddAdmin(ctx context.Context, userID int64) error
	RemoveAdmin(ctx context.Context, userID int64) error

	IsBlacklisted(ctx context.Context, userID int64) (bool, error)
	AddToBlacklist(ctx context.Context, userID int64) error
	RemoveFromBlacklist(ctx context.Context, userID int64) error

	// GetTimeout returns the timeout record for a user, or nil.
	GetTimeout(ctx context.Context, userID int64) (*domain.Timeout, error)
	SetTimeout(ctx context.Context, userID int64, t domain.Timeout) error
	ClearTimeout(ctx context.Context, userID int64) error
}
