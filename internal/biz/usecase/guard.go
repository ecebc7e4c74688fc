package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
)

// ErrCannotModifyOwner is returned when an admin action targets the owner.
var ErrCannotModifyOwner = errors.New("the owner cannot be modified")

// GuardUsecase answers role and permission questions over the access store.
// The owner is always implicitly an admin and can never be removed, banned,
// or timed out.
type GuardUsecase struct {
	ownerID int64
	access  repo.AccessRepo
	now     func() time.Time
}

// NewGuardUsecase creates a new access guard.
func NewGuardUsecase(ownerID int64, access repo.AccessRepo) *GuardUsecase {
	return &GuardUsecase{ownerID: ownerID, access: access, now: time.Now}
}

// OwnerID returns the configured owner.
func (uc *GuardUsecase) OwnerID() int64 {
	return uc.ownerID
}

// ListAdmins returns admin IDs in insertion order.
func (uc *GuardUsecase) ListAdmins(ctx context.Context) ([]int64, error) {
	return uc.access.ListAdmins(ctx)
}

// IsOwner reports whether the user is the owner.
func (uc *GuardUsecase) IsOwner(userID int64) bool {
	return userID == uc.ownerID
}

// IsAdmin reports whether the user is the owner or an admin.
func (uc *GuardUsecase) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if uc.IsOwner(userID) {
		return true, nil
	}
	return uc.access.IsAdmin(ctx, userID)
}

// RequesterTier maps a user to their privilege tier.
func (uc *GuardUsecase) RequesterTier(ctx context.Context, userID int64) (domain.RequesterTier, error) {
	if uc.IsOwner(userID) {
		return domain.RequesterOwner, nil
	}
	admin, err := uc.access.IsAdmin(ctx, userID)
	if err != nil {
		return domain.RequesterUser, err
	}
	if admin {
		return domain.RequesterAdmin, nil
	}
	return domain.RequesterUser, nil
}

// IsBlacklisted reports whether the user is banned. The owner never is.
func (uc *GuardUsecase) IsBlacklisted(ctx context.Context, userID int64) (bool, error) {
	if uc.IsOwner(userID) {
		return false, nil
	}
	return uc.access.IsBlacklisted(ctx, userID)
}

// IsTimedOut reports whether the user is currently muted. Expired records
// are dropped lazily on read.
func (uc *GuardUsecase) IsTimedOut(ctx context.Context, userID int64) (bool, error) {
	t, err := uc.access.GetTimeout(ctx, userID)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, nil
	}
	if t.Expired(uc.now()) {
		_ = uc.access.ClearTimeout(ctx, userID)
		return false, nil
	}
	return true, nil
}

// RemainingTimeoutSeconds returns how many seconds of timeout are left,
// zero when the user is not timed out.
func (uc *GuardUsecase) RemainingTimeoutSeconds(ctx context.Context, userID int64) (int64, error) {
	t, err := uc.access.GetTimeout(ctx, userID)
	if err != nil {
		return 0, err
	}
	if t == nil {
		return 0, nil
	}
	return int64(t.Remaining(uc.now()) / time.Second), nil
}

// AddAdmin grants admin membership.
func (uc *GuardUsecase) AddAdmin(ctx context.Context, userID int64) error {
	if uc.IsOwner(userID) {
		return ErrCannotModifyOwner
	}
	return uc.access.AddAdmin(ctx, userID)
}

// RemoveAdmin revokes admin membership. The owner is not removable.
func (uc *GuardUsecase) RemoveAdmin(ctx context.Context, userID int64) error {
	if uc.IsOwner(userID) {
		return ErrCannotModifyOwner
	}
	return uc.access.RemoveAdmin(ctx, userID)
}

// Ban adds a user to the blacklist.
func (uc *GuardUsecase) Ban(ctx context.Context, userID int64) error {
	if uc.IsOwner(userID) {
		return ErrCannotModifyOwner
	}
	return uc.access.AddToBlacklist(ctx, userID)
}

// Unban removes a user from the blacklist.
func (uc *GuardUsecase) Unban(ctx context.Context, userID int64) error {
	return uc.access.RemoveFromBlacklist(ctx, userID)
}

// TimeoutUser mutes a user for the given duration.
func (uc *GuardUsecase) TimeoutUser(ctx context.Context, userID int64, d time.Duration, reason string) error {
	if uc.IsOwner(userID) {
		return ErrCannotModifyOwner
	}
	return uc.access.SetTimeout(ctx, userID, domain.Timeout{
		Until:  uc.now().Add(d),
		Reason: reason,
	})
}
