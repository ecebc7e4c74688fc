package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
)

// AccessStore keeps admin and blacklist membership in JSON files (a flat
// array of user IDs each, matching the original data files) and timeout
// records in memory only.
type AccessStore struct {
	mu            sync.RWMutex
	adminsPath    string
	blacklistPath string
	admins        map[int64]struct{}
	adminOrder    []int64
	blacklist     map[int64]struct{}
	timeouts      map[int64]domain.Timeout
}

// NewAccessStore loads (or initializes) the membership files under dir.
func NewAccessStore(dir string) (*AccessStore, error) {
	s := &AccessStore{
		adminsPath:    filepath.Join(dir, "admins.json"),
		blacklistPath: filepath.Join(dir, "blacklist.json"),
		admins:        make(map[int64]struct{}),
		blacklist:     make(map[int64]struct{}),
		timeouts:      make(map[int64]domain.Timeout),
	}

	adminIDs, err := loadIDList(s.adminsPath)
	if err != nil {
		return nil, fmt.Errorf("load admins: %w", err)
	}
	for _, id := range adminIDs {
		if _, seen := s.admins[id]; !seen {
			s.admins[id] = struct{}{}
			s.adminOrder = append(s.adminOrder, id)
		}
	}

	blacklistIDs, err := loadIDList(s.blacklistPath)
	if err != nil {
		return nil, fmt.Errorf("load blacklist: %w", err)
	}
	for _, id := range blacklistIDs {
		s.blacklist[id] = struct{}{}
	}

	return s, nil
}

func loadIDList(path string) ([]int64, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func saveIDList(path string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	raw, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// ListAdmins returns admin IDs in insertion order.
func (s *AccessStore) ListAdmins(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.adminOrder...), nil
}

// IsAdmin reports admin membership.
func (s *AccessStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.admins[userID]
	return ok, nil
}

// AddAdmin grants membership and persists. Adding twice is a no-op.
func (s *AccessStore) AddAdmin(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[userID]; ok {
		return nil
	}
	s.admins[userID] = struct{}{}
	s.adminOrder = append(s.adminOrder, userID)
	return saveIDList(s.adminsPath, s.adminOrder)
}

// RemoveAdmin revokes membership and persists.
func (s *AccessStore) RemoveAdmin(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[userID]; !ok {
		return nil
	}
	delete(s.admins, userID)
	for i, id := range s.adminOrder {
		if id == userID {
			s.adminOrder = append(s.adminOrder[:i], s.adminOrder[i+1:]...)
			break
		}
	}
	return saveIDList(s.adminsPath, s.adminOrder)
}

// IsBlacklisted reports blacklist membership.
func (s *AccessStore) IsBlacklisted(ctx context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blacklist[userID]
	return ok, nil
}

// AddToBlacklist bans a user and persists.
func (s *AccessStore) AddToBlacklist(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blacklist[userID]; ok {
		return nil
	}
	s.blacklist[userID] = struct{}{}
	return saveIDList(s.blacklistPath, s.blacklistIDsLocked())
}

// RemoveFromBlacklist unbans a user and persists.
func (s *AccessStore) RemoveFromBlacklist(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blacklist[userID]; !ok {
		return nil
	}
	delete(s.blacklist, userID)
	return saveIDList(s.blacklistPath, s.blacklistIDsLocked())
}

func (s *AccessStore) blacklistIDsLocked() []int64 {
	ids := make([]int64, 0, len(s.blacklist))
	for id := range s.blacklist {
		ids = append(ids, id)
	}
	return ids
}

// GetTimeout returns the timeout record for a user, or nil.
func (s *AccessStore) GetTimeout(ctx context.Context, userID int64) (*domain.Timeout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.timeouts[userID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// SetTimeout records a timeout. Not persisted.
func (s *AccessStore) SetTimeout(ctx context.Context, userID int64, t domain.Timeout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeouts[userID] = t
	return nil
}

// ClearTimeout drops a timeout record.
func (s *AccessStore) ClearTimeout(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timeouts, userID)
	return nil
}

var _ repo.AccessRepo = (*AccessStore)(nil)
