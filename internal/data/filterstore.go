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

// filterRecord is the on-disk shape: an array of named records keeps the
// insertion order deterministic across restarts, which a JSON object would
// not.
type filterRecord struct {
	Name string `json:"name"`
	domain.Filter
}

// FilterStore is a JSON-file-backed filter repository. Every mutation is
// written through to disk.
type FilterStore struct {
	mu      sync.RWMutex
	path    string
	filters map[string]*domain.Filter
	order   []string
}

// NewFilterStore loads (or initializes) the filter table at path.
func NewFilterStore(path string) (*FilterStore, error) {
	s := &FilterStore{
		path:    path,
		filters: make(map[string]*domain.Filter),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load filters: %w", err)
	}
	return s, nil
}

func (s *FilterStore) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var records []filterRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return err
	}
	for _, rec := range records {
		f := rec.Filter
		s.filters[rec.Name] = &f
		s.order = append(s.order, rec.Name)
	}
	return nil
}

// save writes the table to disk. Callers hold at least a read lock.
func (s *FilterStore) save() error {
	records := make([]filterRecord, 0, len(s.order))
	for _, name := range s.order {
		records = append(records, filterRecord{Name: name, Filter: *s.filters[name]})
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0644)
}

// Get returns the filter for name, or nil when absent.
func (s *FilterStore) Get(ctx context.Context, name string) (*domain.Filter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters[name], nil
}

// Names returns all filter names in insertion order.
func (s *FilterStore) Names(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...), nil
}

// Put stores or replaces a filter and persists the table.
func (s *FilterStore) Put(ctx context.Context, name string, f *domain.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.filters[name]; !exists {
		s.order = append(s.order, name)
	}
	s.filters[name] = f
	return s.save()
}

// Delete removes a filter and persists the table.
func (s *FilterStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.filters[name]; !exists {
		return nil
	}
	delete(s.filters, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.save()
}

// Rename moves a filter to a new name, keeping its slot in the insertion
// order so tier-3 tie-breaking is unaffected.
func (s *FilterStore) Rename(ctx context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, exists := s.filters[oldName]
	if !exists {
		return fmt.Errorf("filter %q not found", oldName)
	}
	if _, taken := s.filters[newName]; taken {
		return fmt.Errorf("filter %q already exists", newName)
	}

	delete(s.filters, oldName)
	s.filters[newName] = f
	for i, n := range s.order {
		if n == oldName {
			s.order[i] = newName
			break
		}
	}
	return s.save()
}

// Count returns the number of stored filters.
func (s *FilterStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filters), nil
}

var _ repo.FilterRepo = (*FilterStore)(nil)
