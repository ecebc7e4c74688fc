package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"telegram-filter-bot/internal/biz/repo"
)

// UsageStore persists daily model usage counters in SQLite so daily quotas
// survive restarts.
type UsageStore struct {
	db *sql.DB
}

// NewUsageStore opens (or creates) the usage database at dbPath.
func NewUsageStore(dbPath string) (*UsageStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS model_usage (
			model TEXT NOT NULL,
			day   TEXT NOT NULL,
			used  INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (model, day)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &UsageStore{db: db}, nil
}

// LoadDay returns model -> requests used for the given day.
func (s *UsageStore) LoadDay(ctx context.Context, day string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model, used FROM model_usage WHERE day = ?
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	used := make(map[string]int)
	for rows.Next() {
		var model string
		var n int
		if err := rows.Scan(&model, &n); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		used[model] = n
	}
	return used, rows.Err()
}

// Increment counts one request against a model for the given day.
func (s *UsageStore) Increment(ctx context.Context, model, day string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO model_usage (model, day, used) VALUES (?, ?, 1)
		ON CONFLICT (model, day) DO UPDATE SET used = used + 1
	`, model, day)
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// Prune deletes rows for days before the given day.
func (s *UsageStore) Prune(ctx context.Context, before string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM model_usage WHERE day < ?
	`, before)
	if err != nil {
		return fmt.Errorf("failed to prune usage: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *UsageStore) Close() error {
	return s.db.Close()
}

var _ repo.UsageRepo = (*UsageStore)(nil)
