package data

import (
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-filter-bot/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	Filter     repo.FilterRepo
	Access     repo.AccessRepo
	Usage      repo.UsageRepo
	Completion repo.CompletionRepo
	Message    repo.MessageRepo
}

// NewRepositories creates all repositories. The JSON stores live under
// dataDir alongside the usage database. completionAPIKey may be empty, in
// which case the AI path is disabled and Completion is nil.
func NewRepositories(api *tgbotapi.BotAPI, dataDir, completionAPIKey, completionBaseURL string) (*Repositories, error) {
	filterStore, err := NewFilterStore(filepath.Join(dataDir, "filters.json"))
	if err != nil {
		return nil, err
	}

	accessStore, err := NewAccessStore(dataDir)
	if err != nil {
		return nil, err
	}

	usageStore, err := NewUsageStore(filepath.Join(dataDir, "usage.db"))
	if err != nil {
		return nil, err
	}

	var completion repo.CompletionRepo
	if completionAPIKey != "" {
		completion = NewCompletionClient(completionAPIKey, completionBaseURL)
	}

	return &Repositories{
		Filter:     filterStore,
		Access:     accessStore,
		Usage:      usageStore,
		Completion: completion,
		Message:    NewTelegramSender(api),
	}, nil
}

// Close releases store resources.
func (r *Repositories) Close() error {
	if r.Usage != nil {
		return r.Usage.Close()
	}
	return nil
}
