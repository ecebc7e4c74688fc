package usecase

import (
	"context"
	"strings"

	"telegram-filter-bot/internal/biz/domain"
	"telegram-filter-bot/internal/biz/repo"
)

// TriggerPrefix marks a message as an explicit filter invocation.
const TriggerPrefix = "!"

// TriggerUsecase resolves incoming message text to a stored filter. Callers
// exclude platform commands and filter-management commands before calling.
type TriggerUsecase struct {
	filters repo.FilterRepo
}

// NewTriggerUsecase creates a new trigger usecase.
func NewTriggerUsecase(filters repo.FilterRepo) *TriggerUsecase {
	return &TriggerUsecase{filters: filters}
}

// Resolve finds the filter a message triggers, or nil when none matches.
// Three precedence tiers, first hit wins:
//
//  1. prefix match: "!name" stripped, lowercased, looked up verbatim
//  2. bare match: the whole trimmed message, lowercased, looked up verbatim
//  3. keyword scan: among all names occurring as substrings of the lowered
//     message, the one starting earliest wins; ties go to the name inserted
//     first
//
// Tier 3 deliberately lets a message that merely mentions a filter name
// trigger it. That trades precision for convenience and is kept as-is.
func (uc *TriggerUsecase) Resolve(ctx context.Context, messageText string) (*domain.Filter, string, error) {
	trimmed := strings.TrimSpace(messageText)
	if trimmed == "" {
		return nil, "", nil
	}

	if strings.HasPrefix(trimmed, TriggerPrefix) {
		name := strings.ToLower(strings.TrimSpace(trimmed[len(TriggerPrefix):]))
		f, err := uc.filters.Get(ctx, name)
		if err != nil {
			return nil, "", err
		}
		if f != nil {
			return f, name, nil
		}
	}

	lowered := strings.ToLower(trimmed)
	f, err := uc.filters.Get(ctx, lowered)
	if err != nil {
		return nil, "", err
	}
	if f != nil {
		return f, lowered, nil
	}

	return uc.scanKeywords(ctx, lowered)
}

// scanKeywords is the tier-3 substring scan: leftmost occurrence wins,
// insertion order breaks ties.
func (uc *TriggerUsecase) scanKeywords(ctx context.Context, lowered string) (*domain.Filter, string, error) {
	names, err := uc.filters.Names(ctx)
	if err != nil {
		return nil, "", err
	}

	bestName := ""
	bestPos := -1
	for _, name := range names {
		pos := strings.Index(lowered, name)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos {
			bestPos = pos
			bestName = name
		}
	}
	if bestName == "" {
		return nil, "", nil
	}

	f, err := uc.filters.Get(ctx, bestName)
	if err != nil {
		return nil, "", err
	}
	return f, bestName, nil
}
