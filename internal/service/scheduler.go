package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"telegram-filter-bot/internal/biz/repo"
)

// AutoDeleteScheduler removes chat messages after a delay. Command chatter
// and bot replies are cleaned up so filter chats stay readable.
type AutoDeleteScheduler struct {
	sender repo.MessageRepo

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewAutoDeleteScheduler creates a new auto-delete scheduler.
func NewAutoDeleteScheduler(sender repo.MessageRepo) *AutoDeleteScheduler {
	return &AutoDeleteScheduler{
		sender: sender,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arranges for a message to be deleted after the delay. A second
// schedule for the same message replaces the first.
func (s *AutoDeleteScheduler) Schedule(chatID int64, messageID int, delay time.Duration) {
	key := fmt.Sprintf("%d_%d", chatID, messageID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}

	s.timers[key] = time.AfterFunc(delay, func() {
		// Delete failures (already gone, no permission) are not worth
		// surfacing.
		_ = s.sender.Delete(context.Background(), chatID, messageID)

		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
	})
}

// PendingCount returns how many deletions are still scheduled.
func (s *AutoDeleteScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all pending deletions.
func (s *AutoDeleteScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
	fmt.Println("[Scheduler] Stopped")
}
