package domain

import "time"

// Timeout is a temporary mute applied to a user. Timeout records live only
// in memory and are lost on restart; that is an accepted limitation.
type Timeout struct {
	Until  time.Time
	Reason string
}

// Expired reports whether the timeout has lapsed.
func (t Timeout) Expired(now time.Time) bool {
	return !now.Before(t.Until)
}

// Remaining returns how long the timeout still holds, never negative.
func (t Timeout) Remaining(now time.Time) time.Duration {
	if t.Expired(now) {
		return 0
	}
	return t.Until.Sub(now)
}
