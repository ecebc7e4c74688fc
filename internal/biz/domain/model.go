package domain

import "time"

// Model tiers, 1 is highest priority.
const (
	TierPremium  = 1
	TierGeneral  = 2
	TierFallback = 3
)

// Complexity is the estimated difficulty class of a query.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// RequesterTier is the privilege level of the user asking.
type RequesterTier string

const (
	RequesterOwner RequesterTier = "owner"
	RequesterAdmin RequesterTier = "admin"
	RequesterUser  RequesterTier = "user"
)

// ModelDescriptor is one rate/quota-constrained completion backend. Limits
// are static configuration; the counters mutate on every dispatch and reset
// when their window elapses.
type ModelDescriptor struct {
	Name            string
	DailyLimit      int
	RPMLimit        int
	Quality         int // ordinal 1-10
	Tier            int // 1 = highest priority
	DailyUsed       int
	MinuteUsed      int
	LastMinuteReset time.Time
}

// Eligible reports whether the model still has capacity at the given time.
// A stale minute window counts as empty even before the sweep zeroes it.
func (m *ModelDescriptor) Eligible(now time.Time) bool {
	minuteUsed := m.MinuteUsed
	if now.Sub(m.LastMinuteReset) > time.Minute {
		minuteUsed = 0
	}
	return minuteUsed < m.RPMLimit && m.DailyUsed < m.DailyLimit
}

// Record counts one successful dispatch against both windows.
func (m *ModelDescriptor) Record(now time.Time) {
	if now.Sub(m.LastMinuteReset) > time.Minute {
		m.MinuteUsed = 0
		m.LastMinuteReset = now
	}
	m.MinuteUsed++
	m.DailyUsed++
}

// SweepMinuteWindow zeroes the per-minute counter once the window has
// elapsed.
func (m *ModelDescriptor) SweepMinuteWindow(now time.Time) {
	if now.Sub(m.LastMinuteReset) > time.Minute {
		m.MinuteUsed = 0
		m.LastMinuteReset = now
	}
}

// ResetDaily zeroes the daily counter.
func (m *ModelDescriptor) ResetDaily() {
	m.DailyUsed = 0
}
