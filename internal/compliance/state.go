package compliance

import "time"

type LifecycleState string

const (
	StateValid        LifecycleState = "valid"
	StateExpiringSoon LifecycleState = "expiring_soon"
	StateOverdue      LifecycleState = "overdue"
	StateUnknown      LifecycleState = "unknown"
)

const secondsPerDay = 24 * 60 * 60

// StartOfDay returns the calendar date of t, as observed in t's own location,
// at UTC midnight. Differences between two such values are whole days.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b; negative when b is earlier.
// Unix seconds are used because time.Duration saturates near 292 years.
func DaysBetween(a, b time.Time) int {
	return int((StartOfDay(b).Unix() - StartOfDay(a).Unix()) / secondsPerDay)
}

// DaysUntil returns the calendar days left before expiresAt, or nil when the
// date is unknown.
func DaysUntil(expiresAt *time.Time, now time.Time) *int {
	if expiresAt == nil {
		return nil
	}
	n := DaysBetween(now, *expiresAt)
	return &n
}

// Classify derives the lifecycle state of a certificate. windowDays is the
// inclusive ExpiringSoon horizon: 0 means "expires today".
func Classify(expiresAt *time.Time, now time.Time, windowDays int) LifecycleState {
	if expiresAt == nil {
		return StateUnknown
	}
	left := DaysBetween(now, *expiresAt)
	switch {
	case left < 0:
		return StateOverdue
	case left <= windowDays:
		return StateExpiringSoon
	default:
		return StateValid
	}
}

// StatusFor is the value persisted with a certificate on write: active until
// the expiry date has passed. Unknown expiries stay active.
func StatusFor(expiresAt *time.Time, now time.Time) PersistedStatus {
	if expiresAt != nil && DaysBetween(now, *expiresAt) < 0 {
		return StatusOverdue
	}
	return StatusActive
}
