package calendar

import (
	"fmt"
	"time"
)

// IsWeekend reports whether d falls on Saturday or Sunday in its own zone.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsToday must be called with a fresh now on every evaluation.
func (c Calendar) IsToday(d, now time.Time) bool {
	return c.SameDay(d, now)
}

// RemainingKind buckets the time left until a due date.
type RemainingKind int

const (
	Overdue RemainingKind = iota + 1
	Today
	Tomorrow
	InDays
	InWeeks
)

// Remaining is the label shown next to a follow-up. N is set for InDays and
// InWeeks only.
type Remaining struct {
	Kind RemainingKind
	N    int
}

func (r Remaining) String() string {
	switch r.Kind {
	case Overdue:
		return "Overdue"
	case Today:
		return "Today"
	case Tomorrow:
		return "Tomorrow"
	case InDays:
		return fmt.Sprintf("%d days", r.N)
	case InWeeks:
		if r.N > 1 {
			return fmt.Sprintf("%d weeks", r.N)
		}
		return fmt.Sprintf("%d week", r.N)
	}
	return "unknown"
}

// MarshalText encodes the display label, e.g. "3 days".
func (r Remaining) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

const day = 24 * time.Hour

// TimeRemaining classifies due relative to now. Any due strictly before now
// is Overdue; otherwise the whole days left are floored and bucketed.
func TimeRemaining(due, now time.Time) Remaining {
	diff := due.Sub(now)
	if diff < 0 {
		return Remaining{Kind: Overdue}
	}
	days := int(diff / day)
	switch {
	case days == 0:
		return Remaining{Kind: Today}
	case days == 1:
		return Remaining{Kind: Tomorrow}
	case days < 7:
		return Remaining{Kind: InDays, N: days}
	default:
		return Remaining{Kind: InWeeks, N: days / 7}
	}
}
