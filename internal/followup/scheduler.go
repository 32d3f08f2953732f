package followup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dayos/internal/model"
)

var (
	// ErrInvalidDueDate is returned when a due date would land before the
	// moment of the action. Nothing is created or changed.
	ErrInvalidDueDate = errors.New("followup: due date is in the past")
	ErrNotFound       = model.ErrNotFound
	ErrPersonRequired = errors.New("followup: person is required")
)

// Choice is what the picker hands over: DayOffset or ExplicitDate.
type Choice interface {
	choice()
	fmt.Stringer
}

// DayOffset schedules n days after the action, keeping its time of day.
type DayOffset int

func (DayOffset) choice() {}

func (d DayOffset) String() string {
	switch d {
	case 7:
		return "1 week"
	case 30:
		return "1 month"
	case 1:
		return "1 day"
	}
	return fmt.Sprintf("%d days", int(d))
}

// ExplicitDate schedules at the given instant, verbatim.
type ExplicitDate time.Time

func (ExplicitDate) choice() {}

func (e ExplicitDate) String() string {
	return time.Time(e).Format("2006-01-02")
}

// QuickOffsets are the presets offered by the reschedule and create sheets.
var QuickOffsets = []DayOffset{2, 5, 7, 30}

// ResolveDueDate turns a picker choice into a concrete due date relative to
// now. Explicit dates equal to now are accepted; strictly earlier ones are
// refused.
func ResolveDueDate(c Choice, now time.Time) (time.Time, error) {
	switch v := c.(type) {
	case DayOffset:
		if v < 0 {
			return time.Time{}, fmt.Errorf("%w: offset %d", ErrInvalidDueDate, int(v))
		}
		return now.AddDate(0, 0, int(v)), nil
	case ExplicitDate:
		due := time.Time(v)
		if due.Before(now) {
			return time.Time{}, fmt.Errorf("%w: %s before %s", ErrInvalidDueDate, due.Format(time.RFC3339), now.Format(time.RFC3339))
		}
		return due, nil
	case nil:
		return time.Time{}, fmt.Errorf("%w: no choice", ErrInvalidDueDate)
	}
	return time.Time{}, fmt.Errorf("followup: unsupported choice %T", c)
}

// ParseChoice reads a choice typed by a user or sent by a client:
//
//	"7", "7d"              -> DayOffset(7)
//	"1w"                   -> DayOffset(7)
//	"2026-01-20"           -> ExplicitDate at midnight in loc
//	"2026-01-20T15:00:00Z" -> ExplicitDate (any RFC 3339 instant)
func ParseChoice(s string, loc *time.Location) (Choice, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, errors.New("followup: empty due choice")
	}
	if loc == nil {
		loc = time.Local
	}

	unit := 1
	num := s
	switch {
	case strings.HasSuffix(s, "d"):
		num = strings.TrimSuffix(s, "d")
	case strings.HasSuffix(s, "w"):
		num, unit = strings.TrimSuffix(s, "w"), 7
	}
	if n, err := strconv.Atoi(num); err == nil {
		return DayOffset(n * unit), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return ExplicitDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339, strings.ToUpper(s)); err == nil {
		return ExplicitDate(t), nil
	}
	return nil, fmt.Errorf("followup: cannot read due choice %q", s)
}
