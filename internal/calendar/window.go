// Package calendar holds the date engine behind the week, month and day
// views: window generation, calendar-day bucketing and day classification.
//
// Every calendar-day comparison happens in a single reference zone carried
// by Calendar. None of the functions read the wall clock; "now" is always a
// parameter.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Calendar fixes the reference zone and the first column of the week.
type Calendar struct {
	Loc       *time.Location
	WeekStart time.Weekday
}

// New returns a Calendar for loc (time.Local when nil) starting weeks on
// weekStart.
func New(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Loc: loc, WeekStart: weekStart}
}

func (c Calendar) loc() *time.Location {
	if c.Loc == nil {
		return time.Local
	}
	return c.Loc
}

// StartOfDay truncates t to midnight in the reference zone.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// StartOfWeek returns midnight of the first day of the week containing t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	back := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// WeekWindow returns the 7 midnights of the week containing anchor.
func (c Calendar) WeekWindow(anchor time.Time) []time.Time {
	start := c.StartOfWeek(anchor)
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time    `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Weekend bool         `json:"weekend"`
}

// MonthGrid returns every day of anchor's month, 1 through the last day.
func (c Calendar) MonthGrid(anchor time.Time) []Day {
	first := c.StartOfMonth(anchor)
	n := DaysInMonth(first.Year(), first.Month())
	out := make([]Day, n)
	for i := 0; i < n; i++ {
		d := first.AddDate(0, 0, i)
		out[i] = Day{
			Date:    d,
			Weekday: d.Weekday(),
			Weekend: IsWeekend(d),
		}
	}
	return out
}

// StartOfMonth returns midnight of day 1 of t's month.
func (c Calendar) StartOfMonth(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc())
}

// LeadingBlanks is the number of empty cells before day 1 in a 7-column grid
// whose first column is WeekStart.
func (c Calendar) LeadingBlanks(anchor time.Time) int {
	first := c.StartOfMonth(anchor)
	return (int(first.Weekday()) - int(c.WeekStart) + 7) % 7
}

// DaysInMonth handles leap years through time.Date normalisation.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Unit is the navigation step of the prev/next buttons.
type Unit int

const (
	UnitDay Unit = iota + 1
	UnitWeek
)

func (u Unit) String() string {
	switch u {
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// ParseUnit reads "day" or "week".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return UnitDay, nil
	case "week":
		return UnitWeek, nil
	}
	return 0, fmt.Errorf("calendar: unknown unit %q", s)
}

// Direction is backward (-1) or forward (+1).
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// ParseDirection reads "prev" or "next" and their synonyms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous", "back":
		return Prev, nil
	case "next", "forward":
		return Next, nil
	}
	return 0, fmt.Errorf("calendar: unknown direction %q", s)
}

// View is the calendar layout the client asked for.
type View int

const (
	ViewWeek View = iota + 1
	ViewMonth
	ViewDay
)

func (v View) String() string {
	switch v {
	case ViewWeek:
		return "week"
	case ViewMonth:
		return "month"
	case ViewDay:
		return "day"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// ParseView reads "week", "month" or "day".
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week":
		return ViewWeek, nil
	case "month":
		return ViewMonth, nil
	case "day":
		return ViewDay, nil
	}
	return 0, fmt.Errorf("calendar: unknown view %q", s)
}

// Advance moves anchor by one week or one day. Wall-clock time of day is
// kept; only the date moves.
func Advance(anchor time.Time, unit Unit, dir Direction) time.Time {
	step := 1
	if unit == UnitWeek {
		step = 7
	}
	return anchor.AddDate(0, 0, step*int(dir))
}
