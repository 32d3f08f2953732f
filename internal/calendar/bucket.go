package calendar

import (
	"sort"
	"time"

	"dayos/internal/model"
)

// MaxVisible is how many meetings a day cell lists before collapsing the
// rest into "+N more".
const MaxVisible = 2

// Dated is anything that lands on a calendar day.
type Dated interface {
	When() time.Time
}

// SameDay compares year, month and day in the reference zone.
func (c Calendar) SameDay(a, b time.Time) bool {
	a = a.In(c.loc())
	b = b.In(c.loc())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EventsOn keeps the events that fall on day, preserving input order.
// The result is never nil.
func EventsOn[E Dated](c Calendar, day time.Time, events []E) []E {
	out := make([]E, 0)
	for _, ev := range events {
		if c.SameDay(ev.When(), day) {
			out = append(out, ev)
		}
	}
	return out
}

// Bucket splits events over days; bucket i holds the events on days[i].
// Events outside every day are dropped.
func Bucket[E Dated](c Calendar, days []time.Time, events []E) [][]E {
	out := make([][]E, len(days))
	index := make(map[[3]int]int, len(days))
	for i, d := range days {
		out[i] = make([]E, 0)
		index[dayKey(d.In(c.loc()))] = i
	}
	for _, ev := range events {
		if i, ok := index[dayKey(ev.When().In(c.loc()))]; ok {
			out[i] = append(out[i], ev)
		}
	}
	return out
}

func dayKey(t time.Time) [3]int {
	y, m, d := t.Date()
	return [3]int{y, int(m), d}
}

// Overflow splits count into what a cell shows and what it folds away.
func Overflow(count int) (visible, overflow int) {
	if count <= MaxVisible {
		return count, 0
	}
	return MaxVisible, count - MaxVisible
}

// Item is an entry in a month-view cell.
type Item struct {
	Kind  model.ItemKind `json:"kind"`
	ID    string         `json:"id"`
	Title string         `json:"title"`
	At    time.Time      `json:"at"`
}

func (i Item) When() time.Time { return i.At }

// SortByKind orders items meeting, follow-up, email; ties keep input order.
func SortByKind(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Kind.Rank() < items[b].Kind.Rank()
	})
}
