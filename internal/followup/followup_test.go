package followup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dayos/internal/calendar"
	"dayos/internal/model"
)

type memRepo struct {
	mu    sync.Mutex
	items map[string]model.FollowUp
	order []string
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[string]model.FollowUp)}
}

func (r *memRepo) InsertFollowUp(_ context.Context, f model.FollowUp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[f.ID] = f
	r.order = append(r.order, f.ID)
	return nil
}

func (r *memRepo) GetFollowUp(_ context.Context, id string) (model.FollowUp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.items[id]
	if !ok {
		return model.FollowUp{}, ErrNotFound
	}
	return f, nil
}

func (r *memRepo) ListFollowUps(_ context.Context) ([]model.FollowUp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.FollowUp, 0, len(r.items))
	for _, id := range r.order {
		if f, ok := r.items[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateFollowUpDue(_ context.Context, id string, due time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	f.DueAt = due
	r.items[id] = f
	return nil
}

func (r *memRepo) DeleteFollowUp(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func newTestTracker() (*Tracker, *memRepo) {
	repo := newMemRepo()
	tr := NewTracker(repo)
	n := 0
	tr.newID = func() string {
		n++
		return fmt.Sprintf("f%d", n)
	}
	return tr, repo
}

var now = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func TestResolveDueDateDayOffsetKeepsTimeOfDay(t *testing.T) {
	got, err := ResolveDueDate(DayOffset(7), now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := time.Date(2026, 1, 17, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolveDueDateQuickOffsets(t *testing.T) {
	for _, off := range QuickOffsets {
		got, err := ResolveDueDate(off, now)
		if err != nil {
			t.Fatalf("offset %d: %v", off, err)
		}
		if got.Hour() != 9 || !got.Equal(now.AddDate(0, 0, int(off))) {
			t.Fatalf("offset %d: unexpected %s", off, got)
		}
	}
	if _, err := ResolveDueDate(DayOffset(-1), now); !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate for negative offset, got %v", err)
	}
}

func TestResolveDueDateExplicit(t *testing.T) {
	midnight := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	got, err := ResolveDueDate(ExplicitDate(midnight), now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.Equal(midnight) {
		t.Fatalf("expected explicit date verbatim, got %s", got)
	}

	if _, err := ResolveDueDate(ExplicitDate(now), now); err != nil {
		t.Fatalf("due == now must be accepted, got %v", err)
	}
	if _, err := ResolveDueDate(ExplicitDate(now.Add(-time.Nanosecond)), now); !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}
	if _, err := ResolveDueDate(nil, now); !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate for nil choice, got %v", err)
	}
}

func TestChoiceLabels(t *testing.T) {
	want := []string{"2 days", "5 days", "1 week", "1 month"}
	for i, off := range QuickOffsets {
		if off.String() != want[i] {
			t.Fatalf("expected %q, got %q", want[i], off.String())
		}
	}
}

func TestCreateRejectsPastExplicitDate(t *testing.T) {
	tr, repo := newTestTracker()
	ctx := context.Background()

	_, err := tr.Create(ctx, Draft{Person: "Sarah Miller"}, ExplicitDate(now.AddDate(0, 0, -1)), now)
	if !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("refused create must not store anything, got %d items", len(repo.items))
	}

	f, err := tr.Create(ctx, Draft{Person: "Sarah Miller"}, ExplicitDate(now), now)
	if err != nil {
		t.Fatalf("boundary create failed: %v", err)
	}
	if f.Priority != model.PriorityMedium {
		t.Fatalf("expected default medium priority, got %s", f.Priority)
	}
}

func TestCreateRequiresPerson(t *testing.T) {
	tr, _ := newTestTracker()
	if _, err := tr.Create(context.Background(), Draft{Person: "  "}, DayOffset(2), now); !errors.Is(err, ErrPersonRequired) {
		t.Fatalf("expected ErrPersonRequired, got %v", err)
	}
}

func TestCreateFromMeeting(t *testing.T) {
	tr, _ := newTestTracker()
	m := model.Meeting{
		ID:           "m1",
		Title:        "Q1 Planning",
		Person:       "Alex Chen",
		Organization: "Northwind",
		Start:        now.Add(-2 * time.Hour),
		End:          now.Add(-time.Hour),
	}
	f, err := tr.CreateFromMeeting(context.Background(), m, model.PriorityHigh, DayOffset(2), now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Person != "Alex Chen" || f.Organization != "Northwind" || f.MeetingTitle != "Q1 Planning" || f.MeetingID != "m1" {
		t.Fatalf("meeting fields not copied: %+v", f)
	}
	if !f.MeetingDate.Equal(m.Start) {
		t.Fatalf("expected meeting date %s, got %s", m.Start, f.MeetingDate)
	}
	if !f.DueAt.Equal(now.AddDate(0, 0, 2)) {
		t.Fatalf("unexpected due %s", f.DueAt)
	}
}

func TestRescheduleChangesOnlyDueDate(t *testing.T) {
	tr, repo := newTestTracker()
	ctx := context.Background()
	orig, err := tr.Create(ctx, Draft{Person: "Jordan", Organization: "Acme", Priority: model.PriorityLow}, DayOffset(2), now)
	if err != nil {
		t.Fatal(err)
	}

	later := now.Add(3 * time.Hour)
	got, err := tr.Reschedule(ctx, orig.ID, DayOffset(5), later)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	stored := repo.items[orig.ID]
	if !stored.DueAt.Equal(later.AddDate(0, 0, 5)) || !got.DueAt.Equal(stored.DueAt) {
		t.Fatalf("unexpected due date %s", stored.DueAt)
	}
	stored.DueAt = orig.DueAt
	if stored != orig {
		t.Fatalf("reschedule changed more than the due date:\n%+v\n%+v", orig, stored)
	}
}

func TestRescheduleRefusalLeavesItemUntouched(t *testing.T) {
	tr, repo := newTestTracker()
	ctx := context.Background()
	f, _ := tr.Create(ctx, Draft{Person: "Jordan"}, DayOffset(2), now)

	if _, err := tr.Reschedule(ctx, f.ID, ExplicitDate(now.AddDate(0, 0, -3)), now); !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}
	if !repo.items[f.ID].DueAt.Equal(f.DueAt) {
		t.Fatal("refused reschedule must not mutate the due date")
	}
	if _, err := tr.Reschedule(ctx, "missing", DayOffset(2), now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteIsTerminal(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()
	f, _ := tr.Create(ctx, Draft{Person: "Sam"}, DayOffset(2), now)

	if err := tr.Complete(ctx, f.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	active, _ := tr.Active(ctx)
	if len(active) != 0 {
		t.Fatalf("expected empty active set, got %d", len(active))
	}
	if err := tr.Complete(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second completion, got %v", err)
	}
	if _, err := tr.Reschedule(ctx, f.ID, DayOffset(2), now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("completed follow-up must not be reschedulable, got %v", err)
	}
}

func TestActiveSortedAndFiltered(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()
	for _, off := range []DayOffset{30, 2, 7, 2} {
		if _, err := tr.Create(ctx, Draft{Person: "P"}, off, now); err != nil {
			t.Fatal(err)
		}
	}

	active, err := tr.Active(ctx)
	if err != nil {
		t.Fatal(err)
	}
	ids := ""
	for _, f := range active {
		ids += f.ID + " "
	}
	if ids != "f2 f4 f3 f1 " {
		t.Fatalf("expected stable due-date order, got %q", ids)
	}

	cal := calendar.New(time.UTC, time.Sunday)
	on, err := tr.ActiveOn(ctx, cal, now.AddDate(0, 0, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(on) != 2 {
		t.Fatalf("expected 2 follow-ups on day+2, got %d", len(on))
	}
}

func TestParseChoice(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		in   string
		want Choice
	}{
		{"7", DayOffset(7)},
		{"2d", DayOffset(2)},
		{" 1w ", DayOffset(7)},
		{"2026-01-20", ExplicitDate(time.Date(2026, 1, 20, 0, 0, 0, 0, loc))},
		{"2026-01-20T15:00:00Z", ExplicitDate(time.Date(2026, 1, 20, 15, 0, 0, 0, loc))},
	}
	for _, tc := range cases {
		got, err := ParseChoice(tc.in, loc)
		if err != nil {
			t.Fatalf("ParseChoice(%q): %v", tc.in, err)
		}
		switch want := tc.want.(type) {
		case DayOffset:
			if got != want {
				t.Fatalf("ParseChoice(%q): expected %v, got %v", tc.in, want, got)
			}
		case ExplicitDate:
			g, ok := got.(ExplicitDate)
			if !ok || !time.Time(g).Equal(time.Time(want)) {
				t.Fatalf("ParseChoice(%q): expected %v, got %v", tc.in, want, got)
			}
		}
	}

	for _, bad := range []string{"", "soon", "d"} {
		if _, err := ParseChoice(bad, loc); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
