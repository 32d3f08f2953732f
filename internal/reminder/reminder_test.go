package reminder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dayos/internal/calendar"
	"dayos/internal/followup"
	"dayos/internal/ics"
	"dayos/internal/model"
	"dayos/internal/notify"
)

// fakeStore backs follow-ups, notifications and meetings in memory.
type fakeStore struct {
	mu            sync.Mutex
	followUps     []model.FollowUp
	meetings      []model.Meeting
	notifications []model.Notification
	replaced      map[string][]model.Meeting
}

func (f *fakeStore) InsertFollowUp(_ context.Context, fu model.FollowUp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followUps = append(f.followUps, fu)
	return nil
}

func (f *fakeStore) GetFollowUp(_ context.Context, id string) (model.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fu := range f.followUps {
		if fu.ID == id {
			return fu, nil
		}
	}
	return model.FollowUp{}, model.ErrNotFound
}

func (f *fakeStore) ListFollowUps(context.Context) ([]model.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.FollowUp(nil), f.followUps...), nil
}

func (f *fakeStore) UpdateFollowUpDue(context.Context, string, time.Time) error { return nil }
func (f *fakeStore) DeleteFollowUp(context.Context, string) error             { return nil }

func (f *fakeStore) InsertNotification(_ context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) ListNotifications(context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.notifications...), nil
}

func (f *fakeStore) HasNotificationKey(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MarkNotificationRead(context.Context, string) error   { return nil }
func (f *fakeStore) MarkAllNotificationsRead(context.Context) (int, error) { return 0, nil }

func (f *fakeStore) ListMeetingsBetween(_ context.Context, from, to time.Time) ([]model.Meeting, error) {
	out := make([]model.Meeting, 0)
	for _, m := range f.meetings {
		if !m.Start.Before(from) && m.Start.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ReplaceSourceMeetings(_ context.Context, sourceID string, meetings []model.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaced == nil {
		f.replaced = make(map[string][]model.Meeting)
	}
	f.replaced[sourceID] = meetings
	return nil
}

var now = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 1, day, hour, minute, 0, 0, time.UTC)
}

func newScanner(fs *fakeStore) *Scanner {
	return &Scanner{
		Calendar:  calendar.New(time.UTC, time.Sunday),
		Meetings:  fs,
		FollowUps: followup.NewTracker(fs),
		Center:    notify.NewCenter(fs),
		Lead:      10 * time.Minute,
	}
}

func TestScanFollowUps(t *testing.T) {
	fs := &fakeStore{followUps: []model.FollowUp{
		{ID: "late", Person: "Sarah Miller", Organization: "Acme", DueAt: at(9, 9, 0)},
		{ID: "today", Person: "Alex Chen", MeetingTitle: "Q1 Planning", DueAt: at(10, 15, 0)},
		{ID: "later", Person: "Dana", DueAt: at(20, 9, 0)},
	}}
	s := newScanner(fs)

	pushed, err := s.Scan(context.Background(), now)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if pushed != 2 {
		t.Fatalf("expected 2 notifications, got %d", pushed)
	}

	byType := map[model.NotificationType]model.Notification{}
	for _, n := range fs.notifications {
		byType[n.Type] = n
	}
	deadline, ok := byType[model.NotificationDeadline]
	if !ok || !strings.Contains(deadline.Message, "Sarah Miller (Acme)") || !strings.Contains(deadline.Message, "Jan 9") {
		t.Fatalf("unexpected deadline notification %+v", deadline)
	}
	due, ok := byType[model.NotificationFollowUp]
	if !ok || !strings.Contains(due.Message, `"Q1 Planning"`) {
		t.Fatalf("unexpected follow-up notification %+v", due)
	}
	if !due.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %s, got %s", now, due.Timestamp)
	}
}

func TestScanIsIdempotentWithinDay(t *testing.T) {
	fs := &fakeStore{followUps: []model.FollowUp{
		{ID: "late", Person: "Sarah Miller", DueAt: at(9, 9, 0)},
	}}
	s := newScanner(fs)
	ctx := context.Background()

	if _, err := s.Scan(ctx, now); err != nil {
		t.Fatal(err)
	}
	pushed, err := s.Scan(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if pushed != 0 {
		t.Fatalf("expected repeated scan to push nothing, got %d", pushed)
	}

	pushed, _ = s.Scan(ctx, now.AddDate(0, 0, 1))
	if pushed != 1 {
		t.Fatalf("expected overdue reminder to repeat on the next day, got %d", pushed)
	}
}

func TestScanMeetings(t *testing.T) {
	fs := &fakeStore{meetings: []model.Meeting{
		{ID: "m1", Title: "Strategy Sync", Person: "Sarah Miller", Start: at(10, 9, 8), End: at(10, 9, 45)},
		{ID: "m2", Title: "Design Review", Start: at(10, 9, 30), End: at(10, 10, 0)},
		{ID: "m3", Title: "Lunch", Start: at(10, 12, 0), End: at(10, 13, 0)},
		{ID: "m4", Title: "Touching", Start: at(10, 13, 0), End: at(10, 13, 30)},
		{ID: "m5", Title: "Tomorrow", Start: at(11, 9, 5), End: at(11, 9, 30)},
	}}
	s := newScanner(fs)

	pushed, err := s.Scan(context.Background(), now)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if pushed != 2 {
		t.Fatalf("expected starting-soon and one overlap, got %d: %+v", pushed, fs.notifications)
	}

	var soon, conflict model.Notification
	for _, n := range fs.notifications {
		if n.HasConflict() {
			conflict = n
		} else {
			soon = n
		}
	}
	if soon.Message != `"Strategy Sync" with Sarah Miller starts in 8m` {
		t.Fatalf("unexpected starting-soon message %q", soon.Message)
	}
	if conflict.Message != `Meeting Overlap: "Strategy Sync" and "Design Review"` {
		t.Fatalf("unexpected overlap message %q", conflict.Message)
	}
}

func TestScanMeetingStartingWithinAMinute(t *testing.T) {
	fs := &fakeStore{meetings: []model.Meeting{
		{ID: "m1", Title: "Standup", Start: now.Add(30 * time.Second), End: now.Add(15 * time.Minute)},
	}}
	if _, err := newScanner(fs).Scan(context.Background(), now); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(fs.notifications) != 1 || fs.notifications[0].Message != `"Standup" starting now` {
		t.Fatalf("expected a starting-now reminder, got %+v", fs.notifications)
	}
}

func TestStartsIn(t *testing.T) {
	cases := []struct {
		until time.Duration
		want  string
	}{
		{0, "starting now"},
		{59 * time.Second, "starting now"},
		{time.Minute, "starts in 1m"},
		{7*time.Minute + 30*time.Second, "starts in 8m"},
		{8 * time.Minute, "starts in 8m"},
	}
	for _, tc := range cases {
		if got := startsIn(tc.until); got != tc.want {
			t.Fatalf("startsIn(%v): expected %q, got %q", tc.until, tc.want, got)
		}
	}
}

func TestRunnerRejectsBadSpec(t *testing.T) {
	r := NewRunner(time.UTC, func() time.Time { return now })
	if err := r.Add("bad", "every now and then", func(context.Context, time.Time) error { return nil }); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if err := r.Add("scan", "*/5 * * * *", func(context.Context, time.Time) error { return nil }); err != nil {
		t.Fatalf("expected valid spec to schedule, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()
	r.Stop()
}

func TestRefresh(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:sync\r\nDTSTAMP:20260101T000000Z\r\n" +
		"DTSTART:20260112T100000Z\r\nDTEND:20260112T103000Z\r\nSUMMARY:Weekly Sync\r\n" +
		"RRULE:FREQ=WEEKLY;COUNT=10\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	fs := &fakeStore{}
	r := &Refresher{
		Calendar:    calendar.New(time.UTC, time.Sunday),
		Fetcher:     ics.NewFetcher(t.TempDir(), srv.Client()),
		Sources:     []ics.Source{{ID: "work", URL: srv.URL + "/work.ics"}},
		Store:       fs,
		HorizonDays: 14,
	}
	if err := r.Refresh(context.Background(), now); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := fs.replaced["work"]
	// Week of Jan 4 through Jan 24: occurrences on Jan 12 and Jan 19.
	if len(got) != 2 || got[0].Title != "Weekly Sync" {
		t.Fatalf("unexpected imported meetings %+v", got)
	}
}
