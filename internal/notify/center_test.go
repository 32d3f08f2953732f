package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"dayos/internal/model"
)

type memRepo struct {
	items []model.Notification
}

func (r *memRepo) InsertNotification(_ context.Context, n model.Notification) error {
	r.items = append(r.items, n)
	return nil
}

func (r *memRepo) ListNotifications(_ context.Context) ([]model.Notification, error) {
	out := make([]model.Notification, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *memRepo) HasNotificationKey(_ context.Context, key string) (bool, error) {
	for _, n := range r.items {
		if n.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) MarkNotificationRead(_ context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Read = true
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memRepo) MarkAllNotificationsRead(_ context.Context) (int, error) {
	n := 0
	for i := range r.items {
		if !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func TestListNewestFirst(t *testing.T) {
	repo := &memRepo{}
	c := NewCenter(repo)
	ctx := context.Background()
	for i, ago := range []time.Duration{2 * time.Hour, 10 * time.Minute, 24 * time.Hour} {
		n := model.Notification{ID: string(rune('a' + i)), Type: model.NotificationReply, Timestamp: now.Add(-ago)}
		if _, err := c.Push(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	items, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].ID != "b" || items[1].ID != "a" || items[2].ID != "c" {
		t.Fatalf("unexpected order: %s %s %s", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestPushDeduplicatesByKey(t *testing.T) {
	repo := &memRepo{}
	c := NewCenter(repo)
	ctx := context.Background()
	n := model.Notification{Type: model.NotificationDeadline, Title: "Review API Docs", Key: "overdue:f1:2026-01-10"}

	stored, err := c.Push(ctx, n)
	if err != nil || !stored {
		t.Fatalf("expected first push to store, got %v %v", stored, err)
	}
	stored, err = c.Push(ctx, n)
	if err != nil || stored {
		t.Fatalf("expected duplicate push to be skipped, got %v %v", stored, err)
	}
	if len(repo.items) != 1 || repo.items[0].ID == "" {
		t.Fatalf("expected one stored notification with a generated id, got %+v", repo.items)
	}
}

func TestMarkReadAndUnread(t *testing.T) {
	repo := &memRepo{}
	c := NewCenter(repo)
	ctx := context.Background()
	for _, id := range []string{"n1", "n2", "n3"} {
		c.Push(ctx, model.Notification{ID: id, Type: model.NotificationMeeting, Timestamp: now})
	}

	if err := c.MarkRead(ctx, "n2"); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Unread(ctx); n != 2 {
		t.Fatalf("expected 2 unread, got %d", n)
	}
	if err := c.MarkRead(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	flipped, err := c.MarkAllRead(ctx)
	if err != nil || flipped != 2 {
		t.Fatalf("expected 2 flipped, got %d %v", flipped, err)
	}
	if n, _ := c.Unread(ctx); n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}
}

func TestFormatAge(t *testing.T) {
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{2 * time.Hour, "2h ago"},
		{23 * time.Hour, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{75 * time.Hour, "3d ago"},
	}
	for _, tc := range cases {
		if got := FormatAge(now.Add(-tc.ago), now); got != tc.want {
			t.Fatalf("FormatAge(-%s): expected %q, got %q", tc.ago, tc.want, got)
		}
	}
}
