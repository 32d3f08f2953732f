package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dayos/internal/followup"
	"dayos/internal/model"
	"dayos/internal/notify"
)

// Compile-time checks that Store backs the domain repositories.
var (
	_ followup.Repository = (*Store)(nil)
	_ notify.Repository   = (*Store)(nil)
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dayos.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var now = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func TestFollowUpLifecycle(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	tr := followup.NewTracker(s)

	f, err := tr.Create(ctx, followup.Draft{Person: "Sarah Miller", Organization: "Acme", Priority: model.PriorityHigh}, followup.DayOffset(7), now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetFollowUp(ctx, f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Priority != model.PriorityHigh || got.Person != "Sarah Miller" {
		t.Fatalf("unexpected stored follow-up %+v", got)
	}
	if !got.DueAt.Equal(time.Date(2026, 1, 17, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due %s", got.DueAt)
	}

	if _, err := tr.Reschedule(ctx, f.ID, followup.DayOffset(2), now); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	got, _ = s.GetFollowUp(ctx, f.ID)
	if !got.DueAt.Equal(now.AddDate(0, 0, 2)) || got.Priority != model.PriorityHigh {
		t.Fatalf("reschedule stored wrong state %+v", got)
	}

	if err := tr.Complete(ctx, f.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := s.GetFollowUp(ctx, f.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after completion, got %v", err)
	}
	if err := s.DeleteFollowUp(ctx, f.ID); !errors.Is(err, followup.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := s.UpdateFollowUpDue(ctx, f.ID, now); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestListFollowUpsOrderedByDue(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for i, off := range []int{5, 1, 3} {
		f := model.FollowUp{
			ID:        string(rune('a' + i)),
			Person:    "P",
			DueAt:     now.AddDate(0, 0, off),
			Priority:  model.PriorityLow,
			CreatedAt: now,
		}
		if err := s.InsertFollowUp(ctx, f); err != nil {
			t.Fatal(err)
		}
	}
	items, err := s.ListFollowUps(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[0].ID != "b" || items[1].ID != "c" || items[2].ID != "a" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestMeetingsBetweenAndReplace(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	local, err := s.InsertMeeting(ctx, model.Meeting{Title: "Local", Start: now, End: now.Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	err = s.ReplaceSourceMeetings(ctx, "work", []model.Meeting{
		{ID: "w1", Title: "Imported 1", Start: now.Add(24 * time.Hour), End: now.Add(25 * time.Hour)},
		{ID: "w2", Title: "Imported 2", Start: now.Add(48 * time.Hour), End: now.Add(49 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	between, err := s.ListMeetingsBetween(ctx, now, now.Add(30*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(between) != 2 || between[0].ID != local.ID || between[1].ID != "w1" {
		t.Fatalf("unexpected meetings in range %+v", between)
	}

	if err := s.ReplaceSourceMeetings(ctx, "work", []model.Meeting{{ID: "w3", Title: "Only", Start: now, End: now}}); err != nil {
		t.Fatal(err)
	}
	all, _ := s.ListMeetings(ctx)
	if len(all) != 2 {
		t.Fatalf("expected local + 1 imported meeting, got %d", len(all))
	}
	if _, err := s.GetMeeting(ctx, "w1"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected replaced meeting to be gone, got %v", err)
	}
	m, err := s.GetMeeting(ctx, "w3")
	if err != nil || m.SourceID != "work" {
		t.Fatalf("expected w3 tagged with source, got %+v %v", m, err)
	}
}

func TestEmailMarkRead(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	e, err := s.InsertEmail(ctx, model.Email{Sender: "Sarah", Subject: "Budget", ReceivedAt: now})
	if err != nil {
		t.Fatal(err)
	}

	changed, err := s.MarkEmailRead(ctx, e.ID)
	if err != nil || !changed {
		t.Fatalf("expected first mark to change, got %v %v", changed, err)
	}
	changed, err = s.MarkEmailRead(ctx, e.ID)
	if err != nil || changed {
		t.Fatalf("expected second mark to be a no-op, got %v %v", changed, err)
	}
	if _, err := s.MarkEmailRead(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationsThroughCenter(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	c := notify.NewCenter(s)

	n := model.Notification{Type: model.NotificationDeadline, Title: "Docs", Timestamp: now, Key: "k1"}
	if stored, err := c.Push(ctx, n); err != nil || !stored {
		t.Fatalf("push: %v %v", stored, err)
	}
	if stored, _ := c.Push(ctx, n); stored {
		t.Fatal("expected duplicate key to be skipped")
	}
	c.Push(ctx, model.Notification{Type: model.NotificationReply, Title: "Later", Timestamp: now.Add(time.Hour)})

	items, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Title != "Later" || items[1].Type != model.NotificationDeadline {
		t.Fatalf("unexpected notifications %+v", items)
	}

	if err := c.MarkRead(ctx, items[1].ID); err != nil {
		t.Fatal(err)
	}
	if flipped, _ := c.MarkAllRead(ctx); flipped != 1 {
		t.Fatalf("expected 1 flipped, got %d", flipped)
	}
	if unread, _ := c.Unread(ctx); unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
}

func TestSeed(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if err := s.Seed(ctx, now); err != nil {
		t.Fatalf("seed: %v", err)
	}
	meetings, _ := s.ListMeetings(ctx)
	emails, _ := s.ListEmails(ctx)
	followUps, _ := s.ListFollowUps(ctx)
	notifications, _ := s.ListNotifications(ctx)
	if len(meetings) == 0 || len(emails) == 0 || len(followUps) == 0 || len(notifications) == 0 {
		t.Fatalf("expected every table to be seeded: %d %d %d %d", len(meetings), len(emails), len(followUps), len(notifications))
	}
	for i := 1; i < len(emails); i++ {
		if emails[i].ReceivedAt.After(emails[i-1].ReceivedAt) {
			t.Fatal("expected emails newest first")
		}
	}
}
