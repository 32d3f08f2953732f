package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dayos/internal/model"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// InsertFollowUp stores f with its id as given.
func (s *Store) InsertFollowUp(ctx context.Context, f model.FollowUp) error {
	f.MeetingDate, f.DueAt, f.CreatedAt = utc(f.MeetingDate), utc(f.DueAt), utc(f.CreatedAt)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO followups (id, person, organization, meeting_id, meeting_title, meeting_date, due_at, priority, created_at)
		VALUES (:id, :person, :organization, :meeting_id, :meeting_title, :meeting_date, :due_at, :priority, :created_at)`, f)
	if err != nil {
		return fmt.Errorf("store: insert follow-up: %w", err)
	}
	return nil
}

// GetFollowUp returns model.ErrNotFound for unknown ids.
func (s *Store) GetFollowUp(ctx context.Context, id string) (model.FollowUp, error) {
	var f model.FollowUp
	if err := s.db.GetContext(ctx, &f, `SELECT * FROM followups WHERE id = ?`, id); err != nil {
		if isNoRows(err) {
			return model.FollowUp{}, notFound("follow-up", id)
		}
		return model.FollowUp{}, fmt.Errorf("store: get follow-up: %w", err)
	}
	return f, nil
}

// ListFollowUps returns the active set by due date, oldest first.
func (s *Store) ListFollowUps(ctx context.Context) ([]model.FollowUp, error) {
	out := make([]model.FollowUp, 0)
	if err := s.db.SelectContext(ctx, &out, `SELECT * FROM followups ORDER BY due_at, created_at, id`); err != nil {
		return nil, fmt.Errorf("store: list follow-ups: %w", err)
	}
	return out, nil
}

// UpdateFollowUpDue changes the due date only.
func (s *Store) UpdateFollowUpDue(ctx context.Context, id string, due time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE followups SET due_at = ? WHERE id = ?`, utc(due), id)
	if err != nil {
		return fmt.Errorf("store: update follow-up due: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("follow-up", id)
	}
	return nil
}

// DeleteFollowUp removes a completed follow-up.
func (s *Store) DeleteFollowUp(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM followups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete follow-up: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("follow-up", id)
	}
	return nil
}

// Notifications

// InsertNotification stores n with its id as given.
func (s *Store) InsertNotification(ctx context.Context, n model.Notification) error {
	n.Timestamp = utc(n.Timestamp)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, type, title, message, timestamp, read, dedupe_key)
		VALUES (:id, :type, :title, :message, :timestamp, :read, :dedupe_key)`, n)
	if err != nil {
		return fmt.Errorf("store: insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the drawer newest first.
func (s *Store) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	out := make([]model.Notification, 0)
	if err := s.db.SelectContext(ctx, &out, `SELECT * FROM notifications ORDER BY timestamp DESC, id`); err != nil {
		return nil, fmt.Errorf("store: list notifications: %w", err)
	}
	return out, nil
}

// HasNotificationKey reports whether a notification with key was already stored.
func (s *Store) HasNotificationKey(ctx context.Context, key string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM notifications WHERE dedupe_key = ?`, key); err != nil {
		return false, fmt.Errorf("store: lookup notification key: %w", err)
	}
	return n > 0, nil
}

// MarkNotificationRead returns model.ErrNotFound for unknown ids.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: mark notification read: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("notification", id)
	}
	return nil
}

// MarkAllNotificationsRead reports how many were unread.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE read = 0`)
	if err != nil {
		return 0, fmt.Errorf("store: mark all notifications read: %w", err)
	}
	n, err := affected(res)
	return int(n), err
}
