package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"dayos/internal/model"
)

//go:embed schema.sql
var schema string

// Store handles database operations for every DayOS entity.
type Store struct {
	db *sqlx.DB
}

// Open creates the parent directory if needed, opens the SQLite database
// at path and applies the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create db dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite serialises writers; one connection avoids "database is locked"
	// and keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func newID() string {
	return uuid.New().String()
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func notFound(what, id string) error {
	return fmt.Errorf("store: %s %q: %w", what, id, model.ErrNotFound)
}

func affected(res interface{ RowsAffected() (int64, error) }) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: rows affected: %w", err)
	}
	return n, nil
}

// Meetings

// InsertMeeting stores m, assigning an id when it has none.
func (s *Store) InsertMeeting(ctx context.Context, m model.Meeting) (model.Meeting, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	m.Start, m.End = utc(m.Start), utc(m.End)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO meetings (id, source_id, title, person, organization, location, start_at, end_at)
		VALUES (:id, :source_id, :title, :person, :organization, :location, :start_at, :end_at)`, m)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("store: insert meeting: %w", err)
	}
	return m, nil
}

// ListMeetings returns every meeting ordered by start time.
func (s *Store) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	out := make([]model.Meeting, 0)
	if err := s.db.SelectContext(ctx, &out, `SELECT * FROM meetings ORDER BY start_at, id`); err != nil {
		return nil, fmt.Errorf("store: list meetings: %w", err)
	}
	return out, nil
}

// ListMeetingsBetween returns meetings starting in [from, to).
func (s *Store) ListMeetingsBetween(ctx context.Context, from, to time.Time) ([]model.Meeting, error) {
	out := make([]model.Meeting, 0)
	err := s.db.SelectContext(ctx, &out,
		`SELECT * FROM meetings WHERE start_at >= ? AND start_at < ? ORDER BY start_at, id`,
		utc(from), utc(to))
	if err != nil {
		return nil, fmt.Errorf("store: list meetings between: %w", err)
	}
	return out, nil
}

// GetMeeting returns model.ErrNotFound for unknown ids.
func (s *Store) GetMeeting(ctx context.Context, id string) (model.Meeting, error) {
	var m model.Meeting
	if err := s.db.GetContext(ctx, &m, `SELECT * FROM meetings WHERE id = ?`, id); err != nil {
		if isNoRows(err) {
			return model.Meeting{}, notFound("meeting", id)
		}
		return model.Meeting{}, fmt.Errorf("store: get meeting: %w", err)
	}
	return m, nil
}

// ReplaceSourceMeetings swaps every meeting imported from sourceID for the
// given set in one transaction.
func (s *Store) ReplaceSourceMeetings(ctx context.Context, sourceID string, meetings []model.Meeting) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM meetings WHERE source_id = ?`, sourceID); err != nil {
		return fmt.Errorf("store: clear source meetings: %w", err)
	}
	for _, m := range meetings {
		m.SourceID = sourceID
		if m.ID == "" {
			m.ID = newID()
		}
		m.Start, m.End = utc(m.Start), utc(m.End)
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO meetings (id, source_id, title, person, organization, location, start_at, end_at)
			VALUES (:id, :source_id, :title, :person, :organization, :location, :start_at, :end_at)`, m)
		if err != nil {
			return fmt.Errorf("store: insert source meeting: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Emails

// InsertEmail stores e, assigning an id when it has none.
func (s *Store) InsertEmail(ctx context.Context, e model.Email) (model.Email, error) {
	if e.ID == "" {
		e.ID = newID()
	}
	e.ReceivedAt = utc(e.ReceivedAt)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO emails (id, sender, organization, subject, preview, received_at, read)
		VALUES (:id, :sender, :organization, :subject, :preview, :received_at, :read)`, e)
	if err != nil {
		return model.Email{}, fmt.Errorf("store: insert email: %w", err)
	}
	return e, nil
}

// ListEmails returns emails newest first.
func (s *Store) ListEmails(ctx context.Context) ([]model.Email, error) {
	out := make([]model.Email, 0)
	if err := s.db.SelectContext(ctx, &out, `SELECT * FROM emails ORDER BY received_at DESC, id`); err != nil {
		return nil, fmt.Errorf("store: list emails: %w", err)
	}
	return out, nil
}

// MarkEmailRead flips the read flag once; changed is false when the email
// was already read.
func (s *Store) MarkEmailRead(ctx context.Context, id string) (changed bool, err error) {
	var e model.Email
	if err := s.db.GetContext(ctx, &e, `SELECT * FROM emails WHERE id = ?`, id); err != nil {
		if isNoRows(err) {
			return false, notFound("email", id)
		}
		return false, fmt.Errorf("store: get email: %w", err)
	}
	if !e.MarkRead() {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE emails SET read = 1 WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("store: mark email read: %w", err)
	}
	return true, nil
}
