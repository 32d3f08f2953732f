package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidMeeting = errors.New("model: meeting ends before it starts")
	// ErrNotFound is shared by every repository so callers can use errors.Is
	// without knowing which store answered.
	ErrNotFound = errors.New("not found")
)

// Meeting is a single concrete calendar entry, either created locally or
// expanded from an ICS occurrence.
type Meeting struct {
	ID string `db:"id" json:"id"`
	// SourceID is the ICS source the meeting was imported from; empty for
	// locally created meetings.
	SourceID string `db:"source_id" json:"source_id,omitempty"`

	Title        string `db:"title" json:"title"`
	Person       string `db:"person" json:"person"`
	Organization string `db:"organization" json:"organization"`
	Location     string `db:"location" json:"location,omitempty"`

	Start time.Time `db:"start_at" json:"start"`
	End   time.Time `db:"end_at" json:"end"`
}

// NewMeeting validates Start <= End.
func NewMeeting(id, title, person, org string, start, end time.Time) (Meeting, error) {
	if end.Before(start) {
		return Meeting{}, ErrInvalidMeeting
	}
	return Meeting{
		ID:           id,
		Title:        title,
		Person:       person,
		Organization: org,
		Start:        start,
		End:          end,
	}, nil
}

func (m Meeting) When() time.Time { return m.Start }

// Overlaps reports whether two meetings share any instant. Touching
// boundaries (one ends exactly when the other starts) do not overlap.
func (m Meeting) Overlaps(o Meeting) bool {
	return m.Start.Before(o.End) && o.Start.Before(m.End)
}

// Email is one message in the inbox view.
type Email struct {
	ID           string    `db:"id" json:"id"`
	Sender       string    `db:"sender" json:"sender"`
	Organization string    `db:"organization" json:"organization,omitempty"`
	Subject      string    `db:"subject" json:"subject"`
	Preview      string    `db:"preview" json:"preview"`
	ReceivedAt   time.Time `db:"received_at" json:"received_at"`
	Read         bool      `db:"read" json:"read"`
}

func (e Email) When() time.Time { return e.ReceivedAt }

// MarkRead flips the read flag. It reports false when the email was
// already read, so callers can skip persisting a no-op.
func (e *Email) MarkRead() bool {
	if e.Read {
		return false
	}
	e.Read = true
	return true
}

// FollowUp is an active reminder to get back to someone. Completed
// follow-ups are deleted rather than flagged.
type FollowUp struct {
	ID           string    `db:"id" json:"id"`
	Person       string    `db:"person" json:"person"`
	Organization string    `db:"organization" json:"organization"`
	MeetingID    string    `db:"meeting_id" json:"meeting_id,omitempty"`
	MeetingTitle string    `db:"meeting_title" json:"meeting_title"`
	MeetingDate  time.Time `db:"meeting_date" json:"meeting_date"`
	DueAt        time.Time `db:"due_at" json:"due_at"`
	Priority     Priority  `db:"priority" json:"priority"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (f FollowUp) When() time.Time { return f.DueAt }

// Notification is one entry of the notification drawer.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Timestamp time.Time        `db:"timestamp" json:"timestamp"`
	Read      bool             `db:"read" json:"read"`
	// Key deduplicates generated notifications; empty for manual ones.
	Key string `db:"dedupe_key" json:"-"`
}

const overlapMarker = "Meeting Overlap"

// HasConflict marks meeting notifications raised for overlapping meetings.
func (n Notification) HasConflict() bool {
	return n.Type == NotificationMeeting && strings.Contains(n.Message, overlapMarker)
}

// OverlapMessage builds the message body HasConflict recognises.
func OverlapMessage(a, b Meeting) string {
	return overlapMarker + ": \"" + a.Title + "\" and \"" + b.Title + "\""
}
