package followup

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"dayos/internal/calendar"
	appLog "dayos/internal/log"
	"dayos/internal/model"
)

// Repository persists the active set. Delete and UpdateDue return
// ErrNotFound for unknown ids.
type Repository interface {
	InsertFollowUp(ctx context.Context, f model.FollowUp) error
	GetFollowUp(ctx context.Context, id string) (model.FollowUp, error)
	ListFollowUps(ctx context.Context) ([]model.FollowUp, error)
	UpdateFollowUpDue(ctx context.Context, id string, due time.Time) error
	DeleteFollowUp(ctx context.Context, id string) error
}

// Draft carries the fields a caller supplies when creating a follow-up.
type Draft struct {
	Person       string
	Organization string
	MeetingID    string
	MeetingTitle string
	MeetingDate  time.Time
	Priority     model.Priority
}

// Tracker owns the lifecycle Active -> Active (reschedule) and
// Active -> Completed (delete).
type Tracker struct {
	repo  Repository
	newID func() string
}

// NewTracker returns a Tracker over repo that assigns UUID ids.
func NewTracker(repo Repository) *Tracker {
	return &Tracker{
		repo:  repo,
		newID: func() string { return uuid.New().String() },
	}
}

// Create validates the choice against now before anything is stored.
func (t *Tracker) Create(ctx context.Context, d Draft, c Choice, now time.Time) (model.FollowUp, error) {
	if strings.TrimSpace(d.Person) == "" {
		return model.FollowUp{}, ErrPersonRequired
	}
	due, err := ResolveDueDate(c, now)
	if err != nil {
		return model.FollowUp{}, err
	}
	if d.Priority == 0 {
		d.Priority = model.PriorityMedium
	}

	f := model.FollowUp{
		ID:           t.newID(),
		Person:       d.Person,
		Organization: d.Organization,
		MeetingID:    d.MeetingID,
		MeetingTitle: d.MeetingTitle,
		MeetingDate:  d.MeetingDate,
		DueAt:        due,
		Priority:     d.Priority,
		CreatedAt:    now,
	}
	if err := t.repo.InsertFollowUp(ctx, f); err != nil {
		return model.FollowUp{}, err
	}

	appLog.Info("follow-up created", "id", f.ID, "person", f.Person, "due", f.DueAt.Format(time.RFC3339), "choice", c.String())
	return f, nil
}

// CreateFromMeeting copies who/what/when from the meeting that just ended.
func (t *Tracker) CreateFromMeeting(ctx context.Context, m model.Meeting, p model.Priority, c Choice, now time.Time) (model.FollowUp, error) {
	return t.Create(ctx, Draft{
		Person:       m.Person,
		Organization: m.Organization,
		MeetingID:    m.ID,
		MeetingTitle: m.Title,
		MeetingDate:  m.Start,
		Priority:     p,
	}, c, now)
}

// Reschedule replaces the due date only.
func (t *Tracker) Reschedule(ctx context.Context, id string, c Choice, now time.Time) (model.FollowUp, error) {
	f, err := t.repo.GetFollowUp(ctx, id)
	if err != nil {
		return model.FollowUp{}, err
	}
	due, err := ResolveDueDate(c, now)
	if err != nil {
		return model.FollowUp{}, err
	}
	if err := t.repo.UpdateFollowUpDue(ctx, id, due); err != nil {
		return model.FollowUp{}, err
	}
	f.DueAt = due

	appLog.Info("follow-up rescheduled", "id", id, "due", due.Format(time.RFC3339), "choice", c.String())
	return f, nil
}

// Complete removes the follow-up from the active set. There is no undo.
func (t *Tracker) Complete(ctx context.Context, id string) error {
	if err := t.repo.DeleteFollowUp(ctx, id); err != nil {
		return err
	}
	appLog.Info("follow-up completed", "id", id)
	return nil
}

// Active lists the active set by due date, earliest first.
func (t *Tracker) Active(ctx context.Context) ([]model.FollowUp, error) {
	items, err := t.repo.ListFollowUps(ctx)
	if err != nil {
		return nil, err
	}
	SortByDue(items)
	return items, nil
}

// ActiveOn is Active narrowed to one calendar day.
func (t *Tracker) ActiveOn(ctx context.Context, cal calendar.Calendar, day time.Time) ([]model.FollowUp, error) {
	items, err := t.Active(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.EventsOn(cal, day, items), nil
}

// SortByDue orders items by due date, keeping ties in their given order.
func SortByDue(items []model.FollowUp) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DueAt.Before(items[j].DueAt)
	})
}
