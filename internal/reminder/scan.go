// Package reminder turns the stored schedule into notifications on a cron
// cadence and keeps imported ICS meetings fresh.
package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"dayos/internal/calendar"
	"dayos/internal/followup"
	appLog "dayos/internal/log"
	"dayos/internal/model"
	"dayos/internal/notify"
)

// MeetingSource lists meetings whose start falls in [from, to).
type MeetingSource interface {
	ListMeetingsBetween(ctx context.Context, from, to time.Time) ([]model.Meeting, error)
}

// Scanner looks at follow-ups and today's meetings and pushes notifications
// for anything that needs attention. Every push carries a dedupe key, so
// running Scan repeatedly is safe.
type Scanner struct {
	Calendar  calendar.Calendar
	Meetings  MeetingSource
	FollowUps *followup.Tracker
	Center    *notify.Center
	// Lead is how far ahead a meeting triggers a "starting soon" reminder.
	Lead time.Duration
}

// Scan runs one pass at now and reports how many notifications were stored.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (int, error) {
	pushed := 0

	n, err := s.scanFollowUps(ctx, now)
	pushed += n
	if err != nil {
		return pushed, err
	}

	dayStart := s.Calendar.StartOfDay(now)
	meetings, err := s.Meetings.ListMeetingsBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return pushed, fmt.Errorf("reminder: list meetings: %w", err)
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Start.Before(meetings[j].Start)
	})

	n, err = s.scanUpcoming(ctx, meetings, now)
	pushed += n
	if err != nil {
		return pushed, err
	}

	n, err = s.scanOverlaps(ctx, meetings, now)
	pushed += n
	if err != nil {
		return pushed, err
	}

	appLog.Debug("reminder scan done", "pushed", pushed, "meetings_today", len(meetings))
	return pushed, nil
}

func (s *Scanner) scanFollowUps(ctx context.Context, now time.Time) (int, error) {
	items, err := s.FollowUps.Active(ctx)
	if err != nil {
		return 0, fmt.Errorf("reminder: list follow-ups: %w", err)
	}

	dayKey := s.Calendar.StartOfDay(now).Format("2006-01-02")
	pushed := 0
	for _, f := range items {
		var n model.Notification
		switch calendar.TimeRemaining(f.DueAt, now).Kind {
		case calendar.Overdue:
			n = model.Notification{
				Type:    model.NotificationDeadline,
				Title:   "Follow-up Overdue",
				Message: fmt.Sprintf("Follow up with %s was due %s", who(f), s.Calendar.StartOfDay(f.DueAt).Format("Jan 2")),
				Key:     "deadline:" + f.ID + ":" + dayKey,
			}
		case calendar.Today:
			n = model.Notification{
				Type:    model.NotificationFollowUp,
				Title:   "Follow-up Due Today",
				Message: fmt.Sprintf("Follow up with %s about %q", who(f), topic(f)),
				Key:     "followup:" + f.ID + ":" + dayKey,
			}
		default:
			continue
		}
		n.Timestamp = now
		ok, err := s.Center.Push(ctx, n)
		if err != nil {
			return pushed, err
		}
		if ok {
			pushed++
		}
	}
	return pushed, nil
}

// scanUpcoming expects meetings sorted by start.
func (s *Scanner) scanUpcoming(ctx context.Context, meetings []model.Meeting, now time.Time) (int, error) {
	pushed := 0
	for _, m := range meetings {
		until := m.Start.Sub(now)
		if until < 0 {
			continue
		}
		if until > s.Lead {
			break
		}
		when := startsIn(until)
		msg := fmt.Sprintf("%q %s", m.Title, when)
		if m.Person != "" {
			msg = fmt.Sprintf("%q with %s %s", m.Title, m.Person, when)
		}
		ok, err := s.Center.Push(ctx, model.Notification{
			Type:      model.NotificationMeeting,
			Title:     "Meeting Starting Soon",
			Message:   msg,
			Timestamp: now,
			Key:       "meeting:" + m.ID,
		})
		if err != nil {
			return pushed, err
		}
		if ok {
			pushed++
		}
	}
	return pushed, nil
}

// scanOverlaps expects meetings sorted by start.
func (s *Scanner) scanOverlaps(ctx context.Context, meetings []model.Meeting, now time.Time) (int, error) {
	pushed := 0
	for i := range meetings {
		for j := i + 1; j < len(meetings); j++ {
			if !meetings[j].Start.Before(meetings[i].End) {
				break
			}
			if !meetings[i].Overlaps(meetings[j]) {
				continue
			}
			ok, err := s.Center.Push(ctx, model.Notification{
				Type:      model.NotificationMeeting,
				Title:     "Schedule Conflict",
				Message:   model.OverlapMessage(meetings[i], meetings[j]),
				Timestamp: now,
				Key:       "overlap:" + meetings[i].ID + "|" + meetings[j].ID,
			})
			if err != nil {
				return pushed, err
			}
			if ok {
				pushed++
			}
		}
	}
	return pushed, nil
}

// startsIn rounds up to whole minutes; under a minute reads "starting now".
func startsIn(until time.Duration) string {
	if until < time.Minute {
		return "starting now"
	}
	return fmt.Sprintf("starts in %dm", int((until+time.Minute-1)/time.Minute))
}

func who(f model.FollowUp) string {
	if f.Organization == "" {
		return f.Person
	}
	return f.Person + " (" + f.Organization + ")"
}

func topic(f model.FollowUp) string {
	if f.MeetingTitle == "" {
		return "your last conversation"
	}
	return f.MeetingTitle
}
