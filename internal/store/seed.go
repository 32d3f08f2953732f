package store

import (
	"context"
	"fmt"
	"time"

	appLog "dayos/internal/log"
	"dayos/internal/model"
)

// Seed loads the demo data set, placed relative to now so the views always
// have something today, tomorrow and later in the week.
func (s *Store) Seed(ctx context.Context, now time.Time) error {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	at := func(offsetDays, hour, minute int) time.Time {
		return day.AddDate(0, 0, offsetDays).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	meetings := []model.Meeting{
		{Title: "Weekly Sync with Design Team", Person: "Priya Patel", Organization: "Design", Start: now.Add(5 * time.Minute), End: now.Add(50 * time.Minute)},
		{Title: "Product Roadmap Review", Person: "James Wilson", Organization: "Orion Labs", Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour)},
		{Title: "Design Sync", Person: "Priya Patel", Organization: "Design", Start: at(1, 10, 30), End: at(1, 11, 15)},
		{Title: "Product Review", Person: "Alex Chen", Organization: "Northwind", Start: at(1, 14, 0), End: at(1, 15, 30)},
		{Title: "Strategy Sync", Person: "Sarah Miller", Organization: "Acme Corp", Start: at(1, 15, 0), End: at(1, 16, 0)},
		{Title: "Client call", Person: "Dana Brooks", Organization: "Globex", Start: at(3, 9, 0), End: at(3, 9, 45)},
		{Title: "Q1 Planning", Person: "Alex Chen", Organization: "Northwind", Start: at(-2, 13, 0), End: at(-2, 14, 0)},
	}
	for _, m := range meetings {
		if _, err := s.InsertMeeting(ctx, m); err != nil {
			return fmt.Errorf("seed meetings: %w", err)
		}
	}

	emails := []model.Email{
		{Sender: "Sarah Miller", Organization: "Acme Corp", Subject: "Confirm budget for Q3 marketing campaign", Preview: "Decision needed by EOD.", ReceivedAt: now.Add(-20 * time.Minute)},
		{Sender: "James Wilson", Organization: "Orion Labs", Subject: "Follow up: Project Orion Feedback", Preview: "Thanks for the notes yesterday.", ReceivedAt: now.Add(-26 * time.Hour)},
		{Sender: "Dev Team", Subject: "Review technical specs for API v2", Preview: "Specs are in the shared folder.", ReceivedAt: now.Add(-3 * time.Hour)},
		{Sender: "Substack", Subject: "Monthly Newsletter: Tech Trends", Preview: "This month in tech.", ReceivedAt: now.Add(-72 * time.Hour), Read: true},
		{Sender: "HR", Subject: "Company-wide social next Friday", Preview: "Save the date.", ReceivedAt: now.Add(-5 * 24 * time.Hour), Read: true},
	}
	for _, e := range emails {
		if _, err := s.InsertEmail(ctx, e); err != nil {
			return fmt.Errorf("seed emails: %w", err)
		}
	}

	followUps := []model.FollowUp{
		{Person: "Priya Patel", Organization: "Design", MeetingTitle: "Design Sync", MeetingDate: at(-1, 10, 30), DueAt: now.Add(2 * time.Hour), Priority: model.PriorityHigh},
		{Person: "Alex Chen", Organization: "Northwind", MeetingTitle: "Q1 Planning", MeetingDate: at(-2, 13, 0), DueAt: now.Add(-time.Hour), Priority: model.PriorityMedium},
		{Person: "Team", Organization: "Engineering", MeetingTitle: "Sprint planning", MeetingDate: at(-5, 9, 0), DueAt: at(3, 9, 0), Priority: model.PriorityLow},
		{Person: "Finance", Organization: "Acme Corp", MeetingTitle: "Q1 budget proposals", MeetingDate: at(-3, 11, 0), DueAt: at(9, 9, 0), Priority: model.PriorityMedium},
	}
	for _, f := range followUps {
		f.ID = newID()
		f.CreatedAt = now
		if err := s.InsertFollowUp(ctx, f); err != nil {
			return fmt.Errorf("seed follow-ups: %w", err)
		}
	}

	notifications := []model.Notification{
		{Type: model.NotificationMeeting, Title: "Strategy Sync", Message: "Starting in 10m", Timestamp: now.Add(-2 * time.Minute)},
		{Type: model.NotificationFollowUp, Title: "Review API Docs", Message: "Overdue", Timestamp: now.Add(-40 * time.Minute)},
		{Type: model.NotificationReply, Title: "Sarah Miller", Message: "Replied to \"Confirm budget for Q3 marketing campaign\"", Timestamp: now.Add(-2 * time.Hour)},
		{Type: model.NotificationDeadline, Title: "Project Orion", Message: "Feedback due tomorrow", Timestamp: now.Add(-26 * time.Hour), Read: true},
	}
	for _, n := range notifications {
		n.ID = newID()
		if err := s.InsertNotification(ctx, n); err != nil {
			return fmt.Errorf("seed notifications: %w", err)
		}
	}

	appLog.Info("seeded demo data",
		"meetings", len(meetings),
		"emails", len(emails),
		"follow_ups", len(followUps),
		"notifications", len(notifications),
	)
	return nil
}
