package reminder

import (
	"context"
	"time"

	"dayos/internal/calendar"
	"dayos/internal/ics"
	appLog "dayos/internal/log"
	"dayos/internal/model"
)

// MeetingWriter swaps the imported meeting set of one source.
type MeetingWriter interface {
	ReplaceSourceMeetings(ctx context.Context, sourceID string, meetings []model.Meeting) error
}

// Refresher imports subscribed ICS feeds into the store.
type Refresher struct {
	Calendar    calendar.Calendar
	Fetcher     *ics.Fetcher
	Sources     []ics.Source
	Store       MeetingWriter
	HorizonDays int
}

// Refresh expands every feed from the start of the current week up to
// HorizonDays ahead and replaces each source's meetings. Sources that fail
// keep their previous meetings.
func (r *Refresher) Refresh(ctx context.Context, now time.Time) error {
	if len(r.Sources) == 0 {
		return nil
	}
	horizon := r.HorizonDays
	if horizon <= 0 {
		horizon = 35
	}

	cfg := ics.ExpandConfig{
		DisplayLocation: r.Calendar.Loc,
		RangeStart:      r.Calendar.StartOfWeek(now),
		RangeEnd:        r.Calendar.StartOfDay(now).AddDate(0, 0, horizon),
	}

	loaded, loadErr := ics.LoadMeetings(ctx, r.Fetcher, r.Sources, cfg)
	for _, sm := range loaded {
		if err := r.Store.ReplaceSourceMeetings(ctx, sm.Source.ID, sm.Meetings); err != nil {
			appLog.Error("meeting import failed", err, "source", sm.Source.ID)
			return err
		}
	}
	appLog.Info("ics refresh done", "sources", len(r.Sources), "imported", len(loaded))
	return loadErr
}
