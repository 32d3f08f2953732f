package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "dayos/internal/log"
	"dayos/internal/model"
)

const defaultMaxOccurrencesPerEvent = 500

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the zone meetings are converted into. If nil,
	// time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means
	// defaultMaxOccurrencesPerEvent.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded meetings and the UIDs that hit the cap.
type ExpandResult struct {
	Meetings        []model.Meeting
	TruncatedEvents []string
}

// ExpandMeetings turns parsed events into concrete meetings inside the
// configured window. It handles single events, RRULE recurrence, EXDATE
// removal and RECURRENCE-ID overrides. Cancelled events and all-day
// entries (holidays, out-of-office blocks) are not meetings and are dropped.
func ExpandMeetings(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("ics: expand range end is before range start")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID, keeping first-seen order so
	// output is deterministic.
	var uids []string
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)

	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	meetings := make([]model.Meeting, 0)
	for _, uid := range uids {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			meetings = append(meetings, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("ics expand: occurrences truncated", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	result.Meetings = meetings
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Meeting, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Meeting {
	start, end := ev.Start, ev.End
	if o, ok := findOverrideForStart(overrides, start); ok {
		ev, start, end = o, o.Start, o.End
	}
	if !timeRangesOverlap(start, end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	if m, ok := makeMeeting(ev, start, end, cfg.DisplayLocation); ok {
		return []model.Meeting{m}
	}
	return nil
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Meeting, bool) {
	out := make([]model.Meeting, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())
	occTimes := set.Between(rangeStart, rangeEnd, true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)
	for _, occStart := range occTimes {
		baseEv, start, end := ev, occStart, occStart.Add(dur)
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			baseEv, start, end = o, o.Start, o.End
		}
		if m, ok := makeMeeting(baseEv, start, end, cfg.DisplayLocation); ok {
			out = append(out, m)
		}
	}

	return out, hitCap
}

// findOverrideForStart finds the override whose RECURRENCE-ID equals start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeMeeting converts one occurrence into a meeting in displayLoc. The
// meeting ID is the UID plus the occurrence start, stable across refreshes.
func makeMeeting(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) (model.Meeting, bool) {
	if ev.Cancelled || ev.AllDay {
		return model.Meeting{}, false
	}
	startLocal := start.In(displayLoc)
	m := model.Meeting{
		ID:           ev.UID + "@" + startLocal.UTC().Format(time.RFC3339),
		SourceID:     ev.Source.ID,
		Title:        ev.Summary,
		Person:       ev.Person,
		Organization: ev.Organization,
		Location:     ev.Location,
		Start:        startLocal,
		End:          end.In(displayLoc),
	}
	return m, true
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
