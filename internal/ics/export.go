package ics

import (
	"io"
	"time"

	goical "github.com/emersion/go-ical"

	"dayos/internal/model"
)

const productID = "-//DayOS//Follow-ups//EN"

// EncodeFollowUps writes the active follow-ups as a VCALENDAR so they can be
// subscribed to from any calendar client. Each follow-up becomes an all-day
// VEVENT on its due date in loc. The calendar always carries a VTIMEZONE
// for loc, so an empty active set still encodes as a valid feed.
func EncodeFollowUps(w io.Writer, followUps []model.FollowUp, loc *time.Location, now time.Time) error {
	if loc == nil {
		loc = time.Local
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", "DayOS follow-ups")
	cal.Props.SetText("X-WR-TIMEZONE", loc.String())
	cal.Children = append(cal.Children, timezone(loc, now))

	for _, f := range followUps {
		due := f.DueAt.In(loc)
		day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc)

		ev := goical.NewEvent()
		ev.Props.SetText(goical.PropUID, f.ID+"@dayos")
		ev.Props.SetDateTime(goical.PropDateTimeStamp, now.UTC())
		ev.Props.SetDate(goical.PropDateTimeStart, day)
		ev.Props.SetDate(goical.PropDateTimeEnd, day.AddDate(0, 0, 1))
		ev.Props.SetText(goical.PropSummary, "Follow up: "+f.Person)
		ev.Props.SetText(goical.PropDescription, description(f))
		ev.Props.SetText(goical.PropPriority, icsPriority(f.Priority))
		if f.Organization != "" {
			ev.Props.SetText(goical.PropCategories, f.Organization)
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	return goical.NewEncoder(w).Encode(cal)
}

// timezone describes loc with the offset in effect at now. Follow-up events
// are all-day dates, so no event time depends on later transitions.
func timezone(loc *time.Location, now time.Time) *goical.Component {
	offset := now.In(loc).Format("-0700")

	std := &goical.Component{Name: goical.CompTimezoneStandard, Props: make(goical.Props)}
	std.Props.Set(rawProp(goical.PropDateTimeStart, "19700101T000000"))
	std.Props.Set(rawProp(goical.PropTimezoneOffsetFrom, offset))
	std.Props.Set(rawProp(goical.PropTimezoneOffsetTo, offset))

	tz := &goical.Component{Name: goical.CompTimezone, Props: make(goical.Props)}
	tz.Props.SetText(goical.PropTimezoneID, loc.String())
	tz.Children = append(tz.Children, std)
	return tz
}

// rawProp sets a value already in its iCalendar wire form.
func rawProp(name, value string) *goical.Prop {
	p := goical.NewProp(name)
	p.Value = value
	return p
}

func description(f model.FollowUp) string {
	if f.MeetingTitle == "" {
		return "Priority: " + f.Priority.String()
	}
	return "From: " + f.MeetingTitle + "\nPriority: " + f.Priority.String()
}

// icsPriority maps onto RFC 5545 PRIORITY: 1 highest, 9 lowest.
func icsPriority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "1"
	case model.PriorityMedium:
		return "5"
	case model.PriorityLow:
		return "9"
	}
	return "0"
}
