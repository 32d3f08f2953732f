package inbox

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dayos/internal/model"
)

// DefaultUpcoming is how many meetings the inbox header lists.
const DefaultUpcoming = 2

// FormatReceived renders how long ago an email arrived.
func FormatReceived(received, now time.Time) string {
	hours := int(now.Sub(received) / time.Hour)
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case hours < 48:
		return "Yesterday"
	}
	return received.Format("Jan 2")
}

// Upcoming returns the next meetings starting strictly after now, soonest
// first. limit <= 0 means DefaultUpcoming.
func Upcoming(meetings []model.Meeting, now time.Time, limit int) []model.Meeting {
	if limit <= 0 {
		limit = DefaultUpcoming
	}
	out := make([]model.Meeting, 0, limit)
	for _, m := range meetings {
		if m.Start.After(now) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Result holds what a search matched.
type Result struct {
	Emails   []model.Email
	Meetings []model.Meeting
}

// Empty reports whether neither emails nor meetings matched.
func (r Result) Empty() bool {
	return len(r.Emails) == 0 && len(r.Meetings) == 0
}

// Search matches query case-insensitively against the visible text of
// emails and meetings. A blank query matches everything.
func Search(query string, emails []model.Email, meetings []model.Meeting) Result {
	q := strings.ToLower(strings.TrimSpace(query))
	res := Result{
		Emails:   make([]model.Email, 0),
		Meetings: make([]model.Meeting, 0),
	}
	for _, e := range emails {
		if q == "" || containsAny(q, e.Sender, e.Organization, e.Subject, e.Preview) {
			res.Emails = append(res.Emails, e)
		}
	}
	for _, m := range meetings {
		if q == "" || containsAny(q, m.Title, m.Person, m.Organization) {
			res.Meetings = append(res.Meetings, m)
		}
	}
	return res
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// UnreadCount counts emails not yet read.
func UnreadCount(emails []model.Email) int {
	n := 0
	for _, e := range emails {
		if !e.Read {
			n++
		}
	}
	return n
}

// SortNewestFirst orders emails by arrival, most recent on top.
func SortNewestFirst(emails []model.Email) {
	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].ReceivedAt.After(emails[j].ReceivedAt)
	})
}
