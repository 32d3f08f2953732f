package web

import (
	"context"
	"net/http"
	"time"

	"dayos/internal/calendar"
	"dayos/internal/model"
)

const dateLayout = "2006-01-02"

// weekDayDTO is one column of the week strip.
type weekDayDTO struct {
	Date          string          `json:"date"`
	Weekday       string          `json:"weekday"`
	Weekend       bool            `json:"weekend"`
	Today         bool            `json:"today"`
	Meetings      []model.Meeting `json:"meetings"`
	Overflow      int             `json:"overflow"`
	FollowUpCount int             `json:"follow_up_count"`
}

type weekResponse struct {
	Start     string       `json:"start"`
	Timezone  string       `json:"timezone"`
	WeekStart string       `json:"week_start"`
	Days      []weekDayDTO `json:"days"`
}

// handleWeek returns the 7-day window containing ?date= with at most two
// meetings per day and the count folded away.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()
	anchor, err := s.anchorDate(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days := s.cal.WeekWindow(anchor)
	meetings, err := s.store.ListMeetingsBetween(ctx, days[0], days[len(days)-1].AddDate(0, 0, 1))
	if err != nil {
		writeDomainError(w, "week meetings", err)
		return
	}
	followUps, err := s.tracker.Active(ctx)
	if err != nil {
		writeDomainError(w, "week follow-ups", err)
		return
	}

	meetingBuckets := calendar.Bucket(s.cal, days, meetings)
	followUpBuckets := calendar.Bucket(s.cal, days, followUps)

	resp := weekResponse{
		Start:     days[0].Format(dateLayout),
		Timezone:  s.location().String(),
		WeekStart: s.cal.WeekStart.String(),
		Days:      make([]weekDayDTO, 0, len(days)),
	}
	for i, d := range days {
		visible, overflow := calendar.Overflow(len(meetingBuckets[i]))
		resp.Days = append(resp.Days, weekDayDTO{
			Date:          d.Format(dateLayout),
			Weekday:       d.Weekday().String(),
			Weekend:       calendar.IsWeekend(d),
			Today:         s.cal.IsToday(d, now),
			Meetings:      meetingBuckets[i][:visible],
			Overflow:      overflow,
			FollowUpCount: len(followUpBuckets[i]),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type monthDayDTO struct {
	Date    string          `json:"date"`
	Weekday string          `json:"weekday"`
	Weekend bool            `json:"weekend"`
	Today   bool            `json:"today"`
	Items   []calendar.Item `json:"items"`
}

type monthResponse struct {
	Month         string        `json:"month"`
	LeadingBlanks int           `json:"leading_blanks"`
	Days          []monthDayDTO `json:"days"`
}

// handleMonth returns every day of the month of ?date= with its meetings,
// follow-ups and emails ordered meeting, follow-up, email.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()
	anchor, err := s.anchorDate(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid := s.cal.MonthGrid(anchor)
	dates := make([]time.Time, len(grid))
	for i, d := range grid {
		dates[i] = d.Date
	}

	items, err := s.monthItems(ctx, dates[0], dates[len(dates)-1].AddDate(0, 0, 1))
	if err != nil {
		writeDomainError(w, "month items", err)
		return
	}
	buckets := calendar.Bucket(s.cal, dates, items)

	resp := monthResponse{
		Month:         s.cal.StartOfMonth(anchor).Format("2006-01"),
		LeadingBlanks: s.cal.LeadingBlanks(anchor),
		Days:          make([]monthDayDTO, 0, len(grid)),
	}
	for i, d := range grid {
		cell := buckets[i]
		calendar.SortByKind(cell)
		resp.Days = append(resp.Days, monthDayDTO{
			Date:    d.Date.Format(dateLayout),
			Weekday: d.Weekday.String(),
			Weekend: d.Weekend,
			Today:   s.cal.IsToday(d.Date, now),
			Items:   cell,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// monthItems flattens meetings, follow-ups and emails in [from, to) into
// cell items.
func (s *Server) monthItems(ctx context.Context, from, to time.Time) ([]calendar.Item, error) {
	meetings, err := s.store.ListMeetingsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	followUps, err := s.tracker.Active(ctx)
	if err != nil {
		return nil, err
	}
	emails, err := s.store.ListEmails(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]calendar.Item, 0, len(meetings)+len(followUps)+len(emails))
	for _, m := range meetings {
		items = append(items, calendar.Item{Kind: model.KindMeeting, ID: m.ID, Title: m.Title, At: m.Start})
	}
	for _, f := range followUps {
		items = append(items, calendar.Item{Kind: model.KindFollowUp, ID: f.ID, Title: f.Person, At: f.DueAt})
	}
	for _, e := range emails {
		items = append(items, calendar.Item{Kind: model.KindEmail, ID: e.ID, Title: e.Subject, At: e.ReceivedAt})
	}
	return items, nil
}

type dayResponse struct {
	Date      string          `json:"date"`
	Weekend   bool            `json:"weekend"`
	Today     bool            `json:"today"`
	Meetings  []model.Meeting `json:"meetings"`
	FollowUps []followUpDTO   `json:"follow_ups"`
}

// handleDay returns the meetings and follow-ups on ?date=.
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()
	anchor, err := s.anchorDate(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := s.cal.StartOfDay(anchor)
	meetings, err := s.store.ListMeetingsBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		writeDomainError(w, "day meetings", err)
		return
	}
	followUps, err := s.tracker.ActiveOn(ctx, s.cal, start)
	if err != nil {
		writeDomainError(w, "day follow-ups", err)
		return
	}

	writeJSON(w, http.StatusOK, dayResponse{
		Date:      start.Format(dateLayout),
		Weekend:   calendar.IsWeekend(start),
		Today:     s.cal.IsToday(start, now),
		Meetings:  meetings,
		FollowUps: toFollowUpDTOs(followUps, now),
	})
}

type navigateResponse struct {
	Date string `json:"date"`
}

// handleNavigate moves ?date= one week or one day back or forward.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	now := s.clock()
	anchor, err := s.anchorDate(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	unit, err := calendar.ParseUnit(q.Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := calendar.ParseDirection(q.Get("dir"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	next := calendar.Advance(anchor, unit, dir)
	writeJSON(w, http.StatusOK, navigateResponse{Date: next.In(s.location()).Format(dateLayout)})
}
