package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"dayos/internal/calendar"
	appLog "dayos/internal/log"
)

//go:embed templates/agenda.html
var templatesFS embed.FS

var agendaTmpl = template.Must(template.ParseFS(templatesFS, "templates/agenda.html"))

type agendaMeeting struct {
	Time  string
	Title string
}

type agendaDay struct {
	Label     string
	Weekend   bool
	Today     bool
	Meetings  []agendaMeeting
	Overflow  int
	FollowUps int
}

type agendaPage struct {
	Start     string
	Days      []agendaDay
	FollowUps []followUpDTO
}

// handleAgenda renders the week of ?date= as a static page. The root element
// carries data-ready="true" so headless capture knows when to shoot.
func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()
	anchor, err := s.anchorDate(r, now)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days := s.cal.WeekWindow(anchor)
	meetings, err := s.store.ListMeetingsBetween(ctx, days[0], days[len(days)-1].AddDate(0, 0, 1))
	if err != nil {
		appLog.Error("agenda meetings failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	followUps, err := s.tracker.Active(ctx)
	if err != nil {
		appLog.Error("agenda follow-ups failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	meetingBuckets := calendar.Bucket(s.cal, days, meetings)
	followUpBuckets := calendar.Bucket(s.cal, days, followUps)

	page := agendaPage{
		Start:     days[0].Format("Jan 2, 2006"),
		FollowUps: toFollowUpDTOs(followUps, now),
	}
	for i, d := range days {
		visible, overflow := calendar.Overflow(len(meetingBuckets[i]))
		day := agendaDay{
			Label:     d.Format("Mon 2"),
			Weekend:   calendar.IsWeekend(d),
			Today:     s.cal.IsToday(d, now),
			Overflow:  overflow,
			FollowUps: len(followUpBuckets[i]),
		}
		for _, m := range meetingBuckets[i][:visible] {
			day.Meetings = append(day.Meetings, agendaMeeting{
				Time:  m.Start.In(s.location()).Format("15:04"),
				Title: m.Title,
			})
		}
		page.Days = append(page.Days, day)
	}

	var buf bytes.Buffer
	if err := agendaTmpl.Execute(&buf, page); err != nil {
		appLog.Error("agenda render failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleAgendaPNG serves the last PNG written by `dayos snapshot`.
// http.ServeFile answers 404 for a missing file and 304 for a fresh
// If-Modified-Since.
func (s *Server) handleAgendaPNG(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil || s.cfg.SnapshotPath == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.cfg.SnapshotPath)
}
