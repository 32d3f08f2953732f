package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dayos/internal/calendar"
	"dayos/internal/followup"
	"dayos/internal/ics"
	appLog "dayos/internal/log"
	"dayos/internal/model"
)

type followUpDTO struct {
	model.FollowUp
	Remaining string `json:"remaining"`
	Overdue   bool   `json:"overdue"`
}

func toFollowUpDTOs(items []model.FollowUp, now time.Time) []followUpDTO {
	out := make([]followUpDTO, 0, len(items))
	for _, f := range items {
		rem := calendar.TimeRemaining(f.DueAt, now)
		out = append(out, followUpDTO{
			FollowUp:  f,
			Remaining: rem.String(),
			Overdue:   rem.Kind == calendar.Overdue,
		})
	}
	return out
}

type quickOffsetDTO struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
}

type followUpsResponse struct {
	FollowUps    []followUpDTO    `json:"follow_ups"`
	QuickOffsets []quickOffsetDTO `json:"quick_offsets"`
}

// handleFollowUps lists the active set by due date; ?date= narrows it to
// one day.
func (s *Server) handleFollowUps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()

	var (
		items []model.FollowUp
		err   error
	)
	if r.URL.Query().Get("date") != "" {
		day, derr := s.anchorDate(r, now)
		if derr != nil {
			writeError(w, http.StatusBadRequest, derr.Error())
			return
		}
		items, err = s.tracker.ActiveOn(ctx, s.cal, day)
	} else {
		items, err = s.tracker.Active(ctx)
	}
	if err != nil {
		writeDomainError(w, "list follow-ups", err)
		return
	}

	offsets := make([]quickOffsetDTO, 0, len(followup.QuickOffsets))
	for _, o := range followup.QuickOffsets {
		offsets = append(offsets, quickOffsetDTO{Days: int(o), Label: o.String()})
	}
	writeJSON(w, http.StatusOK, followUpsResponse{
		FollowUps:    toFollowUpDTOs(items, now),
		QuickOffsets: offsets,
	})
}

// createFollowUpRequest is the body of POST /api/followups. When MeetingID
// is set, person, organization and meeting fields come from that meeting.
type createFollowUpRequest struct {
	Person       string `json:"person"`
	Organization string `json:"organization"`
	MeetingID    string `json:"meeting_id"`
	MeetingTitle string `json:"meeting_title"`
	Priority     string `json:"priority"`
	// Due is "7", "7d", "1w", "YYYY-MM-DD" or an RFC 3339 instant.
	Due string `json:"due"`
}

func (s *Server) handleCreateFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()

	var req createFollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	choice, err := followup.ParseChoice(req.Due, s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var prio model.Priority
	if req.Priority != "" {
		if prio, err = model.ParsePriority(req.Priority); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var f model.FollowUp
	if req.MeetingID != "" {
		m, merr := s.store.GetMeeting(ctx, req.MeetingID)
		if merr != nil {
			writeDomainError(w, "follow-up meeting", merr)
			return
		}
		f, err = s.tracker.CreateFromMeeting(ctx, m, prio, choice, now)
	} else {
		f, err = s.tracker.Create(ctx, followup.Draft{
			Person:       req.Person,
			Organization: req.Organization,
			MeetingTitle: req.MeetingTitle,
			Priority:     prio,
		}, choice, now)
	}
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, "create follow-up", err)
		return
	}

	writeJSON(w, http.StatusCreated, toFollowUpDTOs([]model.FollowUp{f}, now)[0])
}

type rescheduleRequest struct {
	Due string `json:"due"`
}

func (s *Server) handleRescheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	now := s.clock()

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	choice, err := followup.ParseChoice(req.Due, s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := s.tracker.Reschedule(r.Context(), r.PathValue("id"), choice, now)
	if err != nil {
		writeDomainError(w, "reschedule follow-up", err)
		return
	}
	writeJSON(w, http.StatusOK, toFollowUpDTOs([]model.FollowUp{f}, now)[0])
}

func (s *Server) handleCompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Complete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, "complete follow-up", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFollowUpsICS serves the active set as a subscribable calendar.
func (s *Server) handleFollowUpsICS(w http.ResponseWriter, r *http.Request) {
	items, err := s.tracker.Active(r.Context())
	if err != nil {
		writeDomainError(w, "export follow-ups", err)
		return
	}

	var buf bytes.Buffer
	if err := ics.EncodeFollowUps(&buf, items, s.location(), s.clock()); err != nil {
		appLog.Error("follow-up ICS export failed", err, "count", len(items))
		writeError(w, http.StatusInternalServerError, "failed to encode calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="followups.ics"`)
	_, _ = w.Write(buf.Bytes())
}

func isValidation(err error) bool {
	return errors.Is(err, followup.ErrPersonRequired)
}
