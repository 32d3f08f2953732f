package web

import (
	"net/http"

	"dayos/internal/inbox"
	"dayos/internal/model"
)

type emailDTO struct {
	model.Email
	ReceivedLabel string `json:"received_label"`
}

type inboxResponse struct {
	Query    string          `json:"query,omitempty"`
	Emails   []emailDTO      `json:"emails"`
	Meetings []model.Meeting `json:"meetings"`
	Upcoming []model.Meeting `json:"upcoming"`
	Unread   int             `json:"unread"`
	Empty    bool            `json:"empty"`
}

// handleInbox lists emails newest first with the next meetings on top.
//
// GET /api/inbox?q=acme&upcoming=2
//   - q:        case-insensitive filter over emails and meetings
//   - upcoming: how many upcoming meetings to include (default 2)
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()
	q := r.URL.Query()

	emails, err := s.store.ListEmails(ctx)
	if err != nil {
		writeDomainError(w, "inbox emails", err)
		return
	}
	meetings, err := s.store.ListMeetings(ctx)
	if err != nil {
		writeDomainError(w, "inbox meetings", err)
		return
	}
	inbox.SortNewestFirst(emails)

	res := inbox.Search(q.Get("q"), emails, meetings)
	dtos := make([]emailDTO, 0, len(res.Emails))
	for _, e := range res.Emails {
		dtos = append(dtos, emailDTO{
			Email:         e,
			ReceivedLabel: inbox.FormatReceived(e.ReceivedAt.In(s.location()), now),
		})
	}

	writeJSON(w, http.StatusOK, inboxResponse{
		Query:    q.Get("q"),
		Emails:   dtos,
		Meetings: res.Meetings,
		Upcoming: inbox.Upcoming(meetings, now, parseIntDefault(q.Get("upcoming"), inbox.DefaultUpcoming)),
		Unread:   inbox.UnreadCount(emails),
		Empty:    res.Empty(),
	})
}

type emailReadResponse struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
}

func (s *Server) handleEmailRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	changed, err := s.store.MarkEmailRead(r.Context(), id)
	if err != nil {
		writeDomainError(w, "mark email read", err)
		return
	}
	writeJSON(w, http.StatusOK, emailReadResponse{ID: id, Changed: changed})
}
