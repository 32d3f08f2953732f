package web

import (
	"net/http"

	"dayos/internal/model"
	"dayos/internal/notify"
)

type notificationDTO struct {
	model.Notification
	Age      string `json:"age"`
	Conflict bool   `json:"conflict"`
}

type notificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
	Unread        int               `json:"unread"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.clock()

	items, err := s.center.List(ctx)
	if err != nil {
		writeDomainError(w, "list notifications", err)
		return
	}

	resp := notificationsResponse{Notifications: make([]notificationDTO, 0, len(items))}
	for _, n := range items {
		if !n.Read {
			resp.Unread++
		}
		resp.Notifications = append(resp.Notifications, notificationDTO{
			Notification: n,
			Age:          notify.FormatAge(n.Timestamp, now),
			Conflict:     n.HasConflict(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.center.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, "mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type readAllResponse struct {
	Marked int `json:"marked"`
}

func (s *Server) handleNotificationsReadAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.center.MarkAllRead(r.Context())
	if err != nil {
		writeDomainError(w, "mark all notifications read", err)
		return
	}
	writeJSON(w, http.StatusOK, readAllResponse{Marked: n})
}
