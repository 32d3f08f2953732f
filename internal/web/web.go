package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dayos/internal/calendar"
	"dayos/internal/config"
	"dayos/internal/followup"
	appLog "dayos/internal/log"
	"dayos/internal/model"
	"dayos/internal/notify"
)

// Store is the read side the HTTP layer needs beyond the tracker and the
// notification center.
type Store interface {
	ListMeetings(ctx context.Context) ([]model.Meeting, error)
	ListMeetingsBetween(ctx context.Context, from, to time.Time) ([]model.Meeting, error)
	GetMeeting(ctx context.Context, id string) (model.Meeting, error)
	ListEmails(ctx context.Context) ([]model.Email, error)
	MarkEmailRead(ctx context.Context, id string) (bool, error)
}

// Deps wires the server to the domain services.
type Deps struct {
	Calendar calendar.Calendar
	Store    Store
	Tracker  *followup.Tracker
	Center   *notify.Center
	// Clock is read once per request. Nil means time.Now.
	Clock func() time.Time
}

// Server provides the JSON API for calendar, inbox, follow-ups and
// notifications, plus the printable agenda page.
type Server struct {
	cfg     *config.Config
	cal     calendar.Calendar
	store   Store
	tracker *followup.Tracker
	center  *notify.Center
	clock   func() time.Time
	mux     *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	s := &Server{
		cfg:     cfg,
		cal:     deps.Calendar,
		store:   deps.Store,
		tracker: deps.Tracker,
		center:  deps.Center,
		clock:   deps.Clock,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth rather than locking everyone out.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="DayOS", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ListenAndServe serves on cfg.Listen until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/calendar/week", s.handleWeek)
	s.mux.HandleFunc("GET /api/calendar/month", s.handleMonth)
	s.mux.HandleFunc("GET /api/calendar/day", s.handleDay)
	s.mux.HandleFunc("GET /api/calendar/navigate", s.handleNavigate)

	s.mux.HandleFunc("GET /api/inbox", s.handleInbox)
	s.mux.HandleFunc("POST /api/emails/{id}/read", s.handleEmailRead)

	s.mux.HandleFunc("GET /api/followups", s.handleFollowUps)
	s.mux.HandleFunc("POST /api/followups", s.handleCreateFollowUp)
	s.mux.HandleFunc("POST /api/followups/{id}/reschedule", s.handleRescheduleFollowUp)
	s.mux.HandleFunc("POST /api/followups/{id}/complete", s.handleCompleteFollowUp)
	s.mux.HandleFunc("GET /api/followups.ics", s.handleFollowUpsICS)

	s.mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	s.mux.HandleFunc("POST /api/notifications/read-all", s.handleNotificationsReadAll)
	s.mux.HandleFunc("POST /api/notifications/{id}/read", s.handleNotificationRead)

	s.mux.HandleFunc("GET /agenda", s.handleAgenda)
	s.mux.HandleFunc("GET /agenda.png", s.handleAgendaPNG)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// anchorDate reads ?date=YYYY-MM-DD in the calendar zone, defaulting to now.
func (s *Server) anchorDate(r *http.Request, now time.Time) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, s.location())
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return d, nil
}

func (s *Server) location() *time.Location {
	if s.cal.Loc == nil {
		return time.Local
	}
	return s.cal.Loc
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeDomainError maps domain errors onto status codes; anything unknown is
// logged and reported as 500.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, followup.ErrInvalidDueDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		appLog.Error("api request failed", err, "op", op)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
