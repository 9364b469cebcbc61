package http

import (
	"net/http"

	"github.com/google/uuid"

	"finalerts/internal/alerts"
	"finalerts/internal/log"
)

// SessionCookie names the cookie that keys a caller's alert store.
const SessionCookie = "finalerts_session"

// sessionStore returns the caller's alert store, issuing a new session
// cookie when the request has none or an unparseable one.
func (s *Server) sessionStore(w http.ResponseWriter, r *http.Request) *alerts.Store {
	id := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil && parsed.Version() == 4 {
			id = parsed.String()
		}
	}

	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.sessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}

	store, created := s.sessions.GetOrCreate(id, alerts.NewStore)
	if created {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Session started", log.FieldSessionID, id)
	}
	return store
}
