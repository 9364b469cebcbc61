package http

import (
	"errors"
	"net/http"

	"finalerts/internal/log"
	"finalerts/internal/refresh"
)

// handleListAlerts refreshes from the backend and merges into the session's
// store. When the refresh fails the previous list is returned marked stale.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	store := s.sessionStore(w, r)

	latest, err := s.refresher.Refresh(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		message := "failed to refresh alerts"
		var fetchErr *refresh.DataFetchError
		if errors.As(err, &fetchErr) {
			status = http.StatusBadGateway
			message = "failed to load " + fetchErr.Source
		}
		logger.ErrorContext(ctx, "Alert refresh failed", log.FieldError, err, log.FieldOperation, log.OpRefresh)

		NewJSONResponse().Status(status).Body(alertsResponse{
			Alerts: toAlertJSON(store.Alerts(), s.renderer),
			Unread: store.UnreadCount(),
			Stale:  true,
			Error:  message,
		}).Write(w, r)
		return
	}

	visible := store.Merge(latest)
	unread := store.UnreadCount()
	logger.DebugContext(ctx, "Alerts refreshed", log.FieldCount, len(visible), log.FieldUnread, unread)

	NewJSONResponse().Body(alertsResponse{
		Alerts: toAlertJSON(visible, s.renderer),
		Unread: unread,
	}).Write(w, r)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	store := s.sessionStore(w, r)
	NewJSONResponse().Body(unreadResponse{Unread: store.UnreadCount()}).Write(w, r)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validAlertID(id) {
		BadRequestError("invalid alert id").Write(w, r)
		return
	}
	store := s.sessionStore(w, r)
	if !store.MarkRead(id) {
		NotFoundError("alert not found").Write(w, r)
		return
	}
	NewJSONResponse().Body(unreadResponse{Unread: store.UnreadCount()}).Write(w, r)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	store := s.sessionStore(w, r)
	store.MarkAllRead()
	NewJSONResponse().Body(unreadResponse{Unread: store.UnreadCount()}).Write(w, r)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validAlertID(id) {
		BadRequestError("invalid alert id").Write(w, r)
		return
	}
	store := s.sessionStore(w, r)
	if !store.Delete(id) {
		NotFoundError("alert not found").Write(w, r)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Alert deleted", log.FieldAlertID, id)
	NewJSONResponse().Body(unreadResponse{Unread: store.UnreadCount()}).Write(w, r)
}
