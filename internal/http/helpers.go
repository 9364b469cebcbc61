package http

import (
	"regexp"

	"finalerts/internal/alerts"
)

var alertIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// validAlertID reports whether id has the shape of a synthesized alert id
// such as "bill-12" or "spending-summary".
func validAlertID(id string) bool {
	return alertIDPattern.MatchString(id)
}

type alertJSON struct {
	ID        string          `json:"id"`
	Kind      alerts.Kind     `json:"kind"`
	Severity  alerts.Severity `json:"severity"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	TimeLabel string          `json:"time_label"`
	Read      bool            `json:"read"`
	Details   map[string]any  `json:"details,omitempty"`
}

type alertsResponse struct {
	Alerts []alertJSON `json:"alerts"`
	Unread int         `json:"unread"`
	Stale  bool        `json:"stale,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type unreadResponse struct {
	Unread int `json:"unread"`
}

func toAlertJSON(list []alerts.Alert, r *alerts.Renderer) []alertJSON {
	out := make([]alertJSON, 0, len(list))
	for _, a := range list {
		out = append(out, alertJSON{
			ID:        a.ID,
			Kind:      a.Kind,
			Severity:  a.Severity,
			Title:     a.Title,
			Message:   r.Render(a),
			TimeLabel: a.TimeLabel,
			Read:      a.Read,
			Details:   alerts.Details(a),
		})
	}
	return out
}
