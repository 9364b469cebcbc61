package amqp

import (
	"encoding/json"
	"time"

	"finalerts/internal/alerts"
)

// AlertEvent is the message published for a newly seen alert. The message
// text is rendered by the publisher so consumers need no locale settings.
type AlertEvent struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Severity  string         `json:"severity"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	TimeLabel string         `json:"time_label"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewAlertEvent builds an event from a synthesized alert.
func NewAlertEvent(a alerts.Alert, r *alerts.Renderer, now time.Time) *AlertEvent {
	if r == nil {
		r = alerts.DefaultRenderer
	}
	return &AlertEvent{
		ID:        a.ID,
		Kind:      string(a.Kind),
		Severity:  string(a.Severity),
		Title:     a.Title,
		Message:   r.Render(a),
		TimeLabel: a.TimeLabel,
		Details:   alerts.Details(a),
		Timestamp: now.UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *AlertEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// AlertEventFromJSON decodes an event. Events without an id are rejected.
func AlertEventFromJSON(data []byte) (*AlertEvent, error) {
	var e AlertEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, ErrMissingEventID
	}
	return &e, nil
}
