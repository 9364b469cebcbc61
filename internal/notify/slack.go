package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"finalerts/internal/amqp"
)

// SlackNotifier posts alert events to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
	now        func() time.Time
}

func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client:     newHTTPClient(),
		now:        time.Now,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

var severityColors = map[string]string{
	"red":    "#cc0000",
	"orange": "#ff9900",
	"blue":   "#3b82f6",
}

func (s *SlackNotifier) Send(ctx context.Context, event *amqp.AlertEvent) error {
	color, ok := severityColors[event.Severity]
	if !ok {
		color = "#36a64f"
	}
	payload := slackPayload{
		Channel: s.channel,
		Attachments: []slackAttachment{{
			Color: color,
			Title: event.Title,
			Text:  event.Message,
			Fields: []slackField{
				{Title: "Kind", Value: event.Kind, Short: true},
				{Title: "When", Value: event.TimeLabel, Short: true},
			},
			Footer: "finalerts",
			Ts:     s.now().Unix(),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack alert: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}
