package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"finalerts/internal/amqp"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Signature-256"

// WebhookNotifier posts alert events to a generic HTTP endpoint.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

// NewWebhookNotifier signs requests when secret is non-empty.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: newHTTPClient(),
		now:    time.Now,
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

type webhookPayload struct {
	Event     string           `json:"event"`
	Timestamp string           `json:"timestamp"`
	Alert     *amqp.AlertEvent `json:"alert"`
}

func (w *WebhookNotifier) Send(ctx context.Context, event *amqp.AlertEvent) error {
	body, err := json.Marshal(webhookPayload{
		Event:     "finance_alert",
		Timestamp: w.now().UTC().Format(time.RFC3339),
		Alert:     event,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "finalerts/1.0")
	if w.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(body, w.secret))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook alert: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Sign returns the hex HMAC-SHA256 of body keyed by secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header is a valid signature of body.
func Verify(body []byte, secret, header string) bool {
	const prefix = "sha256="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return false
	}
	return hmac.Equal([]byte(header[len(prefix):]), []byte(Sign(body, secret)))
}
