package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponentAppearsOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentRefresh, Handler: slog.NewTextHandler(&buf, nil)})
	sub := l.WithComponent("budgets")
	sub.Info("hello")
	if sub.Component() != "budgets" {
		t.Errorf("Component() = %q, want budgets", sub.Component())
	}

	out := buf.String()
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("expected one component attribute, got %q", out)
	}
	if !strings.Contains(out, "component=refresh") || !strings.Contains(out, "subsystem=budgets") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStructuredLoggerSkippedRecord(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Handler: slog.NewTextHandler(&buf, nil)}))
	sl.LogSkippedRecord(context.Background(), "budget", 7, errors.New("invalid amount"))

	out := buf.String()
	for _, want := range []string{"level=WARN", "record=budget", "record_id=7", `error="invalid amount"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestContextCarriesLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}

	var buf bytes.Buffer
	l := New(Config{Handler: slog.NewTextHandler(&buf, nil)}).With(FieldRequestID, "req-1")
	FromContext(NewContext(context.Background(), l)).Info("inside")

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id missing: %q", buf.String())
	}
}

func TestStructuredLoggerHTTPEnd(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Handler: slog.NewTextHandler(&buf, nil)}))
	r := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	sl.LogHTTPEnd(context.Background(), r, http.StatusBadGateway, 12, "203.0.113.1")

	out := buf.String()
	for _, want := range []string{"level=ERROR", "status_code=502", "path=/api/alerts", "client_ip=203.0.113.1", "success=false"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Handler: slog.NewTextHandler(&buf, nil)}))
	sl.LogError(context.Background(), "fetch failed", errors.New("timeout"), OpRefresh, NewFields().WithSource("bills").WithPeriod(2025, 6))

	out := buf.String()
	for _, want := range []string{"operation=refresh", "source=bills", "year=2025", "month=6", "error=timeout"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}
