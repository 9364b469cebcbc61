package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Data backends selectable with DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
	BackendREST   = "rest"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendSheets, BackendREST}

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Memory backend
	SeedFile string

	// Database
	SQLiteDBPath string

	// REST backend
	RESTBaseURL       string
	RESTToken         string
	RESTRatePerSecond float64

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleBudgetsSheet       string
	GoogleBillsSheet         string
	GoogleTransactionsSheet  string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Alerts
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
	BillWindowDays  int
	SessionTTL      time.Duration
	MaxSessions     int
	RateLimit       float64 // requests per second per client, 0 disables
	Currency        string
	Locale          string

	// Notifications
	WebhookURL    string
	WebhookSecret string
	SlackWebhook  string
	SlackChannel  string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", BackendMemory),

		SeedFile:     getEnv("SEED_FILE", ""),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finalerts.db"),

		RESTBaseURL:       getEnv("REST_BASE_URL", ""),
		RESTToken:         getEnv("REST_TOKEN", ""),
		RESTRatePerSecond: getEnvFloat("REST_RATE_PER_SECOND", 5),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleBudgetsSheet:       getEnv("GOOGLE_BUDGETS_SHEET", "Budgets"),
		GoogleBillsSheet:         getEnv("GOOGLE_BILLS_SHEET", "Bills"),
		GoogleTransactionsSheet:  getEnv("GOOGLE_TRANSACTIONS_SHEET", "Transactions"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finalerts"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "alert_events"),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
		RefreshTimeout:  getEnvDuration("REFRESH_TIMEOUT", 10*time.Second),
		BillWindowDays:  getEnvInt("BILL_WINDOW_DAYS", 3),
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		MaxSessions:     getEnvInt("MAX_SESSIONS", 1000),
		RateLimit:       getEnvFloat("RATE_LIMIT", 10),
		Currency:        getEnv("CURRENCY", "EUR"),
		Locale:          getEnv("LOCALE", "en"),

		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		SlackWebhook:  getEnv("SLACK_WEBHOOK_URL", ""),
		SlackChannel:  getEnv("SLACK_CHANNEL", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}

	case BackendREST:
		if c.RESTBaseURL == "" {
			errors = append(errors, "REST_BASE_URL is required when using rest backend")
		} else if u, err := url.Parse(c.RESTBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid REST base URL '%s': must be an http(s) URL", c.RESTBaseURL))
		}
		if c.RESTRatePerSecond < 0 {
			errors = append(errors, fmt.Sprintf("invalid REST rate %v: must not be negative", c.RESTRatePerSecond))
		}

	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}

	case BackendMemory:
		if c.SeedFile != "" {
			if _, err := os.Stat(c.SeedFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("seed file does not exist: %s", c.SeedFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}
	if c.RefreshTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid refresh timeout %v: must not be negative", c.RefreshTimeout))
	}
	if c.BillWindowDays < 0 || c.BillWindowDays > 365 {
		errors = append(errors, fmt.Sprintf("invalid bill window %d: must be between 0 and 365 days", c.BillWindowDays))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.MaxSessions < 1 {
		errors = append(errors, fmt.Sprintf("invalid max sessions %d: must be at least 1", c.MaxSessions))
	}
	if c.RateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %v: must not be negative", c.RateLimit))
	}

	if _, err := currency.ParseISO(strings.ToUpper(c.Currency)); err != nil {
		errors = append(errors, fmt.Sprintf("invalid currency '%s': must be an ISO 4217 code", c.Currency))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}

	for _, hook := range []struct{ name, url string }{
		{"webhook", c.WebhookURL},
		{"Slack webhook", c.SlackWebhook},
	} {
		if hook.url == "" {
			continue
		}
		if u, err := url.Parse(hook.url); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid %s URL '%s': must be an http(s) URL", hook.name, hook.url))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
