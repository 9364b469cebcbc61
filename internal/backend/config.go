package backend

import (
	"fmt"
	"time"

	"finalerts/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// memory
	SeedFile string

	// sqlite
	SQLiteDBPath string

	// rest
	RESTBaseURL       string
	RESTToken         string
	RESTRatePerSecond float64
	RESTTimeout       time.Duration

	// sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleBudgetsSheet       string
	GoogleBillsSheet         string
	GoogleTransactionsSheet  string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SeedFile:     appConfig.SeedFile,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		RESTBaseURL:       appConfig.RESTBaseURL,
		RESTToken:         appConfig.RESTToken,
		RESTRatePerSecond: appConfig.RESTRatePerSecond,
		RESTTimeout:       appConfig.RefreshTimeout,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleBudgetsSheet:       appConfig.GoogleBudgetsSheet,
		GoogleBillsSheet:         appConfig.GoogleBillsSheet,
		GoogleTransactionsSheet:  appConfig.GoogleTransactionsSheet,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	case RESTBackend:
		if c.RESTBaseURL == "" {
			return fmt.Errorf("base URL is required for rest backend")
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, SheetsBackend, RESTBackend}
}
