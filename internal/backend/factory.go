package backend

import (
	"context"
	"fmt"
	"net/http"

	"finalerts/internal/finance/google"
	"finalerts/internal/finance/memory"
	"finalerts/internal/finance/rest"
	"finalerts/internal/log"
	"finalerts/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentBackend})
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case RESTBackend:
		return f.createRESTBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.SeedFile == "" {
		f.logger.Info("Initialized empty memory backend")
		return &BackendResult{Provider: memory.New(nil, nil)}, nil
	}

	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed file: %w", err)
	}
	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)
	return &BackendResult{Provider: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Provider: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID:     config.GoogleSpreadsheetID,
		CredentialsJSON:   config.GoogleServiceAccountJSON,
		CredentialsFile:   config.GoogleServiceAccountFile,
		BudgetsSheet:      config.GoogleBudgetsSheet,
		BillsSheet:        config.GoogleBillsSheet,
		TransactionsSheet: config.GoogleTransactionsSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &BackendResult{Provider: cli}, nil
}

func (f *DefaultFactory) createRESTBackend(config Config) (*BackendResult, error) {
	opts := rest.Options{
		BaseURL:       config.RESTBaseURL,
		Token:         config.RESTToken,
		RatePerSecond: config.RESTRatePerSecond,
	}
	if config.RESTTimeout > 0 {
		opts.HTTPClient = &http.Client{Timeout: config.RESTTimeout}
	}
	cli, err := rest.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REST client: %w", err)
	}

	f.logger.Info("Initialized REST backend",
		"base_url", config.RESTBaseURL,
		"rate_per_second", config.RESTRatePerSecond)
	return &BackendResult{Provider: cli}, nil
}
