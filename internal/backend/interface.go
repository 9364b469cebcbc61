// Package backend builds the finance data provider selected by
// configuration.
package backend

import (
	"context"

	"finalerts/internal/finance"
)

// Pinger is implemented by backends that can report their readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the provider and an optional cleanup function.
type BackendResult struct {
	Provider finance.Provider
	Cleanup  CleanupFunc
}

// Ping checks readiness when the provider supports it.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Provider.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	RESTBackend   BackendType = "rest"
)

// IsValid checks if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SheetsBackend, RESTBackend:
		return true
	}
	return false
}

func (bt BackendType) String() string {
	return string(bt)
}
