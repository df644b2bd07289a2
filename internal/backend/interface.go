package backend

import (
	"context"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
)

// Services bundles the record service of every kind.
type Services struct {
	Incomes  *services.RecordService[core.Income]
	Expenses *services.RecordService[core.Expense]
	Goals    *services.RecordService[core.Goal]
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired services, the store they share and a
// cleanup function that releases everything the factory opened.
type BackendResult struct {
	Store    storage.DocumentStore
	Services Services
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// List cache; a zero TTL disables it
	ListCacheTTL  time.Duration
	ListCacheSize int
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
