package backend

import (
	"context"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/services"
	"cashflow/internal/sheets"
	gsheet "cashflow/internal/sheets/google"
	"cashflow/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything the server needs from the data layer.
// Publisher and Exporter are nil when their integration is not configured.
type BackendResult struct {
	Store     store.LedgerStore
	Expirer   cache.Cleaner
	Publisher services.EventPublisher
	Exporter  sheets.ViewExporter
	Ready     func(ctx context.Context) error
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SessionTTL time.Duration
	SessionMax int

	// SQLite specific
	SQLiteDSN string

	// Optional integrations
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	Sheets       gsheet.Config
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
