package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cashflow/internal/amqp"
	gsheet "cashflow/internal/sheets/google"
	"cashflow/internal/store/memory"
	"cashflow/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend builds the session store and the optional integrations.
// An unreachable broker or Sheets misconfiguration disables that
// integration instead of failing startup.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	cleanups := []CleanupFunc{result.Cleanup}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
			cleanups = append(cleanups, client.Close)
		}
	}

	if config.Sheets.SpreadsheetID != "" {
		exporter, err := gsheet.New(ctx, config.Sheets)
		if err != nil {
			f.logger.Warn("Failed to initialize Google Sheets exporter, continuing without it", "error", err)
		} else {
			result.Exporter = exporter
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for _, c := range cleanups {
			if c == nil {
				continue
			}
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDSN, config.SessionTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "session_ttl", config.SessionTTL)

	return &BackendResult{
		Store:   repo,
		Expirer: repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	st := memory.New(config.SessionMax, config.SessionTTL, nil)

	f.logger.Info("Initialized memory backend",
		"session_max", config.SessionMax,
		"session_ttl", config.SessionTTL)

	return &BackendResult{
		Store:   st,
		Expirer: st.Cache(),
		Ready:   func(context.Context) error { return nil },
	}
}
