// Package sqlite stores session ledgers in a SQLite database. The default
// DSN points at a shared in-memory database, so ledgers live only as long as
// the process.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/store"

	_ "modernc.org/sqlite"
)

// DefaultDSN keeps the database in memory and shares it across the pool.
const DefaultDSN = "file:cashflow?mode=memory&cache=shared"

const timeLayout = "2006-01-02T15:04:05.000000Z"

var _ store.LedgerStore = (*Repository)(nil)

type Repository struct {
	mu      sync.Mutex
	db      *sql.DB
	queries *Queries
	seed    store.Seeder
	ttl     time.Duration
	now     func() time.Time
}

// NewRepository opens dsn, applies migrations and returns a store whose
// sessions expire after ttl of inactivity (zero disables expiry).
func NewRepository(dsn string, ttl time.Duration, seed store.Seeder) (*Repository, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if seed == nil {
		seed = ledger.Seed
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps the in-memory database alive and avoids
	// shared-cache lock contention.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:      db,
		queries: New(db),
		seed:    seed,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) stamp() string {
	return r.now().UTC().Format(timeLayout)
}

// inTx runs fn in a transaction holding the repository lock.
func (r *Repository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ensureSession creates and seeds the session on first use and refreshes
// its activity timestamp.
func (r *Repository) ensureSession(ctx context.Context, q *Queries, session string) error {
	now := r.stamp()
	created, err := q.CreateSession(ctx, session, now)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !created {
		if err := q.TouchSession(ctx, session, now); err != nil {
			return fmt.Errorf("touch session: %w", err)
		}
		return nil
	}
	if err := insertAll(ctx, q, session, r.seed().Transactions()); err != nil {
		return fmt.Errorf("seed session: %w", err)
	}
	slog.DebugContext(ctx, "Session ledger seeded", "session", session)
	return nil
}

func insertAll(ctx context.Context, q *Queries, session string, txs []core.Transaction) error {
	for _, tx := range txs {
		if err := q.InsertTransaction(ctx, toParams(session, tx)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) Snapshot(ctx context.Context, session string) (*ledger.Ledger, error) {
	var rows []TransactionRow
	err := r.inTx(ctx, func(q *Queries) error {
		if err := r.ensureSession(ctx, q, session); err != nil {
			return err
		}
		var err error
		rows, err = q.ListTransactions(ctx, session)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %d: %w", row.ID, err)
		}
		txs = append(txs, tx)
	}
	return ledger.New(txs), nil
}

func (r *Repository) Append(ctx context.Context, session string, tx core.Transaction) (int, error) {
	if err := tx.Validate(); err != nil {
		return -1, err
	}
	index := -1
	err := r.inTx(ctx, func(q *Queries) error {
		if err := r.ensureSession(ctx, q, session); err != nil {
			return err
		}
		if err := q.InsertTransaction(ctx, toParams(session, tx)); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		n, err := q.CountTransactions(ctx, session)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		index = int(n) - 1
		return nil
	})
	if err != nil {
		return -1, err
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"session", session,
		"index", index,
		"kind", tx.Kind.String(),
		"category", tx.Category,
		"amount", tx.Amount.String())
	return index, nil
}

func (r *Repository) Delete(ctx context.Context, session string, index int) (core.Transaction, error) {
	var removed core.Transaction
	err := r.inTx(ctx, func(q *Queries) error {
		if err := r.ensureSession(ctx, q, session); err != nil {
			return err
		}
		n, err := q.CountTransactions(ctx, session)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		if index < 0 || int64(index) >= n {
			return fmt.Errorf("%w: index %d, ledger has %d transactions", ledger.ErrIndexOutOfRange, index, n)
		}
		row, err := q.TransactionAt(ctx, session, int64(index))
		if err != nil {
			return fmt.Errorf("find transaction %d: %w", index, err)
		}
		if removed, err = fromRow(row); err != nil {
			return fmt.Errorf("decode transaction %d: %w", row.ID, err)
		}
		if err := q.DeleteTransaction(ctx, row.ID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return removed, nil
}

func (r *Repository) Reset(ctx context.Context, session string) error {
	return r.inTx(ctx, func(q *Queries) error {
		created, err := q.CreateSession(ctx, session, r.stamp())
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if !created {
			if err := q.DeleteSessionTransactions(ctx, session); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
		}
		return insertAll(ctx, q, session, r.seed().Transactions())
	})
}

// Sessions returns the number of stored sessions.
func (r *Repository) Sessions(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.queries.CountSessions(ctx)
	return int(n), err
}

// CleanExpired drops sessions idle for longer than the TTL. It satisfies
// cache.Cleaner so the cache manager can schedule it.
func (r *Repository) CleanExpired() int {
	if r.ttl <= 0 {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var removed int64
	cutoff := r.now().Add(-r.ttl).UTC().Format(timeLayout)
	err := r.inTx(ctx, func(q *Queries) error {
		var err error
		removed, err = q.DeleteStaleSessions(ctx, cutoff)
		return err
	})
	if err != nil {
		slog.Error("Failed to drop expired sessions", "error", err)
		return 0
	}
	return int(removed)
}

func toParams(session string, tx core.Transaction) InsertTransactionParams {
	return InsertTransactionParams{
		SessionID: session,
		Date:      tx.Date.String(),
		Kind:      tx.Kind.String(),
		Category:  tx.Category,
		Amount:    tx.Amount.String(),
	}
}

func fromRow(row TransactionRow) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(row.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, errors.Join(core.ErrInvalidAmount, err)
	}
	return core.Transaction{Date: date, Kind: kind, Category: row.Category, Amount: amount}, nil
}
