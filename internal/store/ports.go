package store

import (
	"context"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

// Ports for session ledger storage.
type (
	// LedgerStore owns one ledger per session. A session unknown to the store
	// is seeded on first access.
	LedgerStore interface {
		// Snapshot returns an independent copy of the session's ledger.
		Snapshot(ctx context.Context, session string) (*ledger.Ledger, error)
		// Append validates and appends tx, returning its ledger index.
		Append(ctx context.Context, session string, tx core.Transaction) (int, error)
		// Delete removes the transaction at index of the unfiltered ledger.
		Delete(ctx context.Context, session string, index int) (core.Transaction, error)
		// Reset replaces the session's ledger with the seed dataset.
		Reset(ctx context.Context, session string) error
	}

	// Seeder builds the initial ledger for a new session.
	Seeder func() *ledger.Ledger
)
