package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

func rent(amount int64) core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2025, 3, 1),
		Kind:     core.Expense,
		Category: "Rent",
		Amount:   decimal.NewFromInt(amount),
	}
}

func TestSnapshotSeedsNewSession(t *testing.T) {
	s := New(10, time.Hour, nil)
	l, err := s.Snapshot(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 30, l.Len())
	assert.Equal(t, 1, s.Sessions())
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New(10, time.Hour, nil)

	idx, err := s.Append(ctx, "a", rent(100))
	require.NoError(t, err)
	assert.Equal(t, 30, idx)

	a, _ := s.Snapshot(ctx, "a")
	b, _ := s.Snapshot(ctx, "b")
	assert.Equal(t, 31, a.Len())
	assert.Equal(t, 30, b.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(10, time.Hour, nil)
	snap, _ := s.Snapshot(ctx, "a")
	_, err := snap.Delete(0)
	require.NoError(t, err)

	again, _ := s.Snapshot(ctx, "a")
	assert.Equal(t, 30, again.Len())
}

func TestDeleteAndRange(t *testing.T) {
	ctx := context.Background()
	s := New(10, time.Hour, func() *ledger.Ledger { return ledger.New([]core.Transaction{rent(1), rent(2)}) })

	removed, err := s.Delete(ctx, "a", 0)
	require.NoError(t, err)
	assert.True(t, removed.Amount.Equal(decimal.NewFromInt(1)))

	_, err = s.Delete(ctx, "a", 1)
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)

	l, _ := s.Snapshot(ctx, "a")
	assert.Equal(t, 1, l.Len())
}

func TestAppendInvalidLeavesLedger(t *testing.T) {
	ctx := context.Background()
	s := New(10, time.Hour, nil)
	bad := rent(1)
	bad.Category = "Sales"
	_, err := s.Append(ctx, "a", bad)
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
	l, _ := s.Snapshot(ctx, "a")
	assert.Equal(t, 30, l.Len())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := New(10, time.Hour, nil)
	_, _ = s.Delete(ctx, "a", 0)
	require.NoError(t, s.Reset(ctx, "a"))
	l, _ := s.Snapshot(ctx, "a")
	assert.Equal(t, 30, l.Len())
}

func TestExpiredSessionStartsOver(t *testing.T) {
	ctx := context.Background()
	s := New(10, 10*time.Millisecond, nil)
	_, _ = s.Delete(ctx, "a", 0)

	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 1, s.Cache().CleanExpired())

	l, _ := s.Snapshot(ctx, "a")
	assert.Equal(t, 30, l.Len())
}

func TestCapacityEvictsOldestSession(t *testing.T) {
	ctx := context.Background()
	s := New(2, time.Hour, nil)
	_, _ = s.Delete(ctx, "a", 0)
	_, _ = s.Snapshot(ctx, "b")
	_, _ = s.Snapshot(ctx, "c")
	assert.Equal(t, 2, s.Sessions())

	l, _ := s.Snapshot(ctx, "a")
	assert.Equal(t, 30, l.Len(), "evicted session is re-seeded")
}
