package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
)

func tx(y, m, d int, kind core.Kind, category string, amount int64) core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(y, m, d),
		Kind:     kind,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
	}
}

func TestAddAppends(t *testing.T) {
	var l Ledger
	idx, err := l.Add(tx(2025, 1, 2, core.Income, "Sales", 100))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = l.Add(tx(2025, 1, 1, core.Expense, "Rent", 50))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	got := l.Transactions()
	require.Len(t, got, 2)
	assert.Equal(t, "Rent", got[1].Category, "append keeps insertion order, not date order")
}

func TestAddRejectsInvalidWithoutMutation(t *testing.T) {
	l := New([]core.Transaction{tx(2025, 1, 2, core.Income, "Sales", 100)})
	_, err := l.Add(tx(2025, 1, 3, core.Income, "Rent", 100))
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
	assert.Equal(t, 1, l.Len())
}

func TestTransactionsIsACopy(t *testing.T) {
	l := New([]core.Transaction{tx(2025, 1, 2, core.Income, "Sales", 100)})
	got := l.Transactions()
	got[0].Category = "Service Revenue"
	first, err := l.At(0)
	require.NoError(t, err)
	assert.Equal(t, "Sales", first.Category)
}

func TestCloneIsIndependent(t *testing.T) {
	l := Seed()
	c := l.Clone()
	_, err := c.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, 30, l.Len())
	assert.Equal(t, 29, c.Len())
}

func TestDelete(t *testing.T) {
	l := New([]core.Transaction{
		tx(2025, 1, 1, core.Income, "Sales", 1),
		tx(2025, 1, 2, core.Expense, "Rent", 2),
		tx(2025, 1, 3, core.Income, "Sales", 3),
	})

	removed, err := l.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, "Rent", removed.Category)
	require.Equal(t, 2, l.Len())
	second, _ := l.At(1)
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(3)), "later rows shift down")
}

func TestDeleteOutOfRange(t *testing.T) {
	l := New([]core.Transaction{tx(2025, 1, 1, core.Income, "Sales", 1)})
	for _, idx := range []int{-1, 1, 99} {
		_, err := l.Delete(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "Delete(%d)", idx)
	}
	assert.Equal(t, 1, l.Len())

	var empty Ledger
	_, err := empty.Delete(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDeleteUsesUnfilteredIndex(t *testing.T) {
	l := New([]core.Transaction{
		tx(2025, 1, 5, core.Income, "Sales", 1),
		tx(2025, 2, 5, core.Expense, "Rent", 2),
		tx(2025, 3, 5, core.Income, "Sales", 3),
	})
	view := Filter(l, core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 31))
	require.Len(t, view, 1)
	assert.Equal(t, 2, view[0].Index)

	// Index 0 is the January row even though the active view only shows March.
	removed, err := l.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2025, 1, 5), removed.Date)
}

func TestDeletedRowNeverReturns(t *testing.T) {
	l := Seed()
	victim, err := l.At(3)
	require.NoError(t, err)
	_, err = l.Delete(3)
	require.NoError(t, err)

	ranges := [][2]core.Date{
		{core.NewDate(2000, 1, 1), core.NewDate(2100, 1, 1)},
		{victim.Date, victim.Date},
		{core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31)},
	}
	for _, r := range ranges {
		for _, row := range Filter(l, r[0], r[1]) {
			assert.False(t, row.Date.Equal(victim.Date.Time) && row.Category == victim.Category,
				"deleted row resurfaced in range %s..%s", r[0], r[1])
		}
	}
}

func TestBounds(t *testing.T) {
	var empty Ledger
	_, _, ok := empty.Bounds()
	assert.False(t, ok)

	l := New([]core.Transaction{
		tx(2025, 2, 1, core.Income, "Sales", 1),
		tx(2024, 12, 31, core.Expense, "Rent", 1),
		tx(2025, 3, 1, core.Income, "Sales", 1),
	})
	first, last, ok := l.Bounds()
	require.True(t, ok)
	assert.Equal(t, core.NewDate(2024, 12, 31), first)
	assert.Equal(t, core.NewDate(2025, 3, 1), last)
}

func TestSeed(t *testing.T) {
	l := Seed()
	require.Equal(t, 30, l.Len())
	for i, tx := range l.Transactions() {
		assert.NoError(t, tx.Validate(), "seed row %d", i)
	}
	first, last, _ := l.Bounds()
	assert.Equal(t, "2025-01-02", first.String())
	assert.Equal(t, "2025-02-28", last.String())
}
