package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"Income", Income, true},
		{"expense", Expense, true},
		{" EXPENSE ", Expense, true},
		{"refund", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidKind, "ParseKind(%q)", tc.in)
			continue
		}
		require.NoError(t, err, "ParseKind(%q)", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestCategoriesForReturnsCopy(t *testing.T) {
	cats := CategoriesFor(Income)
	require.Equal(t, []string{"Sales", "Service Revenue"}, cats)
	cats[0] = "changed"
	assert.Equal(t, "Sales", IncomeCategories[0])
	assert.Len(t, CategoriesFor(Expense), 8)
	assert.Nil(t, CategoriesFor(Kind("other")))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, 1, 2), d)
	assert.Equal(t, "2025-01-02", d.String())

	_, err = ParseDate("02/01/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateOfDropsTime(t *testing.T) {
	d := DateOf(time.Date(2025, 3, 4, 17, 30, 0, 0, time.UTC))
	assert.True(t, d.Equal(NewDate(2025, 3, 4).Time))
	assert.True(t, NewDate(2025, 3, 3).Before(d))
	assert.True(t, NewDate(2025, 3, 5).After(d))
	assert.False(t, d.Before(NewDate(2025, 3, 4)))
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2025, 1, 2),
		Kind:     Income,
		Category: "Sales",
		Amount:   decimal.NewFromInt(60000),
	}
	require.NoError(t, good.Validate())

	zero := good
	zero.Amount = decimal.Zero
	assert.NoError(t, zero.Validate(), "zero amounts are allowed")

	cases := []struct {
		name   string
		mutate func(*Transaction)
		err    error
	}{
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"unknown kind", func(tx *Transaction) { tx.Kind = "Transfer" }, ErrInvalidKind},
		{"expense category on income", func(tx *Transaction) { tx.Category = "Rent" }, ErrInvalidCategory},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrInvalidCategory},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), tc.err)
		})
	}
}

func TestTransactionSigned(t *testing.T) {
	in := Transaction{Kind: Income, Amount: decimal.NewFromInt(10)}
	out := Transaction{Kind: Expense, Amount: decimal.NewFromInt(10)}
	assert.True(t, in.Signed().Equal(decimal.NewFromInt(10)))
	assert.True(t, out.Signed().Equal(decimal.NewFromInt(-10)))
}
