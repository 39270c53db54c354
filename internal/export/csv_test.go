package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

func TestRoundTripFilteredView(t *testing.T) {
	l := ledger.Seed()
	_, err := l.Add(core.Transaction{
		Date:     core.NewDate(2025, 1, 20),
		Kind:     core.Expense,
		Category: "Raw Materials",
		Amount:   core.MustAmount("1234.56"),
	})
	require.NoError(t, err)

	view := ledger.Filter(l, core.NewDate(2025, 1, 10), core.NewDate(2025, 1, 31))
	require.NotEmpty(t, view)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, view))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	want := view.Transactions()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Date, got[i].Date, "row %d", i)
		assert.Equal(t, want[i].Kind, got[i].Kind, "row %d", i)
		assert.Equal(t, want[i].Category, got[i].Category, "row %d", i)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "row %d amount %s != %s", i, want[i].Amount, got[i].Amount)
	}
}

func TestWriteCSVFormat(t *testing.T) {
	l := ledger.New([]core.Transaction{
		{Date: core.NewDate(2025, 1, 2), Kind: core.Income, Category: "Service Revenue", Amount: core.MustAmount("60000")},
		{Date: core.NewDate(2025, 1, 3), Kind: core.Expense, Category: "Rent", Amount: core.MustAmount("40000.5")},
	})
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ledger.Filter(l, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))))
	assert.Equal(t,
		"Date,Type,Category,Amount\n"+
			"2025-01-02,Income,Service Revenue,60000\n"+
			"2025-01-03,Expense,Rent,40000.5\n",
		buf.String())
}

func TestWriteCSVEmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ledger.View{}))
	assert.Equal(t, Header+"\n", buf.String())

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCSVErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		err  error
	}{
		{"bad header", "When,Type,Category,Amount\n", ErrBadHeader},
		{"empty input", "", ErrBadHeader},
		{"blank lines only", "\n\n", ErrBadHeader},
		{"bad date", Header + "\n01/02/2025,Income,Sales,1\n", core.ErrInvalidDate},
		{"bad kind", Header + "\n2025-01-02,Refund,Sales,1\n", core.ErrInvalidKind},
		{"bad category", Header + "\n2025-01-02,Income,Rent,1\n", core.ErrInvalidCategory},
		{"bad amount", Header + "\n2025-01-02,Income,Sales,lots\n", core.ErrInvalidAmount},
		{"negative amount", Header + "\n2025-01-02,Income,Sales,-1\n", core.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := ReadCSV(strings.NewReader(Header + "\n2025-01-02,Income\n"))
	assert.Error(t, err, "short rows are rejected")
}

func TestReadCSVAcceptsBOM(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("\ufeff" + Header + "\n2025-01-02,income,Sales,10\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.Income, got[0].Kind)
}
