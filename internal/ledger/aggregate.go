package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Row is a transaction of a view paired with its index in the unfiltered
// ledger. Index is what Delete expects.
type Row struct {
	Index int
	core.Transaction
}

// View is a date-filtered subset of a ledger, in ledger order.
type View []Row

// Transactions strips the ledger indexes.
func (v View) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(v))
	for i, r := range v {
		out[i] = r.Transaction
	}
	return out
}

// Filter selects transactions with start <= date <= end. A reversed range
// yields an empty view rather than an error.
func Filter(l *Ledger, start, end core.Date) View {
	view := View{}
	if l == nil {
		return view
	}
	for i, tx := range l.items {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		view = append(view, Row{Index: i, Transaction: tx})
	}
	return view
}

// ComputeKPIs sums income and expense over the view. MarginPct is zero when
// there is no income.
func ComputeKPIs(v View) core.KPIs {
	k := core.KPIs{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		MarginPct:    decimal.Zero,
	}
	for _, r := range v {
		switch r.Kind {
		case core.Income:
			k.TotalIncome = k.TotalIncome.Add(r.Amount)
		case core.Expense:
			k.TotalExpense = k.TotalExpense.Add(r.Amount)
		}
	}
	k.Net = k.TotalIncome.Sub(k.TotalExpense)
	if !k.TotalIncome.IsZero() {
		k.MarginPct = k.Net.Div(k.TotalIncome).Mul(hundred)
	}
	return k
}

// CumulativeSeries orders the view by date, keeping insertion order for
// equal dates, and emits the running signed balance after each transaction.
func CumulativeSeries(v View) []core.BalancePoint {
	sorted := append(View(nil), v...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]core.BalancePoint, 0, len(sorted))
	balance := decimal.Zero
	for _, r := range sorted {
		balance = balance.Add(r.Signed())
		points = append(points, core.BalancePoint{Date: r.Date, Balance: balance})
	}
	return points
}

// ExpenseBreakdown sums expense amounts per category. Categories without
// expense rows in the view are absent from the map.
func ExpenseBreakdown(v View) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range v {
		if r.Kind != core.Expense {
			continue
		}
		if cur, ok := out[r.Category]; ok {
			out[r.Category] = cur.Add(r.Amount)
		} else {
			out[r.Category] = r.Amount
		}
	}
	return out
}

// SortedBreakdown returns the breakdown ordered by amount descending, then
// by name.
func SortedBreakdown(breakdown map[string]decimal.Decimal) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(breakdown))
	for name, amount := range breakdown {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Dashboard bundles every output of one recomputation.
type Dashboard struct {
	Start     core.Date
	End       core.Date
	Rows      View
	KPIs      core.KPIs
	Series    []core.BalancePoint
	Breakdown []core.CategoryAmount
	// LedgerLen is the size of the unfiltered ledger, the bound for Delete.
	LedgerLen int
}

// Summarize filters l to [start, end] and computes all derived outputs.
func Summarize(l *Ledger, start, end core.Date) Dashboard {
	view := Filter(l, start, end)
	n := 0
	if l != nil {
		n = l.Len()
	}
	return Dashboard{
		Start:     start,
		End:       end,
		Rows:      view,
		KPIs:      ComputeKPIs(view),
		Series:    CumulativeSeries(view),
		Breakdown: SortedBreakdown(ExpenseBreakdown(view)),
		LedgerLen: n,
	}
}

// DefaultRange is the ledger's date bounds, or [today, today] when empty.
func DefaultRange(l *Ledger) (core.Date, core.Date) {
	if l != nil {
		if first, last, ok := l.Bounds(); ok {
			return first, last
		}
	}
	today := core.Today()
	return today, today
}
