package ledger

import (
	"github.com/shopspring/decimal"

	"cashflow/internal/core"
)

type seedRow struct {
	month, day int
	kind       core.Kind
	category   string
	amount     int64
}

// Two months of sample activity for a small business.
var seedRows = []seedRow{
	{1, 2, core.Income, "Sales", 60000},
	{1, 3, core.Expense, "Rent", 40000},
	{1, 5, core.Income, "Sales", 55000},
	{1, 7, core.Expense, "Electricity", 10000},
	{1, 9, core.Income, "Service Revenue", 50000},
	{1, 11, core.Expense, "Raw Materials", 15000},
	{1, 13, core.Income, "Sales", 62000},
	{1, 15, core.Expense, "Salaries", 30000},
	{1, 17, core.Income, "Sales", 45000},
	{1, 19, core.Expense, "Shipping Cost", 8000},
	{1, 21, core.Income, "Service Revenue", 40000},
	{1, 23, core.Expense, "Maintenance", 6000},
	{1, 25, core.Income, "Sales", 58000},
	{1, 27, core.Expense, "Transportation", 9000},
	{1, 29, core.Income, "Service Revenue", 42000},

	{2, 1, core.Income, "Sales", 45000},
	{2, 3, core.Expense, "Rent", 50000},
	{2, 5, core.Income, "Service Revenue", 35000},
	{2, 7, core.Expense, "Insurance", 20000},
	{2, 9, core.Income, "Sales", 40000},
	{2, 11, core.Expense, "Raw Materials", 30000},
	{2, 13, core.Income, "Sales", 38000},
	{2, 15, core.Expense, "Salaries", 45000},
	{2, 17, core.Income, "Sales", 42000},
	{2, 19, core.Expense, "Transportation", 15000},
	{2, 21, core.Income, "Service Revenue", 30000},
	{2, 23, core.Expense, "Electricity", 10000},
	{2, 25, core.Income, "Sales", 32000},
	{2, 27, core.Expense, "Shipping Cost", 12000},
	{2, 28, core.Income, "Service Revenue", 25000},
}

// SeedTransactions returns the dataset every new session starts with.
func SeedTransactions() []core.Transaction {
	out := make([]core.Transaction, len(seedRows))
	for i, r := range seedRows {
		out[i] = core.Transaction{
			Date:     core.NewDate(2025, r.month, r.day),
			Kind:     r.kind,
			Category: r.category,
			Amount:   decimal.NewFromInt(r.amount),
		}
	}
	return out
}

// Seed returns a new ledger holding the seed dataset.
func Seed() *Ledger {
	return New(SeedTransactions())
}
