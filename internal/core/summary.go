package core

import "github.com/shopspring/decimal"

// KPIs are the scalar cash-flow metrics of a view.
type KPIs struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	MarginPct    decimal.Decimal
}

// BalancePoint is one step of the cumulative balance series.
type BalancePoint struct {
	Date    Date
	Balance decimal.Decimal
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}
