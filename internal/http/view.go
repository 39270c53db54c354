package http

import (
	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

// dashboardPage is the data of dashboard.html and its panel fragment.
type dashboardPage struct {
	Dashboard ledger.Dashboard
	// Range holds the bounds the user asked for; links and hidden form
	// fields carry it so the filter survives a mutation.
	Range             RangeParams
	Start             string
	End               string
	Query             string
	// LastIndex bounds the delete form; -1 when the ledger is empty.
	LastIndex         int
	Kinds             []core.Kind
	IncomeCategories  []string
	ExpenseCategories []string
	Today             string
	SheetsEnabled     bool
	CurrencySymbol    string
}

func (s *Server) newDashboardPage(d ledger.Dashboard, rp RangeParams) dashboardPage {
	return dashboardPage{
		Dashboard:         d,
		Range:             rp,
		Start:             d.Start.String(),
		End:               d.End.String(),
		Query:             rp.Query(),
		LastIndex:         d.LedgerLen - 1,
		Kinds:             core.Kinds(),
		IncomeCategories:  core.CategoriesFor(core.Income),
		ExpenseCategories: core.CategoriesFor(core.Expense),
		Today:             core.Today().String(),
		SheetsEnabled:     s.exporter != nil,
		CurrencySymbol:    core.CurrencySymbol,
	}
}

// JSON shapes of GET /api/dashboard. Amounts are decimal strings.
type (
	dashboardResponse struct {
		Start     string             `json:"start"`
		End       string             `json:"end"`
		LedgerLen int                `json:"ledgerLen"`
		KPIs      kpisResponse       `json:"kpis"`
		Series    []pointResponse    `json:"series"`
		Breakdown []categoryResponse `json:"breakdown"`
		Rows      []rowResponse      `json:"rows"`
	}

	kpisResponse struct {
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalExpense decimal.Decimal `json:"totalExpense"`
		Net          decimal.Decimal `json:"net"`
		MarginPct    string          `json:"marginPct"`
	}

	pointResponse struct {
		Date    string          `json:"date"`
		Balance decimal.Decimal `json:"balance"`
	}

	categoryResponse struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
	}

	rowResponse struct {
		Index    int             `json:"index"`
		Date     string          `json:"date"`
		Kind     core.Kind       `json:"type"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
	}

	categoriesResponse struct {
		Kind       core.Kind `json:"kind"`
		Categories []string  `json:"categories"`
	}
)

func newDashboardResponse(d ledger.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Start:     d.Start.String(),
		End:       d.End.String(),
		LedgerLen: d.LedgerLen,
		KPIs: kpisResponse{
			TotalIncome:  d.KPIs.TotalIncome,
			TotalExpense: d.KPIs.TotalExpense,
			Net:          d.KPIs.Net,
			MarginPct:    d.KPIs.MarginPct.StringFixed(2),
		},
		Series:    make([]pointResponse, 0, len(d.Series)),
		Breakdown: make([]categoryResponse, 0, len(d.Breakdown)),
		Rows:      make([]rowResponse, 0, len(d.Rows)),
	}
	for _, p := range d.Series {
		resp.Series = append(resp.Series, pointResponse{Date: p.Date.String(), Balance: p.Balance})
	}
	for _, c := range d.Breakdown {
		resp.Breakdown = append(resp.Breakdown, categoryResponse{Category: c.Name, Amount: c.Amount})
	}
	for _, r := range d.Rows {
		resp.Rows = append(resp.Rows, rowResponse{
			Index:    r.Index,
			Date:     r.Date.String(),
			Kind:     r.Kind,
			Category: r.Category,
			Amount:   r.Amount,
		})
	}
	return resp
}
