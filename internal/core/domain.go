package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

// DateLayout is the wire format for dates in forms, query strings and CSV.
const DateLayout = "2006-01-02"

type (
	Kind string

	// Date is a calendar date. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		Date     Date
		Kind     Kind
		Category string
		Amount   decimal.Decimal
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidKind     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
)

var (
	IncomeCategories = []string{"Sales", "Service Revenue"}

	ExpenseCategories = []string{
		"Rent",
		"Electricity",
		"Insurance",
		"Raw Materials",
		"Shipping Cost",
		"Maintenance",
		"Transportation",
		"Salaries",
	}
)

// Kinds lists the transaction kinds in display order.
func Kinds() []Kind {
	return []Kind{Income, Expense}
}

// ParseKind accepts the kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// CategoriesFor returns a copy of the categories allowed for the kind.
func CategoriesFor(k Kind) []string {
	switch k {
	case Income:
		return append([]string(nil), IncomeCategories...)
	case Expense:
		return append([]string(nil), ExpenseCategories...)
	}
	return nil
}

// AllowsCategory reports whether category belongs to the kind's fixed set.
func (k Kind) AllowsCategory(category string) bool {
	var set []string
	switch k {
	case Income:
		set = IncomeCategories
	case Expense:
		set = ExpenseCategories
	}
	for _, c := range set {
		if c == category {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before and After compare calendar dates; equal dates are neither.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Signed returns the transaction's effect on the cash balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if !t.Kind.AllowsCategory(t.Category) {
		return fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, t.Category, t.Kind)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	return nil
}
