// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from form input
// and formatting them for display.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var groupedThousands = regexp.MustCompile(`^[0-9]{1,3}(,[0-9]{3})+(\.[0-9]+)?$`)

// ParseAmount converts a user supplied decimal string to an amount.
//
// The decimal separator is a dot. Commas are accepted only as thousands
// separators in groups of three, the way amounts are displayed. Signs are
// rejected; zero is allowed. Amounts are kept with at most two fractional
// digits, rounding half away from zero.
//
// Examples:
//
//	ParseAmount("12.345")  -> 12.35
//	ParseAmount("60,000")  -> 60000
//	ParseAmount("12,34")   -> ErrInvalidAmount
//	ParseAmount("0")       -> 0
//	ParseAmount("-1")      -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.Contains(s, ",") {
		if !groupedThousands.MatchString(s) {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.Round(2), nil
}

// FormatAmount renders an amount with thousands separators and no
// fractional part, e.g. 1234567.8 -> "1,234,568".
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(0).Abs().StringFixed(0)
	var b strings.Builder
	if d.Round(0).IsNegative() {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 && !(b.Len() == 1 && b.String() == "-") {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// CurrencySymbol prefixes displayed amounts.
const CurrencySymbol = "₹"

// FormatMoney renders an amount with the currency symbol, e.g. "₹1,234" or
// "-₹560".
func FormatMoney(d decimal.Decimal) string {
	s := FormatAmount(d)
	if strings.HasPrefix(s, "-") {
		return "-" + CurrencySymbol + s[1:]
	}
	return CurrencySymbol + s
}

// FormatPercent renders a percentage with two decimals, e.g. "33.33%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// MustAmount is ParseAmount for literals known to be valid.
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}
