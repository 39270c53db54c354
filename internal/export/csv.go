// Package export serializes ledger views for download.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

// Header is the CSV header row of an exported view.
const Header = "Date,Type,Category,Amount"

// FileName is the suggested name for downloaded exports.
const FileName = "cashflow_transactions.csv"

const (
	numFields   = 4
	colDate     = 0
	colKind     = 1
	colCategory = 2
	colAmount   = 3
)

var ErrBadHeader = errors.New("unexpected CSV header")

// WriteCSV writes the view with a header row. Ledger indexes are not
// exported.
func WriteCSV(w io.Writer, rows ledger.View) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(MarshalTransaction(r.Transaction)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an exported view. Every row is validated.
func ReadCSV(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrBadHeader)
	}
	if got := strings.Join(records[0], ","); strings.TrimPrefix(got, "\ufeff") != Header {
		return nil, fmt.Errorf("%w: %q", ErrBadHeader, got)
	}

	txs := make([]core.Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// MarshalTransaction converts a transaction to a CSV record.
func MarshalTransaction(tx core.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = tx.Date.String()
	row[colKind] = tx.Kind.String()
	row[colCategory] = tx.Category
	row[colAmount] = tx.Amount.String()
	return row
}

// UnmarshalTransaction converts a CSV record to a validated transaction.
func UnmarshalTransaction(record []string) (core.Transaction, error) {
	if len(record) != numFields {
		return core.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	date, err := core.ParseDate(record[colDate])
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(record[colKind])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(record[colAmount]))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, record[colAmount])
	}
	tx := core.Transaction{
		Date:     date,
		Kind:     kind,
		Category: strings.TrimSpace(record[colCategory]),
		Amount:   amount,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
