// Package ledger holds a session's ordered transaction list and the pure
// aggregation pipeline computed over it.
package ledger

import (
	"errors"
	"fmt"

	"cashflow/internal/core"
)

// ErrIndexOutOfRange is returned by Delete for an index outside the ledger.
var ErrIndexOutOfRange = errors.New("index out of range")

// Ledger is an ordered, append-only list of transactions with positional
// deletion. Positions are the only identity a transaction has.
//
// The zero value is an empty ledger ready to use. A Ledger is not safe for
// concurrent use; stores serialize access to it.
type Ledger struct {
	items []core.Transaction
}

// New returns a ledger holding a copy of txs.
func New(txs []core.Transaction) *Ledger {
	return &Ledger{items: append([]core.Transaction(nil), txs...)}
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	return len(l.items)
}

// At returns the transaction at index.
func (l *Ledger) At(index int) (core.Transaction, error) {
	if index < 0 || index >= len(l.items) {
		return core.Transaction{}, l.rangeError(index)
	}
	return l.items[index], nil
}

// Transactions returns a copy of the ledger contents in insertion order.
func (l *Ledger) Transactions() []core.Transaction {
	return append([]core.Transaction(nil), l.items...)
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return New(l.items)
}

// Add validates tx and appends it, returning its index. An invalid
// transaction leaves the ledger unchanged.
func (l *Ledger) Add(tx core.Transaction) (int, error) {
	if err := tx.Validate(); err != nil {
		return -1, err
	}
	l.items = append(l.items, tx)
	return len(l.items) - 1, nil
}

// Delete removes the transaction at index of the full ledger. Date filters
// play no part here: index always refers to the unfiltered order.
func (l *Ledger) Delete(index int) (core.Transaction, error) {
	if index < 0 || index >= len(l.items) {
		return core.Transaction{}, l.rangeError(index)
	}
	removed := l.items[index]
	next := make([]core.Transaction, 0, len(l.items)-1)
	next = append(next, l.items[:index]...)
	next = append(next, l.items[index+1:]...)
	l.items = next
	return removed, nil
}

// Bounds returns the earliest and latest transaction dates. ok is false for
// an empty ledger.
func (l *Ledger) Bounds() (first, last core.Date, ok bool) {
	if len(l.items) == 0 {
		return core.Date{}, core.Date{}, false
	}
	first, last = l.items[0].Date, l.items[0].Date
	for _, tx := range l.items[1:] {
		if tx.Date.Before(first) {
			first = tx.Date
		}
		if tx.Date.After(last) {
			last = tx.Date
		}
	}
	return first, last, true
}

func (l *Ledger) rangeError(index int) error {
	return fmt.Errorf("%w: index %d, ledger has %d transactions", ErrIndexOutOfRange, index, len(l.items))
}
