package http

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/ledger"
	applog "cashflow/internal/log"
)

// handleAddTransaction appends a transaction to the session ledger.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	tx, err := ParseTransaction(p)
	if err != nil {
		Unprocessable(err.Error()).Write(w)
		return
	}

	ctx := r.Context()
	session := sessionFrom(ctx)
	index, err := s.ledger.AddTransaction(ctx, session, tx)
	if err != nil {
		if isValidationError(err) {
			Unprocessable(err.Error()).Write(w)
			return
		}
		s.logFailure(r, "Failed to add transaction", err, applog.OpAdd)
		ServerError("Unable to save the transaction").Write(w)
		return
	}

	atomic.AddInt64(&s.metrics.added, 1)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogTransaction(ctx, applog.OpAdd, index,
		tx.Date.String(), tx.Kind.String(), tx.Category, tx.Amount.String())

	if p.IsJSON() {
		writeJSON(w, http.StatusCreated, map[string]int{"index": index})
		return
	}

	s.finish(w, r, ParseRangeParams(p.Values()), NewReply().
		TriggerLedgerChanged(amqp.ActionAdded, index).
		TriggerFormReset().
		NotifySuccess(fmt.Sprintf("%s of %s added", tx.Kind, core.FormatMoney(tx.Amount))))
}

// handleDeleteTransaction removes the transaction at the given index of the
// unfiltered ledger, whatever range is displayed.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	raw := p.Get("index")
	if raw == "" {
		raw = r.URL.Query().Get("index")
	}
	index, err := ParseIndex(raw)
	if err != nil {
		Unprocessable(err.Error()).Write(w)
		return
	}

	ctx := r.Context()
	session := sessionFrom(ctx)
	removed, err := s.ledger.DeleteTransaction(ctx, session, index)
	if err != nil {
		if errors.Is(err, ledger.ErrIndexOutOfRange) {
			Unprocessable(fmt.Sprintf("No transaction at index %d", index)).Write(w)
			return
		}
		s.logFailure(r, "Failed to delete transaction", err, applog.OpDelete)
		ServerError("Unable to delete the transaction").Write(w)
		return
	}

	atomic.AddInt64(&s.metrics.deleted, 1)
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogTransaction(ctx, applog.OpDelete, index,
		removed.Date.String(), removed.Kind.String(), removed.Category, removed.Amount.String())

	if p.IsJSON() {
		writeJSON(w, http.StatusOK, rowResponse{
			Index:    index,
			Date:     removed.Date.String(),
			Kind:     removed.Kind,
			Category: removed.Category,
			Amount:   removed.Amount,
		})
		return
	}

	rp := ParseRangeParams(p.Values())
	if rp.Start == nil && rp.End == nil {
		rp = ParseRangeParams(r.URL.Query())
	}
	s.finish(w, r, rp, NewReply().
		TriggerLedgerChanged(amqp.ActionDeleted, index).
		NotifySuccess(fmt.Sprintf("Transaction %d deleted", index)))
}

// handleReset replaces the session ledger with the seed data.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.ledger.Reset(r.Context(), sessionFrom(r.Context())); err != nil {
		s.logFailure(r, "Failed to reset ledger", err, applog.OpReset)
		ServerError("Unable to reset the ledger").Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.resets, 1)

	// The seed has its own date bounds; drop the old filter.
	s.finish(w, r, RangeParams{}, NewReply().
		TriggerLedgerChanged(amqp.ActionReset, -1).
		NotifySuccess("Ledger reset to sample data"))
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrInvalidCategory) ||
		errors.Is(err, core.ErrInvalidDate)
}
