package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/store"
)

// EventPublisher receives ledger change events. *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// LedgerService applies session ledger mutations and announces them.
type LedgerService struct {
	store     store.LedgerStore
	publisher EventPublisher
}

// NewLedgerService wires a store with an optional publisher (nil disables
// events).
func NewLedgerService(st store.LedgerStore, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     st,
		publisher: publisher,
	}
}

// AddTransaction appends tx to the session ledger and returns its index.
func (s *LedgerService) AddTransaction(ctx context.Context, session string, tx core.Transaction) (int, error) {
	index, err := s.store.Append(ctx, session, tx)
	if err != nil {
		return -1, fmt.Errorf("add transaction: %w", err)
	}

	s.publish(ctx, amqp.NewTransactionEvent(session, amqp.ActionAdded, index, tx))
	return index, nil
}

// DeleteTransaction removes the transaction at index of the unfiltered
// session ledger.
func (s *LedgerService) DeleteTransaction(ctx context.Context, session string, index int) (core.Transaction, error) {
	removed, err := s.store.Delete(ctx, session, index)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.NewTransactionEvent(session, amqp.ActionDeleted, index, removed))
	return removed, nil
}

// Reset replaces the session ledger with the seed dataset.
func (s *LedgerService) Reset(ctx context.Context, session string) error {
	if err := s.store.Reset(ctx, session); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}

	s.publish(ctx, amqp.NewResetEvent(session))
	return nil
}

// Ledger returns a snapshot of the session ledger.
func (s *LedgerService) Ledger(ctx context.Context, session string) (*ledger.Ledger, error) {
	l, err := s.store.Snapshot(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return l, nil
}

// Dashboard computes the view of the session ledger for [start, end]. A nil
// bound defaults to the ledger's first or last date.
func (s *LedgerService) Dashboard(ctx context.Context, session string, start, end *core.Date) (ledger.Dashboard, error) {
	l, err := s.Ledger(ctx, session)
	if err != nil {
		return ledger.Dashboard{}, err
	}

	first, last := ledger.DefaultRange(l)
	if start != nil {
		first = *start
	}
	if end != nil {
		last = *end
	}
	return ledger.Summarize(l, first, last), nil
}

// publish never fails the caller: the ledger change has already happened.
func (s *LedgerService) publish(ctx context.Context, event *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", event.Action,
			"session", event.Session,
			"index", event.Index,
			"error", err)
	}
}

// Close releases the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}
