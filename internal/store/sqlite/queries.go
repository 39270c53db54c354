package sqlite

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	ID        int64
	SessionID string
	Date      string
	Kind      string
	Category  string
	Amount    string
}

const createSession = `INSERT OR IGNORE INTO sessions (id, created_at, touched_at) VALUES (?, ?, ?)`

// CreateSession returns true when the session did not exist yet.
func (q *Queries) CreateSession(ctx context.Context, id, now string) (bool, error) {
	res, err := q.db.ExecContext(ctx, createSession, id, now, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

const touchSession = `UPDATE sessions SET touched_at = ? WHERE id = ?`

func (q *Queries) TouchSession(ctx context.Context, id, now string) error {
	_, err := q.db.ExecContext(ctx, touchSession, now, id)
	return err
}

const countSessions = `SELECT COUNT(*) FROM sessions`

func (q *Queries) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countSessions).Scan(&n)
	return n, err
}

const deleteStaleTransactions = `DELETE FROM transactions WHERE session_id IN (SELECT id FROM sessions WHERE touched_at < ?)`

const deleteStaleSessions = `DELETE FROM sessions WHERE touched_at < ?`

// DeleteStaleSessions drops sessions untouched since cutoff with their rows.
func (q *Queries) DeleteStaleSessions(ctx context.Context, cutoff string) (int64, error) {
	if _, err := q.db.ExecContext(ctx, deleteStaleTransactions, cutoff); err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, deleteStaleSessions, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const insertTransaction = `INSERT INTO transactions (session_id, date, kind, category, amount) VALUES (?, ?, ?, ?, ?)`

type InsertTransactionParams struct {
	SessionID string
	Date      string
	Kind      string
	Category  string
	Amount    string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, insertTransaction, arg.SessionID, arg.Date, arg.Kind, arg.Category, arg.Amount)
	return err
}

const listTransactions = `SELECT id, session_id, date, kind, category, amount FROM transactions WHERE session_id = ? ORDER BY id`

func (q *Queries) ListTransactions(ctx context.Context, sessionID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.SessionID, &i.Date, &i.Kind, &i.Category, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTransactions = `SELECT COUNT(*) FROM transactions WHERE session_id = ?`

func (q *Queries) CountTransactions(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTransactions, sessionID).Scan(&n)
	return n, err
}

const transactionAt = `SELECT id, session_id, date, kind, category, amount FROM transactions WHERE session_id = ? ORDER BY id LIMIT 1 OFFSET ?`

// TransactionAt returns the row at a zero-based position in insertion order.
func (q *Queries) TransactionAt(ctx context.Context, sessionID string, offset int64) (TransactionRow, error) {
	var i TransactionRow
	err := q.db.QueryRowContext(ctx, transactionAt, sessionID, offset).
		Scan(&i.ID, &i.SessionID, &i.Date, &i.Kind, &i.Category, &i.Amount)
	return i, err
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, id)
	return err
}

const deleteSessionTransactions = `DELETE FROM transactions WHERE session_id = ?`

func (q *Queries) DeleteSessionTransactions(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, deleteSessionTransactions, sessionID)
	return err
}
