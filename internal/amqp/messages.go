package amqp

import (
	"encoding/json"
	"time"

	"cashflow/internal/core"
)

// Actions carried by TransactionEvent.
const (
	ActionAdded   = "transaction.added"
	ActionDeleted = "transaction.deleted"
	ActionReset   = "ledger.reset"
)

// TransactionEvent describes one change to a session ledger. Index is the
// position in the unfiltered ledger at the time of the change.
type TransactionEvent struct {
	Session   string    `json:"session"`
	Action    string    `json:"action"`
	Index     int       `json:"index"`
	Date      string    `json:"date,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Category  string    `json:"category,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent builds an event for tx stamped with the current time.
func NewTransactionEvent(session, action string, index int, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Session:   session,
		Action:    action,
		Index:     index,
		Date:      tx.Date.String(),
		Kind:      tx.Kind.String(),
		Category:  tx.Category,
		Amount:    tx.Amount.String(),
		Timestamp: time.Now(),
	}
}

// NewResetEvent builds the event emitted when a ledger is re-seeded.
func NewResetEvent(session string) *TransactionEvent {
	return &TransactionEvent{
		Session:   session,
		Action:    ActionReset,
		Index:     -1,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
