package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/domain/transaction"
)

// Message stores a committed transaction awaiting publication to the feed
// read model. Rows are written in the same database transaction as the
// balance update, so a commit either carries its feed event or nothing.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	AccountID     uuid.UUID           `json:"account_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a committed transaction as a pending outbox row
func NewMessage(txn *transaction.Transaction) (*Message, error) {
	payload, err := json.Marshal(txn)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetTransaction extracts the committed transaction from the payload
func (m *Message) GetTransaction() (*transaction.Transaction, error) {
	var txn transaction.Transaction
	if err := json.Unmarshal(m.Payload, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
