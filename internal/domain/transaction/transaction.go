package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/shared"
)

// Transaction is one committed ledger movement. Records are immutable once
// committed; corrections are modeled as new offsetting transactions.
type Transaction struct {
	ID           uuid.UUID        `json:"id" bson:"transaction_id"`
	AccountID    uuid.UUID        `json:"account_id" bson:"account_id"`
	Description  string           `json:"description" bson:"description"`
	Amount       int64            `json:"amount" bson:"amount"` // Signed minor units, DR negative
	Type         shared.Direction `json:"type" bson:"type"`
	BalanceAfter int64            `json:"balance_after" bson:"balance_after"`
	CreatedAt    time.Time        `json:"created_at" bson:"created_at"`
}

// New builds a transaction for a positive magnitude and a direction.
// The stored amount carries the sign, so display code only looks at Type.
func New(accountID uuid.UUID, description string, amount int64, direction shared.Direction, balanceAfter int64) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Description:  description,
		Amount:       direction.Signed(amount),
		Type:         direction,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now().UTC(),
	}
}

// Magnitude returns the unsigned amount for display purposes
func (t *Transaction) Magnitude() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
