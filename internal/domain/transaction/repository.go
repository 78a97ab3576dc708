package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository is the system-of-record store for committed transactions.
// Insert-only: no update or delete operations exist.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	WithTx(tx pgx.Tx) Repository
}

// FeedRepository is the read model behind the dashboard transaction list.
// It is refreshed asynchronously from committed admissions.
type FeedRepository interface {
	Upsert(ctx context.Context, txn *Transaction) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// ErrTransactionNotFound indicates missing transaction record
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// Is implements errors.Is matching. A target with a nil ID matches any
// ErrTransactionNotFound.
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
