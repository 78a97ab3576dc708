package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/transaction"
	"github.com/novaapay/banking-core/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for
// PostgreSQL. The transactions table is insert-only.
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the insert commits
// atomically with the balance update.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a committed transaction record
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, description, amount, type, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.AccountID,
		txn.Description,
		txn.Amount,
		txn.Type,
		txn.BalanceAfter,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT id, account_id, description, amount, type, balance_after, created_at
		FROM transactions
		WHERE id = $1
	`

	var txn transaction.Transaction
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Description,
		&txn.Amount,
		&txn.Type,
		&txn.BalanceAfter,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txn, nil
}
