// Package postgres provides PostgreSQL implementations of the domain repositories.
// It is the system of record for accounts, transactions, savings goals, one-time
// codes, and the transactional outbox.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/novaapay/banking-core/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account in the database
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, full_name, email, account_number, routing_number, balance, pin_hash, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.UserID,
		acc.FullName,
		acc.Email,
		acc.AccountNumber,
		acc.RoutingNumber,
		acc.Balance,
		acc.PinHash,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, user_id, full_name, email, account_number, routing_number, balance, pin_hash, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.UserID,
		&acc.FullName,
		&acc.Email,
		&acc.AccountNumber,
		&acc.RoutingNumber,
		&acc.Balance,
		&acc.PinHash,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// GetByUserID retrieves the account owned by a user.
// Returns nil, nil when the user has no account yet.
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, user_id, full_name, email, account_number, routing_number, balance, pin_hash, version, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&acc.ID,
		&acc.UserID,
		&acc.FullName,
		&acc.Email,
		&acc.AccountNumber,
		&acc.RoutingNumber,
		&acc.Balance,
		&acc.PinHash,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by user ID", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account by user ID: %w", err)
	}

	return &acc, nil
}

// Update updates an existing account in the database
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET full_name = $1, email = $2, balance = $3, pin_hash = $4, version = $5, updated_at = $6
		WHERE id = $7 AND version = $8
	`

	result, err := r.querier.Exec(ctx, query,
		acc.FullName,
		acc.Email,
		acc.Balance,
		acc.PinHash,
		acc.Version,
		acc.UpdatedAt,
		acc.ID,
		acc.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update account", "id", acc.ID.String(), "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{AccountID: acc.ID}
	}

	return nil
}

// SetPinHash overwrites the stored transfer PIN digest for the account
func (r *AccountRepository) SetPinHash(ctx context.Context, id uuid.UUID, pinHash string) error {
	query := `
		UPDATE accounts
		SET pin_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, pinHash, id)
	if err != nil {
		r.logger.Error("Failed to set PIN hash", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set PIN hash: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the account and returns its current state.
// Used within a transaction when admission needs the balance check and the write
// to be atomic against concurrent admissions on the same account.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, user_id, full_name, email, account_number, routing_number, balance, pin_hash, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.UserID,
		&acc.FullName,
		&acc.Email,
		&acc.AccountNumber,
		&acc.RoutingNumber,
		&acc.Balance,
		&acc.PinHash,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return &acc, nil
}
