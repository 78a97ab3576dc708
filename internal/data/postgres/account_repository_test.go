package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testAccount(id uuid.UUID, now time.Time) *account.Account {
	return &account.Account{
		ID:            id,
		UserID:        uuid.New(),
		FullName:      "Test User",
		Email:         "test@example.com",
		AccountNumber: "12345678",
		RoutingNumber: "021000021",
		Balance:       1000,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

const accountColumnsQuery = `id, user_id, full_name, email, account_number, routing_number, balance, pin_hash, version, created_at, updated_at`

func accountRows(acc *account.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "full_name", "email", "account_number", "routing_number", "balance", "pin_hash", "version", "created_at", "updated_at"}).
		AddRow(acc.ID, acc.UserID, acc.FullName, acc.Email, acc.AccountNumber, acc.RoutingNumber, acc.Balance, acc.PinHash, acc.Version, acc.CreatedAt, acc.UpdatedAt)
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	acc := testAccount(uuid.New(), time.Now())

	query := `
		INSERT INTO accounts \(id, user_id, full_name, email, account_number, routing_number, balance, pin_hash, version, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.UserID, acc.FullName, acc.Email, acc.AccountNumber, acc.RoutingNumber, acc.Balance, acc.PinHash, acc.Version, acc.CreatedAt, acc.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.UserID, acc.FullName, acc.Email, acc.AccountNumber, acc.RoutingNumber, acc.Balance, acc.PinHash, acc.Version, acc.CreatedAt, acc.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, acc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	accID := uuid.New()
	expectedAccount := testAccount(accID, time.Now())

	query := `
		SELECT ` + accountColumnsQuery + `
		FROM accounts
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.GetByID(ctx, accID)
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByID(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.Equal(t, accID, accNotFoundErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(dbErr)

		acc, err := repo.GetByID(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to get account")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByUserID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expectedAccount := testAccount(uuid.New(), time.Now())
	userID := expectedAccount.UserID

	query := `
		SELECT ` + accountColumnsQuery + `
		FROM accounts
		WHERE user_id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.GetByUserID(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByUserID(ctx, userID)
		assert.NoError(t, err) // No error, just nil account
		assert.Nil(t, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(userID).WillReturnError(dbErr)

		acc, err := repo.GetByUserID(ctx, userID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to get account by user ID")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	acc := testAccount(uuid.New(), time.Now())
	acc.Version = 2 // Simulating an update after one prior write

	query := `
		UPDATE accounts
		SET full_name = \$1, email = \$2, balance = \$3, pin_hash = \$4, version = \$5, updated_at = \$6
		WHERE id = \$7 AND version = \$8
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.FullName, acc.Email, acc.Balance, acc.PinHash, acc.Version, acc.UpdatedAt, acc.ID, acc.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent modification", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.FullName, acc.Email, acc.Balance, acc.PinHash, acc.Version, acc.UpdatedAt, acc.ID, acc.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, acc)
		assert.Error(t, err)
		var concurrentErr account.ErrConcurrentModification
		assert.ErrorAs(t, err, &concurrentErr)
		assert.Equal(t, acc.ID, concurrentErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectExec(query).
			WithArgs(acc.FullName, acc.Email, acc.Balance, acc.PinHash, acc.Version, acc.UpdatedAt, acc.ID, acc.Version-1).
			WillReturnError(dbErr)

		err := repo.Update(ctx, acc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update account")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_SetPinHash(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	accID := uuid.New()
	pinHash := "$2a$04$abcdefghijklmnopqrstuv"

	query := `
		UPDATE accounts
		SET pin_hash = \$1, updated_at = NOW\(\)
		WHERE id = \$2
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(pinHash, accID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.SetPinHash(ctx, accID, pinHash)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("account not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(pinHash, accID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetPinHash(ctx, accID, pinHash)
		assert.Error(t, err)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	accID := uuid.New()
	expectedAccount := testAccount(accID, time.Now())

	query := `
		SELECT ` + accountColumnsQuery + `
		FROM accounts
		WHERE id = \$1
		FOR UPDATE
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.LockForUpdate(ctx, accID)
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.LockForUpdate(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
