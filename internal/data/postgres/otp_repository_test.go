package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/otp"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OTPRepository{querier: mock, logger: logger}

	now := time.Now()
	code := otp.NewCode(uuid.New(), "test@example.com", "483920", now, 5*time.Minute)

	query := `
		INSERT INTO otp_codes \(user_id, email, code, issued_at, expires_at, consumed\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
		ON CONFLICT \(email\) DO UPDATE
		SET user_id = EXCLUDED\.user_id,
		    code = EXCLUDED\.code,
		    issued_at = EXCLUDED\.issued_at,
		    expires_at = EXCLUDED\.expires_at,
		    consumed = EXCLUDED\.consumed
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(code.UserID, code.Email, code.Code, code.IssuedAt, code.ExpiresAt, code.Consumed).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Upsert(ctx, code)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(code.UserID, code.Email, code.Code, code.IssuedAt, code.ExpiresAt, code.Consumed).
			WillReturnError(expectedErr)

		err := repo.Upsert(ctx, code)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert verification code")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOTPRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OTPRepository{querier: mock, logger: logger}
	email := "test@example.com"
	now := time.Now()
	expectedCode := otp.NewCode(uuid.New(), email, "483920", now, 5*time.Minute)

	query := `
		SELECT user_id, email, code, issued_at, expires_at, consumed
		FROM otp_codes
		WHERE email = \$1
	`
	rows := pgxmock.NewRows([]string{"user_id", "email", "code", "issued_at", "expires_at", "consumed"}).
		AddRow(expectedCode.UserID, expectedCode.Email, expectedCode.Code, expectedCode.IssuedAt, expectedCode.ExpiresAt, expectedCode.Consumed)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(email).WillReturnRows(rows)

		code, err := repo.GetByEmail(ctx, email)
		assert.NoError(t, err)
		assert.Equal(t, expectedCode, code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(email).WillReturnError(pgx.ErrNoRows)

		code, err := repo.GetByEmail(ctx, email)
		assert.Error(t, err)
		assert.Nil(t, code)
		var notFoundErr otp.ErrCodeNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, email, notFoundErr.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(email).WillReturnError(dbErr)

		code, err := repo.GetByEmail(ctx, email)
		assert.Error(t, err)
		assert.Nil(t, code)
		assert.Contains(t, err.Error(), "failed to get verification code")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOTPRepository_MarkConsumed(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OTPRepository{querier: mock, logger: logger}
	email := "test@example.com"
	code := "483920"

	query := `
		UPDATE otp_codes
		SET consumed = TRUE
		WHERE email = \$1 AND code = \$2 AND consumed = FALSE
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(email, code).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.MarkConsumed(ctx, email, code)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no code for email", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(email, code).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.MarkConsumed(ctx, email, code)
		assert.Error(t, err)
		var notFoundErr otp.ErrCodeNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already consumed row matches zero rows", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(email, code).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.MarkConsumed(ctx, email, code)
		assert.ErrorIs(t, err, otp.ErrCodeNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
