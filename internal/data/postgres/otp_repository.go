package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/otp"
	"github.com/novaapay/banking-core/internal/platform/persistence"
)

// OTPRepository implements the otp.Repository interface for PostgreSQL.
// The otp_codes table keeps one live row per email; issuing a new code
// overwrites the previous one instead of stacking rows.
type OTPRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOTPRepository creates a new PostgreSQL one-time code repository
func NewOTPRepository(logger *slog.Logger, db *persistence.PostgresDB) otp.Repository {
	return &OTPRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Upsert stores a code, superseding any previous code for the same email
func (r *OTPRepository) Upsert(ctx context.Context, code *otp.Code) error {
	query := `
		INSERT INTO otp_codes (user_id, email, code, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    code = EXCLUDED.code,
		    issued_at = EXCLUDED.issued_at,
		    expires_at = EXCLUDED.expires_at,
		    consumed = EXCLUDED.consumed
	`

	_, err := r.querier.Exec(ctx, query,
		code.UserID,
		code.Email,
		code.Code,
		code.IssuedAt,
		code.ExpiresAt,
		code.Consumed,
	)
	if err != nil {
		r.logger.Error("Failed to upsert verification code", "email", code.Email, "error", err)
		return fmt.Errorf("failed to upsert verification code: %w", err)
	}

	return nil
}

// GetByEmail retrieves the most recent code for an email
func (r *OTPRepository) GetByEmail(ctx context.Context, email string) (*otp.Code, error) {
	query := `
		SELECT user_id, email, code, issued_at, expires_at, consumed
		FROM otp_codes
		WHERE email = $1
	`

	var code otp.Code
	err := r.querier.QueryRow(ctx, query, email).Scan(
		&code.UserID,
		&code.Email,
		&code.Code,
		&code.IssuedAt,
		&code.ExpiresAt,
		&code.Consumed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, otp.ErrCodeNotFound{Email: email}
		}
		r.logger.Error("Failed to get verification code", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get verification code: %w", err)
	}

	return &code, nil
}

// MarkConsumed flags the code for an email as used so it cannot match again.
// The consumed = FALSE guard makes consumption a compare-and-set: of two
// concurrent verifications only one can flip the row.
func (r *OTPRepository) MarkConsumed(ctx context.Context, email, code string) error {
	query := `
		UPDATE otp_codes
		SET consumed = TRUE
		WHERE email = $1 AND code = $2 AND consumed = FALSE
	`

	result, err := r.querier.Exec(ctx, query, email, code)
	if err != nil {
		r.logger.Error("Failed to mark verification code consumed", "email", email, "error", err)
		return fmt.Errorf("failed to mark verification code consumed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return otp.ErrCodeNotFound{Email: email}
	}

	return nil
}
