package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/savings"
	"github.com/novaapay/banking-core/internal/platform/persistence"
)

// SavingsRepository implements the savings.Repository interface for PostgreSQL
type SavingsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSavingsRepository creates a new PostgreSQL savings goal repository
func NewSavingsRepository(logger *slog.Logger, db *persistence.PostgresDB) savings.Repository {
	return &SavingsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *SavingsRepository) WithTx(tx pgx.Tx) savings.Repository {
	return &SavingsRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new savings goal
func (r *SavingsRepository) Create(ctx context.Context, goal *savings.Goal) error {
	query := `
		INSERT INTO savings_goals (id, account_id, name, target_amount, current_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		goal.ID,
		goal.AccountID,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create savings goal", "error", err)
		return fmt.Errorf("failed to create savings goal: %w", err)
	}

	return nil
}

// GetByID retrieves a savings goal by its ID
func (r *SavingsRepository) GetByID(ctx context.Context, id uuid.UUID) (*savings.Goal, error) {
	query := `
		SELECT id, account_id, name, target_amount, current_amount, created_at, updated_at
		FROM savings_goals
		WHERE id = $1
	`

	var goal savings.Goal
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&goal.ID,
		&goal.AccountID,
		&goal.Name,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, savings.ErrGoalNotFound{GoalID: id}
		}
		r.logger.Error("Failed to get savings goal", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}

	return &goal, nil
}

// GetByAccountID retrieves all savings goals owned by an account
func (r *SavingsRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*savings.Goal, error) {
	query := `
		SELECT id, account_id, name, target_amount, current_amount, created_at, updated_at
		FROM savings_goals
		WHERE account_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to get savings goals", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get savings goals: %w", err)
	}
	defer rows.Close()

	var goals []*savings.Goal
	for rows.Next() {
		var goal savings.Goal
		err := rows.Scan(
			&goal.ID,
			&goal.AccountID,
			&goal.Name,
			&goal.TargetAmount,
			&goal.CurrentAmount,
			&goal.CreatedAt,
			&goal.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan savings goal", "error", err)
			return nil, fmt.Errorf("failed to scan savings goal: %w", err)
		}
		goals = append(goals, &goal)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over savings goals", "error", err)
		return nil, fmt.Errorf("error iterating over savings goals: %w", err)
	}

	return goals, nil
}

// AdjustAmount moves a goal's saved amount by delta in a single statement,
// so concurrent adjustments serialize on the row instead of overwriting each
// other. The floor guard rejects a delta that would take the amount negative.
func (r *SavingsRepository) AdjustAmount(ctx context.Context, id uuid.UUID, delta int64) (*savings.Goal, error) {
	query := `
		UPDATE savings_goals
		SET current_amount = current_amount + $1, updated_at = $2
		WHERE id = $3 AND current_amount + $1 >= 0
		RETURNING id, account_id, name, target_amount, current_amount, created_at, updated_at
	`

	var goal savings.Goal
	err := r.querier.QueryRow(ctx, query, delta, time.Now(), id).Scan(
		&goal.ID,
		&goal.AccountID,
		&goal.Name,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the goal does not exist or the delta breached the floor
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, savings.ErrExceedsBalance
		}
		r.logger.Error("Failed to adjust savings goal", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to adjust savings goal: %w", err)
	}

	return &goal, nil
}
