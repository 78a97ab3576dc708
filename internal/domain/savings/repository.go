package savings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines savings goal persistence operations
type Repository interface {
	Create(ctx context.Context, goal *Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*Goal, error)
	// AdjustAmount applies a signed delta to the goal's saved amount and
	// returns the updated row. The store enforces the zero floor, so
	// concurrent adjustments cannot lose increments or go negative: a delta
	// that would breach the floor reports ErrExceedsBalance.
	AdjustAmount(ctx context.Context, id uuid.UUID, delta int64) (*Goal, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrGoalNotFound indicates missing savings goal
type ErrGoalNotFound struct {
	GoalID uuid.UUID
}

func (e ErrGoalNotFound) Error() string {
	return "savings goal not found: " + e.GoalID.String()
}

// Is implements errors.Is matching. A target with a nil goal ID matches any
// ErrGoalNotFound.
func (e ErrGoalNotFound) Is(target error) bool {
	t, ok := target.(ErrGoalNotFound)
	if !ok {
		return false
	}
	if t.GoalID == uuid.Nil {
		return true
	}
	return e.GoalID == t.GoalID
}
