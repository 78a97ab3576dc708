// Package savings implements savings goal tracking: named targets owned by
// an account, funded incrementally and withdrawn from explicitly. Goal
// funds are bookkeeping only and never touch the account ledger balance.
package savings

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/savings"
	"github.com/novaapay/banking-core/internal/domain/shared"
)

// Tracker manages savings goals
type Tracker struct {
	repo   savings.Repository
	logger *slog.Logger
}

// NewTracker creates a new savings tracker
func NewTracker(repo savings.Repository, logger *slog.Logger) *Tracker {
	return &Tracker{repo: repo, logger: logger}
}

// CreateGoal creates a goal with zero progress
func (t *Tracker) CreateGoal(ctx context.Context, accountID uuid.UUID, name string, target int64) (*savings.Goal, error) {
	goal, err := savings.NewGoal(accountID, name, target)
	if err != nil {
		return nil, err
	}

	if err := t.repo.Create(ctx, goal); err != nil {
		return nil, shared.StoreError{Op: "create goal", Err: err}
	}

	t.logger.Info("Savings goal created",
		"goal_id", goal.ID.String(),
		"account_id", accountID.String(),
		"target", target,
	)
	return goal, nil
}

// AddFunds increments a goal's saved amount. There is no cap: funding past
// the target is allowed and shows as progress above 100%. The increment is
// applied in the store, so concurrent deposits all land.
func (t *Tracker) AddFunds(ctx context.Context, goalID uuid.UUID, amount int64) (*savings.Goal, error) {
	if amount <= 0 {
		return nil, savings.ErrInvalidAmount
	}

	goal, err := t.adjust(ctx, goalID, amount)
	if err != nil {
		return nil, err
	}

	t.logger.Info("Funds added to savings goal",
		"goal_id", goal.ID.String(),
		"amount", amount,
		"current", goal.CurrentAmount,
	)
	return goal, nil
}

// Withdraw decrements a goal's saved amount, never below zero
func (t *Tracker) Withdraw(ctx context.Context, goalID uuid.UUID, amount int64) (*savings.Goal, error) {
	if amount <= 0 {
		return nil, savings.ErrInvalidAmount
	}

	goal, err := t.adjust(ctx, goalID, -amount)
	if err != nil {
		return nil, err
	}

	t.logger.Info("Funds withdrawn from savings goal",
		"goal_id", goal.ID.String(),
		"amount", amount,
		"current", goal.CurrentAmount,
	)
	return goal, nil
}

func (t *Tracker) adjust(ctx context.Context, goalID uuid.UUID, delta int64) (*savings.Goal, error) {
	goal, err := t.repo.AdjustAmount(ctx, goalID, delta)
	if err != nil {
		if errors.Is(err, savings.ErrGoalNotFound{}) || errors.Is(err, savings.ErrExceedsBalance) {
			return nil, err
		}
		return nil, shared.StoreError{Op: "adjust goal", Err: err}
	}
	return goal, nil
}

// ListGoals returns all goals owned by the account
func (t *Tracker) ListGoals(ctx context.Context, accountID uuid.UUID) ([]*savings.Goal, error) {
	goals, err := t.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, shared.StoreError{Op: "list goals", Err: err}
	}
	return goals, nil
}
