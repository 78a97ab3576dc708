package savings

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidTarget  = errors.New("target amount must be positive")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrEmptyGoalName  = errors.New("goal name cannot be empty")
	ErrExceedsBalance = errors.New("withdrawal exceeds saved amount")
)

// Goal is a named savings target. CurrentAmount moves through signed store
// adjustments that keep it at or above zero.
type Goal struct {
	ID            uuid.UUID `json:"id"`
	AccountID     uuid.UUID `json:"account_id"`
	Name          string    `json:"name"`
	TargetAmount  int64     `json:"target_amount"`  // Minor units, > 0
	CurrentAmount int64     `json:"current_amount"` // Minor units, >= 0, may overshoot target
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewGoal creates a goal starting at zero saved
func NewGoal(accountID uuid.UUID, name string, targetAmount int64) (*Goal, error) {
	if name == "" {
		return nil, ErrEmptyGoalName
	}
	if targetAmount <= 0 {
		return nil, ErrInvalidTarget
	}

	return &Goal{
		ID:            uuid.New(),
		AccountID:     accountID,
		Name:          name,
		TargetAmount:  targetAmount,
		CurrentAmount: 0,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil
}

// Progress returns saved/target as a percentage, uncapped
func (g *Goal) Progress() float64 {
	return float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
}
