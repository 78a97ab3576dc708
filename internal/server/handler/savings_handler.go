package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/savings"
	savingssvc "github.com/novaapay/banking-core/internal/savings"
)

// SavingsHandler handles savings goal operations
type SavingsHandler struct {
	tracker *savingssvc.Tracker
	logger  *slog.Logger
}

// NewSavingsHandler creates a new savings handler
func NewSavingsHandler(logger *slog.Logger, tracker *savingssvc.Tracker) *SavingsHandler {
	return &SavingsHandler{
		tracker: tracker,
		logger:  logger,
	}
}

// Create opens a new savings goal for the account
func (h *SavingsHandler) Create(c *gin.Context) {
	accountID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	goal, err := h.tracker.CreateGoal(c.Request.Context(), accountID, req.Name, req.TargetAmount)
	if err != nil {
		switch {
		case errors.Is(err, savings.ErrInvalidTarget), errors.Is(err, savings.ErrEmptyGoalName):
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create savings goal", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapGoalToResponse(goal))
}

// List returns the account's savings goals
func (h *SavingsHandler) List(c *gin.Context) {
	accountID, ok := parseIDParam(c)
	if !ok {
		return
	}

	goals, err := h.tracker.ListGoals(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to list savings goals", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	response := GoalListResponse{Goals: make([]GoalResponse, 0, len(goals))}
	for _, g := range goals {
		response.Goals = append(response.Goals, mapGoalToResponse(g))
	}
	RespondOK(c, response)
}

// AddFunds moves money into a goal
func (h *SavingsHandler) AddFunds(c *gin.Context) {
	h.moveFunds(c, h.tracker.AddFunds)
}

// Withdraw moves money out of a goal
func (h *SavingsHandler) Withdraw(c *gin.Context) {
	h.moveFunds(c, h.tracker.Withdraw)
}

func (h *SavingsHandler) moveFunds(c *gin.Context, op func(ctx context.Context, goalID uuid.UUID, amount int64) (*savings.Goal, error)) {
	goalID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req GoalFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	goal, err := op(c.Request.Context(), goalID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, savings.ErrGoalNotFound{}):
			RespondNotFound(c, "Savings goal not found")
			return
		case errors.Is(err, savings.ErrInvalidAmount):
			RespondBadRequest(c, "Amount must be greater than 0")
			return
		case errors.Is(err, savings.ErrExceedsBalance):
			RespondWithFieldErrors(c, map[string]string{"amount": "Amount exceeds goal balance"})
			return
		}
		h.logger.Error("Failed to move goal funds", "goal_id", goalID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapGoalToResponse(goal))
}

func mapGoalToResponse(goal *savings.Goal) GoalResponse {
	return GoalResponse{
		ID:            goal.ID.String(),
		AccountID:     goal.AccountID.String(),
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Progress:      goal.Progress(),
		CreatedAt:     goal.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     goal.UpdatedAt.Format(time.RFC3339),
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}
