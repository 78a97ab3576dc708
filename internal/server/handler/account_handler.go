package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/novaapay/banking-core/internal/ledger"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService ledger.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService ledger.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create handles opening a new account
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), userID, req.FullName, req.Email, req.AccountNumber, req.RoutingNumber, req.InitialBalance)
	if err != nil {
		var duplicateErr ledger.ErrDuplicateUser
		if errors.As(err, &duplicateErr) {
			h.logger.Warn("Attempt to open a second account", "user_id", duplicateErr.UserID.String())
			RespondConflict(c, "Account already exists for this user")
			return
		}
		switch {
		case errors.Is(err, account.ErrEmptyFullName),
			errors.Is(err, account.ErrInvalidAccountNumber),
			errors.Is(err, account.ErrInvalidRoutingNumber),
			errors.Is(err, account.ErrInvalidAmount):
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:            acc.ID.String(),
		UserID:        acc.UserID.String(),
		FullName:      acc.FullName,
		Email:         acc.Email,
		AccountNumber: acc.AccountNumber,
		RoutingNumber: acc.RoutingNumber,
		Balance:       acc.Balance,
		HasPin:        acc.HasPin(),
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     acc.UpdatedAt.Format(time.RFC3339),
	}
}
