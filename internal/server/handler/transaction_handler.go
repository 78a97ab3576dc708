package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/transaction"
)

// TransactionHandler serves the transaction feed read model
type TransactionHandler struct {
	feedRepo transaction.FeedRepository
	logger   *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, feedRepo transaction.FeedRepository) *TransactionHandler {
	return &TransactionHandler{
		feedRepo: feedRepo,
		logger:   logger,
	}
}

// GetByAccountID returns a page of the account's transaction feed, newest
// first. The feed is projected asynchronously, so a just-committed
// transaction may lag behind the account balance briefly.
func (h *TransactionHandler) GetByAccountID(c *gin.Context) {
	idParam := c.Param("id")
	accountID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	offset := (params.Page - 1) * params.PerPage
	txns, err := h.feedRepo.GetByAccountID(c.Request.Context(), accountID, params.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to read transaction feed", "account_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	total, err := h.feedRepo.CountByAccountID(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to count transaction feed", "account_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	response := TransactionListResponse{Transactions: make([]TransactionResponse, 0, len(txns))}
	for _, txn := range txns {
		response.Transactions = append(response.Transactions, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, response, params.Page, params.PerPage, int(total))
}

func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           txn.ID.String(),
		AccountID:    txn.AccountID.String(),
		Description:  txn.Description,
		Amount:       txn.Amount,
		Type:         string(txn.Type),
		BalanceAfter: txn.BalanceAfter,
		CreatedAt:    txn.CreatedAt.Format(time.RFC3339),
	}
}
