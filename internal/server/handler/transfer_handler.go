package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/config"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/ledger"
	"github.com/novaapay/banking-core/internal/transfer"
)

// TransferHandler drives the money-movement flows over HTTP. Each request
// runs one flow from form submission through completion.
type TransferHandler struct {
	admitter  ledger.Admitter
	pins      transfer.PinGate
	accounts  account.Repository
	scheduler transfer.Scheduler
	cfg       *config.TransferConfig
	logger    *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(
	logger *slog.Logger,
	admitter ledger.Admitter,
	pins transfer.PinGate,
	accounts account.Repository,
	scheduler transfer.Scheduler,
	cfg *config.TransferConfig,
) *TransferHandler {
	return &TransferHandler{
		admitter:  admitter,
		pins:      pins,
		accounts:  accounts,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
	}
}

// Send runs an outgoing transfer: form validation, the PIN gate, then
// admission. When the account has no PIN on file the request must carry a
// confirmation entry and this call sets the PIN up.
func (h *TransferHandler) Send(c *gin.Context) {
	var req SendMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	flow := transfer.NewSendMoneyFlow(accountID, h.admitter, h.pins, h.accounts, h.cfg.SuccessDisplayTime, h.logger)

	form := transfer.SendMoneyForm{
		RecipientName: req.RecipientName,
		AccountNumber: req.AccountNumber,
		RoutingNumber: req.RoutingNumber,
		Amount:        req.Amount,
	}
	if err := flow.Submit(c.Request.Context(), form); err != nil {
		h.respondFlowError(c, err)
		return
	}

	switch flow.State() {
	case transfer.StatePinSetup:
		if req.Confirm == "" {
			RespondBadRequest(c, "PIN confirmation required for first transfer")
			return
		}
		err = flow.SetupPin(c.Request.Context(), req.Pin, req.Confirm)
	case transfer.StatePinVerify:
		err = flow.EnterPin(c.Request.Context(), req.Pin)
	default:
		h.logger.Error("Unexpected flow state after submit", "state", string(flow.State()))
		RespondInternalError(c)
		return
	}
	if err != nil {
		h.respondFlowError(c, err)
		return
	}

	RespondOK(c, TransferStatusResponse{Status: string(transfer.StateSuccess)})
}

// Add runs a deposit flow
func (h *TransferHandler) Add(c *gin.Context) {
	var req AddMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	flow := transfer.NewAddMoneyFlow(accountID, h.admitter, h.cfg.SuccessDisplayTime, h.logger)
	if err := flow.Submit(c.Request.Context(), req.Amount, transfer.FundingSource(req.Source)); err != nil {
		h.respondFlowError(c, err)
		return
	}

	RespondOK(c, TransferStatusResponse{Status: string(transfer.StateSuccess)})
}

// Request creates a payment request link and schedules its fulfillment
func (h *TransferHandler) Request(c *gin.Context) {
	var req RequestMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	flow := transfer.NewRequestMoneyFlow(accountID, h.admitter, h.scheduler, h.cfg.RequestFulfillment, h.cfg.SuccessDisplayTime, h.logger)
	link, err := flow.Submit(c.Request.Context(), req.Amount, req.Note)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}

	RespondAccepted(c, RequestMoneyResponse{Link: link})
}

func (h *TransferHandler) respondFlowError(c *gin.Context, err error) {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		RespondWithFieldErrors(c, verr.Fields)
	case errors.Is(err, account.ErrInsufficientFunds):
		RespondWithFieldErrors(c, map[string]string{"amount": "Insufficient balance"})
	case errors.Is(err, transfer.ErrPinMismatch):
		RespondBadRequest(c, "PINs do not match")
	case errors.Is(err, shared.ErrInvalidPin):
		RespondUnauthorized(c, "Incorrect PIN")
	case errors.Is(err, shared.ErrPinLocked):
		RespondLocked(c, "Too many failed attempts, try again later")
	case errors.Is(err, transfer.ErrFlowBusy):
		RespondConflict(c, "Transfer already in progress")
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")
	default:
		h.logger.Error("Transfer failed", "error", err)
		RespondInternalError(c)
	}
}
