package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/pin"
)

// PinHandler handles transfer PIN setup and verification
type PinHandler struct {
	vault  *pin.Vault
	logger *slog.Logger
}

// NewPinHandler creates a new PIN handler
func NewPinHandler(logger *slog.Logger, vault *pin.Vault) *PinHandler {
	return &PinHandler{
		vault:  vault,
		logger: logger,
	}
}

// Setup sets the account's transfer PIN. The entry must be confirmed with
// an identical second value before anything is stored.
func (h *PinHandler) Setup(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req SetupPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if req.Pin != req.Confirm {
		RespondBadRequest(c, "PINs do not match")
		return
	}

	if err := h.vault.Setup(c.Request.Context(), accountID, req.Pin); err != nil {
		if errors.Is(err, pin.ErrInvalidPinFormat) {
			RespondBadRequest(c, "PIN must be exactly 4 digits")
			return
		}
		h.logger.Error("Failed to set PIN", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"success": true})
}

// Verify checks a submitted transfer PIN
func (h *PinHandler) Verify(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req VerifyPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	valid, err := h.vault.Verify(c.Request.Context(), accountID, req.Pin)
	if err != nil {
		if errors.Is(err, shared.ErrPinLocked) {
			RespondLocked(c, "Too many failed attempts, try again later")
			return
		}
		h.logger.Error("Failed to verify PIN", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, VerifyPinResponse{Valid: valid})
}

func (h *PinHandler) accountID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return uuid.Nil, false
	}
	return id, true
}
