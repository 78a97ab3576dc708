package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/otp"
)

// AuthHandler handles the email verification challenge endpoints. It keeps
// one challenge session per email so the resend cooldown survives across
// requests from the same user.
type AuthHandler struct {
	challenge otp.Challenger
	cooldown  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*otp.Session
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, challenge otp.Challenger, cooldown time.Duration) *AuthHandler {
	return &AuthHandler{
		challenge: challenge,
		cooldown:  cooldown,
		logger:    logger,
		sessions:  make(map[string]*otp.Session),
	}
}

// SendCode issues (or re-issues) a verification code for the email. Inside
// the resend cooldown nothing is sent and the remaining wait is reported.
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	session := h.session(userID, req.Email)
	remaining, err := session.Send(c.Request.Context())
	if err != nil {
		var deliveryErr shared.DeliveryError
		if errors.As(err, &deliveryErr) {
			h.logger.Error("Code delivery failed", "email", req.Email, "error", err)
			RespondWithError(c, http.StatusBadGateway, "DELIVERY_FAILED", "Could not deliver the verification code")
			return
		}
		h.logger.Error("Failed to issue verification code", "email", req.Email, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, SendCodeResponse{
		Success:           true,
		RetryAfterSeconds: int64(remaining / time.Second),
	})
}

// VerifyCode checks a submitted verification code
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.challenge.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCode):
			RespondUnauthorized(c, "Invalid or expired verification code")
			return
		case errors.Is(err, shared.ErrCodeLocked):
			RespondLocked(c, "Too many failed attempts, try again later")
			return
		}
		h.logger.Error("Failed to verify code", "email", req.Email, "error", err)
		RespondInternalError(c)
		return
	}

	h.forget(req.Email)
	RespondOK(c, VerifyCodeResponse{Success: true})
}

func (h *AuthHandler) session(userID uuid.UUID, email string) *otp.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[email]; ok {
		return s
	}
	s := otp.NewSession(h.challenge, h.cooldown, userID, email)
	h.sessions[email] = s
	return s
}

func (h *AuthHandler) forget(email string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, email)
}
