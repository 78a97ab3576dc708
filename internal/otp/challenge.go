package otp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/config"
	"github.com/novaapay/banking-core/internal/domain/otp"
	"github.com/novaapay/banking-core/internal/domain/shared"
)

// CodeSender delivers an issued passcode to its recipient
type CodeSender interface {
	SendVerificationCode(to, code string) error
}

// Challenge issues and verifies one-time passcodes. One live code exists
// per email; issuing again overwrites it. Codes are single-use and expire
// after the configured TTL.
type Challenge struct {
	cfg    *config.OTPConfig
	repo   otp.Repository
	sender CodeSender
	gen    CodeGenerator
	logger *slog.Logger

	mu       sync.Mutex
	failures map[string]*attemptState

	now func() time.Time
}

type attemptState struct {
	count       int
	lockedUntil time.Time
}

// NewChallenge creates a new OTP challenge service
func NewChallenge(
	cfg *config.OTPConfig,
	repo otp.Repository,
	sender CodeSender,
	gen CodeGenerator,
	logger *slog.Logger,
) *Challenge {
	return &Challenge{
		cfg:      cfg,
		repo:     repo,
		sender:   sender,
		gen:      gen,
		logger:   logger,
		failures: make(map[string]*attemptState),
		now:      time.Now,
	}
}

// Issue generates a fresh code for the email, stores it (superseding any
// previous code for the same address), and delivers it. When delivery
// fails the stored code remains valid and a DeliveryError is returned, so
// the caller can offer a resend instead of a full retry.
func (c *Challenge) Issue(ctx context.Context, userID uuid.UUID, email string) (*otp.Code, error) {
	code, err := c.gen.Generate()
	if err != nil {
		return nil, err
	}

	issued := otp.NewCode(userID, email, code, c.now(), c.cfg.TTL)
	if err := c.repo.Upsert(ctx, issued); err != nil {
		return nil, shared.StoreError{Op: "issue code", Err: err}
	}

	if err := c.sender.SendVerificationCode(email, code); err != nil {
		return issued, shared.DeliveryError{Recipient: email, Err: err}
	}

	c.logger.Info("Verification code issued", "email", email, "expires_at", issued.ExpiresAt)
	return issued, nil
}

// Verify checks a submitted code against the stored one. Input that is not
// exactly the configured number of digits is rejected before any lookup.
// Mismatched, consumed, and expired codes all report the same ErrInvalidCode;
// a match consumes the code so it cannot be replayed.
func (c *Challenge) Verify(ctx context.Context, email, submitted string) error {
	if !c.wellFormed(submitted) {
		return shared.ErrInvalidCode
	}

	if err := c.checkLocked(email); err != nil {
		return err
	}

	stored, err := c.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, otp.ErrCodeNotFound{}) {
			c.recordFailure(email)
			return shared.ErrInvalidCode
		}
		return shared.StoreError{Op: "get code", Err: err}
	}

	now := c.now()
	if stored.Consumed || stored.ExpiredAt(now) || !stored.Matches(submitted) {
		c.recordFailure(email)
		return shared.ErrInvalidCode
	}

	// Consumption is a conditional write in the store. Losing the race to a
	// concurrent verification surfaces as not-found and the code stays
	// single-use.
	if err := c.repo.MarkConsumed(ctx, email, submitted); err != nil {
		if errors.Is(err, otp.ErrCodeNotFound{}) {
			c.recordFailure(email)
			return shared.ErrInvalidCode
		}
		return shared.StoreError{Op: "consume code", Err: err}
	}

	c.clearFailures(email)
	c.logger.Info("Verification code accepted", "email", email)
	return nil
}

func (c *Challenge) wellFormed(submitted string) bool {
	if len(submitted) != c.cfg.CodeLength {
		return false
	}
	for _, r := range submitted {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// checkLocked reports ErrCodeLocked while the email is inside a lockout
// window. With MaxAttempts 0 the policy is disabled and this never locks.
func (c *Challenge) checkLocked(email string) error {
	if c.cfg.MaxAttempts <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.failures[email]
	if !ok {
		return nil
	}
	if c.now().Before(st.lockedUntil) {
		return shared.ErrCodeLocked
	}
	if !st.lockedUntil.IsZero() && !c.now().Before(st.lockedUntil) {
		// Lockout elapsed, start over
		delete(c.failures, email)
	}
	return nil
}

func (c *Challenge) recordFailure(email string) {
	if c.cfg.MaxAttempts <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.failures[email]
	if !ok {
		st = &attemptState{}
		c.failures[email] = st
	}
	st.count++
	if st.count >= c.cfg.MaxAttempts {
		st.lockedUntil = c.now().Add(c.cfg.LockoutPeriod)
		st.count = 0
		c.logger.Warn("Code verification locked",
			"email", email,
			"locked_until", st.lockedUntil,
		)
	}
}

func (c *Challenge) clearFailures(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.failures, email)
}
