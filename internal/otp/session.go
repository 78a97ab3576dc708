package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/otp"
	"github.com/novaapay/banking-core/internal/domain/shared"
)

// SessionState is the login challenge lifecycle state
type SessionState string

const (
	SessionIdle      SessionState = "IDLE"
	SessionSending   SessionState = "SENDING"
	SessionSent      SessionState = "SENT"
	SessionVerifying SessionState = "VERIFYING"
	SessionVerified  SessionState = "VERIFIED"
)

// Challenger is the part of Challenge a session depends on
type Challenger interface {
	Issue(ctx context.Context, userID uuid.UUID, email string) (*otp.Code, error)
	Verify(ctx context.Context, email, submitted string) error
}

// Session tracks one user's login challenge from first send through
// verification. It enforces the resend cooldown: asking for another code
// inside the cooldown does nothing and reports the remaining wait.
type Session struct {
	challenge Challenger
	cooldown  time.Duration
	userID    uuid.UUID
	email     string

	mu         sync.Mutex
	state      SessionState
	lastSentAt time.Time

	now func() time.Time
}

// NewSession starts an idle challenge session for the user
func NewSession(challenge Challenger, cooldown time.Duration, userID uuid.UUID, email string) *Session {
	return &Session{
		challenge: challenge,
		cooldown:  cooldown,
		userID:    userID,
		email:     email,
		state:     SessionIdle,
		now:       time.Now,
	}
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Send issues a code, or re-issues one when called again. Inside the
// cooldown window the call is a no-op and the remaining wait is returned.
// A delivery failure keeps the session usable: the stored code is valid,
// so the state stays SENT and the caller may retry after the cooldown.
func (s *Session) Send(ctx context.Context) (time.Duration, error) {
	s.mu.Lock()
	switch s.state {
	case SessionIdle, SessionSent:
	case SessionVerified:
		s.mu.Unlock()
		return 0, fmt.Errorf("challenge already verified")
	default:
		s.mu.Unlock()
		return 0, fmt.Errorf("send not allowed in state %s", s.state)
	}

	if !s.lastSentAt.IsZero() {
		if elapsed := s.now().Sub(s.lastSentAt); elapsed < s.cooldown {
			s.mu.Unlock()
			return s.cooldown - elapsed, nil
		}
	}

	prev := s.state
	s.state = SessionSending
	s.mu.Unlock()

	_, err := s.challenge.Issue(ctx, s.userID, s.email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		var deliveryErr shared.DeliveryError
		if errors.As(err, &deliveryErr) {
			// Code was stored before delivery failed
			s.state = SessionSent
			s.lastSentAt = s.now()
			return 0, err
		}
		s.state = prev
		return 0, err
	}

	s.state = SessionSent
	s.lastSentAt = s.now()
	return 0, nil
}

// Verify submits a code. A failed attempt returns the session to SENT so
// the user can try again or ask for a resend.
func (s *Session) Verify(ctx context.Context, code string) error {
	s.mu.Lock()
	if s.state != SessionSent {
		s.mu.Unlock()
		return fmt.Errorf("verify not allowed in state %s", s.state)
	}
	s.state = SessionVerifying
	s.mu.Unlock()

	err := s.challenge.Verify(ctx, s.email, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = SessionSent
		return err
	}
	s.state = SessionVerified
	return nil
}
