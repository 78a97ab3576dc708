package otp

import (
	"time"

	"github.com/google/uuid"
)

// Code is a one-time login passcode. One unconsumed code exists per
// (user, email) at a time; issuing a new one supersedes the previous row.
type Code struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"` // Fixed-length numeric string
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"` // IssuedAt + TTL
	Consumed  bool      `json:"consumed"`
}

// NewCode issues a code valid for ttl from now
func NewCode(userID uuid.UUID, email, code string, now time.Time, ttl time.Duration) *Code {
	return &Code{
		UserID:    userID,
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		Consumed:  false,
	}
}

// ExpiredAt reports whether the code is past its validity window at now.
// Expired codes are rejected even if never consumed; there is no leniency window.
func (c *Code) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Matches reports whether the submitted code equals the stored one
func (c *Code) Matches(submitted string) bool {
	return c.Code == submitted
}
