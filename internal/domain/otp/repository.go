package otp

import (
	"context"
)

// Repository persists one-time codes. Upsert overwrites the live row for the
// identity rather than stacking codes; the validator always sees the most
// recent code for an email.
type Repository interface {
	Upsert(ctx context.Context, code *Code) error
	GetByEmail(ctx context.Context, email string) (*Code, error)

	// MarkConsumed atomically consumes the matching unconsumed code.
	// Returns ErrCodeNotFound when no such row exists, including when a
	// concurrent verification consumed it first.
	MarkConsumed(ctx context.Context, email, code string) error
}

// ErrCodeNotFound indicates no code row exists for the identity
type ErrCodeNotFound struct {
	Email string
}

func (e ErrCodeNotFound) Error() string {
	return "no verification code issued for: " + e.Email
}

// Is implements errors.Is matching. A target with an empty email matches any
// ErrCodeNotFound.
func (e ErrCodeNotFound) Is(target error) bool {
	t, ok := target.(ErrCodeNotFound)
	if !ok {
		return false
	}
	if t.Email == "" {
		return true
	}
	return e.Email == t.Email
}
