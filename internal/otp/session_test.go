package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/otp"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChallenger struct {
	issueCalls  int
	issueErr    error
	verifyCalls int
	verifyErr   error
}

func (s *stubChallenger) Issue(ctx context.Context, userID uuid.UUID, email string) (*otp.Code, error) {
	s.issueCalls++
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	return otp.NewCode(userID, email, "483920", time.Now(), 5*time.Minute), nil
}

func (s *stubChallenger) Verify(ctx context.Context, email, submitted string) error {
	s.verifyCalls++
	return s.verifyErr
}

func newTestSession(challenger Challenger) *Session {
	return NewSession(challenger, 30*time.Second, uuid.New(), "jordan@example.com")
}

func TestSession_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("first send issues a code", func(t *testing.T) {
		challenger := &stubChallenger{}
		session := newTestSession(challenger)

		wait, err := session.Send(ctx)
		require.NoError(t, err)
		assert.Zero(t, wait)
		assert.Equal(t, 1, challenger.issueCalls)
		assert.Equal(t, SessionSent, session.State())
	})

	t.Run("resend inside cooldown is a no-op with remaining wait", func(t *testing.T) {
		challenger := &stubChallenger{}
		session := newTestSession(challenger)

		_, err := session.Send(ctx)
		require.NoError(t, err)

		wait, err := session.Send(ctx)
		require.NoError(t, err)
		assert.Greater(t, wait, time.Duration(0))
		assert.LessOrEqual(t, wait, 30*time.Second)
		assert.Equal(t, 1, challenger.issueCalls, "cooled-down resend must not issue another code")
		assert.Equal(t, SessionSent, session.State())
	})

	t.Run("resend after cooldown issues again", func(t *testing.T) {
		challenger := &stubChallenger{}
		session := newTestSession(challenger)

		_, err := session.Send(ctx)
		require.NoError(t, err)

		session.now = func() time.Time { return time.Now().Add(time.Minute) }
		wait, err := session.Send(ctx)
		require.NoError(t, err)
		assert.Zero(t, wait)
		assert.Equal(t, 2, challenger.issueCalls)
	})

	t.Run("delivery failure leaves session SENT and starts the cooldown", func(t *testing.T) {
		challenger := &stubChallenger{
			issueErr: shared.DeliveryError{Recipient: "jordan@example.com", Err: errors.New("smtp refused")},
		}
		session := newTestSession(challenger)

		_, err := session.Send(ctx)
		require.Error(t, err)
		assert.Equal(t, SessionSent, session.State())

		// The stored code is valid, so the next attempt waits out the cooldown
		wait, err := session.Send(ctx)
		require.NoError(t, err)
		assert.Greater(t, wait, time.Duration(0))
		assert.Equal(t, 1, challenger.issueCalls)
	})

	t.Run("store failure returns the session to idle", func(t *testing.T) {
		challenger := &stubChallenger{issueErr: shared.StoreError{Op: "issue code", Err: errors.New("db down")}}
		session := newTestSession(challenger)

		_, err := session.Send(ctx)
		require.Error(t, err)
		assert.Equal(t, SessionIdle, session.State())
	})

	t.Run("send after verification is refused", func(t *testing.T) {
		challenger := &stubChallenger{}
		session := newTestSession(challenger)

		_, err := session.Send(ctx)
		require.NoError(t, err)
		require.NoError(t, session.Verify(ctx, "483920"))

		_, err = session.Send(ctx)
		assert.Error(t, err)
	})
}

func TestSession_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted code verifies the session", func(t *testing.T) {
		challenger := &stubChallenger{}
		session := newTestSession(challenger)

		_, err := session.Send(ctx)
		require.NoError(t, err)

		require.NoError(t, session.Verify(ctx, "483920"))
		assert.Equal(t, SessionVerified, session.State())
	})

	t.Run("rejected code returns the session to SENT", func(t *testing.T) {
		challenger := &stubChallenger{verifyErr: shared.ErrInvalidCode}
		session := newTestSession(challenger)

		_, err := session.Send(ctx)
		require.NoError(t, err)

		assert.ErrorIs(t, session.Verify(ctx, "000000"), shared.ErrInvalidCode)
		assert.Equal(t, SessionSent, session.State())

		// A later correct attempt still goes through
		challenger.verifyErr = nil
		require.NoError(t, session.Verify(ctx, "483920"))
		assert.Equal(t, SessionVerified, session.State())
	})

	t.Run("verify before any send is refused", func(t *testing.T) {
		session := newTestSession(&stubChallenger{})
		assert.Error(t, session.Verify(ctx, "483920"))
		assert.Equal(t, SessionIdle, session.State())
	})
}
