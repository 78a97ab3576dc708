// Package pin implements the transfer PIN vault: storage and verification
// of the 4-digit PIN that gates outgoing transfers. Only a bcrypt digest
// is ever persisted.
package pin

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/config"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const pinLength = 4

// ErrInvalidPinFormat rejects setup input that is not exactly four digits
var ErrInvalidPinFormat = errors.New("PIN must be exactly 4 digits")

// Vault stores and checks transfer PINs
type Vault struct {
	cfg         *config.PINConfig
	accountRepo account.Repository
	logger      *slog.Logger

	mu       sync.Mutex
	failures map[uuid.UUID]*attemptState

	now func() time.Time
}

type attemptState struct {
	count       int
	lockedUntil time.Time
}

// NewVault creates a new PIN vault
func NewVault(cfg *config.PINConfig, accountRepo account.Repository, logger *slog.Logger) *Vault {
	return &Vault{
		cfg:         cfg,
		accountRepo: accountRepo,
		logger:      logger,
		failures:    make(map[uuid.UUID]*attemptState),
		now:         time.Now,
	}
}

// Setup hashes and stores the PIN, replacing any existing one. The caller
// is responsible for confirm-twice entry; the vault receives the final value.
func (v *Vault) Setup(ctx context.Context, accountID uuid.UUID, pin string) error {
	if !wellFormed(pin) {
		return ErrInvalidPinFormat
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), v.cfg.BcryptCost)
	if err != nil {
		return err
	}

	if err := v.accountRepo.SetPinHash(ctx, accountID, string(hash)); err != nil {
		return shared.StoreError{Op: "set pin", Err: err}
	}

	v.clearFailures(accountID)
	v.logger.Info("Transfer PIN set", "account_id", accountID.String())
	return nil
}

// Verify compares the submitted PIN against the stored digest. An account
// with no PIN on file verifies false without error; the caller routes that
// case to setup. Repeated failures lock the account per the configured
// policy (disabled when MaxAttempts is 0).
func (v *Vault) Verify(ctx context.Context, accountID uuid.UUID, pin string) (bool, error) {
	if err := v.checkLocked(accountID); err != nil {
		return false, err
	}

	acc, err := v.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, shared.StoreError{Op: "get account", Err: err}
	}
	if !acc.HasPin() {
		return false, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*acc.PinHash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			v.recordFailure(accountID)
			return false, nil
		}
		return false, err
	}

	v.clearFailures(accountID)
	return true, nil
}

// HasPin reports whether the account has a PIN on file
func (v *Vault) HasPin(ctx context.Context, accountID uuid.UUID) (bool, error) {
	acc, err := v.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, shared.StoreError{Op: "get account", Err: err}
	}
	return acc.HasPin(), nil
}

func wellFormed(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (v *Vault) checkLocked(accountID uuid.UUID) error {
	if v.cfg.MaxAttempts <= 0 {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	st, ok := v.failures[accountID]
	if !ok {
		return nil
	}
	if v.now().Before(st.lockedUntil) {
		return shared.ErrPinLocked
	}
	if !st.lockedUntil.IsZero() {
		delete(v.failures, accountID)
	}
	return nil
}

func (v *Vault) recordFailure(accountID uuid.UUID) {
	if v.cfg.MaxAttempts <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	st, ok := v.failures[accountID]
	if !ok {
		st = &attemptState{}
		v.failures[accountID] = st
	}
	st.count++
	if st.count >= v.cfg.MaxAttempts {
		st.lockedUntil = v.now().Add(v.cfg.LockoutPeriod)
		st.count = 0
		v.logger.Warn("PIN verification locked",
			"account_id", accountID.String(),
			"locked_until", st.lockedUntil,
		)
	}
}

func (v *Vault) clearFailures(accountID uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.failures, accountID)
}
