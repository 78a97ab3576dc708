// Package transfer implements the money-movement flows: sending money
// behind the PIN gate, adding money, and requesting money with delayed
// fulfillment. Each flow is a small state machine owned by one user
// session; the ledger admission service does the actual bookkeeping.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/ledger"
)

// State is a flow lifecycle state
type State string

const (
	StateForm       State = "FORM"
	StatePinSetup   State = "PIN_SETUP"
	StatePinVerify  State = "PIN_VERIFY"
	StateProcessing State = "PROCESSING"
	StateSuccess    State = "SUCCESS"
)

var (
	// ErrFlowBusy rejects a submission while a previous one is still moving
	// through the flow
	ErrFlowBusy = errors.New("transfer already in progress")

	// ErrPinMismatch rejects PIN setup when the confirmation entry differs
	ErrPinMismatch = errors.New("PINs do not match")
)

// PinGate is the part of the PIN vault the send flow depends on
type PinGate interface {
	Setup(ctx context.Context, accountID uuid.UUID, pin string) error
	Verify(ctx context.Context, accountID uuid.UUID, pin string) (bool, error)
	HasPin(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// SendMoneyForm holds the transfer details entered by the user
type SendMoneyForm struct {
	RecipientName string
	AccountNumber string
	RoutingNumber string
	Amount        int64
}

// SendMoneyFlow walks one outgoing transfer from form entry through the PIN
// gate to admission. States: FORM, PIN_SETUP or PIN_VERIFY, PROCESSING,
// SUCCESS; SUCCESS resets back to a blank FORM after a display delay.
type SendMoneyFlow struct {
	accountID      uuid.UUID
	admitter       ledger.Admitter
	pins           PinGate
	accounts       account.Repository
	successDisplay time.Duration
	logger         *slog.Logger

	mu         sync.Mutex
	state      State
	form       SendMoneyForm
	resetTimer *time.Timer
}

// NewSendMoneyFlow creates a flow for the account, starting at FORM
func NewSendMoneyFlow(
	accountID uuid.UUID,
	admitter ledger.Admitter,
	pins PinGate,
	accounts account.Repository,
	successDisplay time.Duration,
	logger *slog.Logger,
) *SendMoneyFlow {
	return &SendMoneyFlow{
		accountID:      accountID,
		admitter:       admitter,
		pins:           pins,
		accounts:       accounts,
		successDisplay: successDisplay,
		logger:         logger,
		state:          StateForm,
	}
}

// State returns the current flow state
func (f *SendMoneyFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit validates the form and routes to the PIN gate. Field problems come
// back as a ValidationError keyed by field name and the flow stays at FORM.
// A submission while a previous one is still in flight is refused.
func (f *SendMoneyFlow) Submit(ctx context.Context, form SendMoneyForm) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateForm {
		return ErrFlowBusy
	}

	verr := &shared.ValidationError{}
	if len(form.RecipientName) < 2 {
		verr.Add("recipientName", "Recipient name is required")
	}
	if !account.ValidAccountNumber(form.AccountNumber) {
		verr.Add("accountNumber", "Account number must be 8 to 17 digits")
	}
	if !account.ValidRoutingNumber(form.RoutingNumber) {
		verr.Add("routingNumber", "Routing number must be 9 digits")
	}
	if form.Amount <= 0 {
		verr.Add("amount", "Amount must be greater than 0")
	}
	if verr.HasErrors() {
		return verr
	}

	acc, err := f.accounts.GetByID(ctx, f.accountID)
	if err != nil {
		return shared.StoreError{Op: "get account", Err: err}
	}
	if !acc.CanDebit(form.Amount) {
		verr.Add("amount", "Insufficient balance")
		return verr
	}

	hasPin, err := f.pins.HasPin(ctx, f.accountID)
	if err != nil {
		return err
	}

	f.form = form
	if hasPin {
		f.state = StatePinVerify
	} else {
		f.state = StatePinSetup
	}
	return nil
}

// SetupPin sets the transfer PIN during a first-transfer flow. The entry and
// its confirmation must be byte-identical; a mismatch keeps the gate open
// and the transfer is not admitted. On success the transfer proceeds.
func (f *SendMoneyFlow) SetupPin(ctx context.Context, pin, confirm string) error {
	f.mu.Lock()
	if f.state != StatePinSetup {
		f.mu.Unlock()
		return fmt.Errorf("pin setup not allowed in state %s", f.state)
	}
	f.mu.Unlock()

	if pin != confirm {
		return ErrPinMismatch
	}
	if err := f.pins.Setup(ctx, f.accountID, pin); err != nil {
		return err
	}

	return f.process(ctx)
}

// EnterPin verifies the transfer PIN. On a wrong PIN the gate stays open
// for another attempt (subject to the vault's lockout policy).
func (f *SendMoneyFlow) EnterPin(ctx context.Context, pin string) error {
	f.mu.Lock()
	if f.state != StatePinVerify {
		f.mu.Unlock()
		return fmt.Errorf("pin entry not allowed in state %s", f.state)
	}
	f.mu.Unlock()

	ok, err := f.pins.Verify(ctx, f.accountID, pin)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrInvalidPin
	}

	return f.process(ctx)
}

// process admits the debit. Rejection returns the flow to FORM with the
// entered values intact; acceptance shows SUCCESS and schedules the reset.
func (f *SendMoneyFlow) process(ctx context.Context) error {
	f.mu.Lock()
	f.state = StateProcessing
	form := f.form
	f.mu.Unlock()

	description := fmt.Sprintf("Transfer to %s", form.RecipientName)
	txn, err := f.admitter.Admit(ctx, f.accountID, description, form.Amount, shared.DirectionDebit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateForm
		return err
	}

	f.state = StateSuccess
	f.scheduleReset()

	f.logger.Info("Transfer completed",
		"account_id", f.accountID.String(),
		"transaction_id", txn.ID.String(),
		"amount", form.Amount,
	)
	return nil
}

// Close dismisses the flow. While PROCESSING it does nothing and reports
// false; in any other state the flow resets to a blank FORM.
func (f *SendMoneyFlow) Close() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateProcessing {
		return false
	}
	f.resetLocked()
	return true
}

func (f *SendMoneyFlow) scheduleReset() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
	}
	f.resetTimer = time.AfterFunc(f.successDisplay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.state == StateSuccess {
			f.resetLocked()
		}
	})
}

func (f *SendMoneyFlow) resetLocked() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	f.state = StateForm
	f.form = SendMoneyForm{}
}
