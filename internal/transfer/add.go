package transfer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/ledger"
)

// FundingSource is where added money comes from
type FundingSource string

const (
	SourceBank FundingSource = "bank"
	SourceCard FundingSource = "card"
)

func (s FundingSource) valid() bool {
	return s == SourceBank || s == SourceCard
}

func (s FundingSource) description() string {
	if s == SourceCard {
		return "Deposit from Debit Card"
	}
	return "Deposit from External Bank"
}

// AddMoneyFlow walks a deposit from form entry to admission. There is no
// PIN gate on incoming money: FORM, PROCESSING, SUCCESS.
type AddMoneyFlow struct {
	accountID      uuid.UUID
	admitter       ledger.Admitter
	successDisplay time.Duration
	logger         *slog.Logger

	mu         sync.Mutex
	state      State
	resetTimer *time.Timer
}

// NewAddMoneyFlow creates a flow for the account, starting at FORM
func NewAddMoneyFlow(accountID uuid.UUID, admitter ledger.Admitter, successDisplay time.Duration, logger *slog.Logger) *AddMoneyFlow {
	return &AddMoneyFlow{
		accountID:      accountID,
		admitter:       admitter,
		successDisplay: successDisplay,
		logger:         logger,
		state:          StateForm,
	}
}

// State returns the current flow state
func (f *AddMoneyFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit validates and admits the deposit
func (f *AddMoneyFlow) Submit(ctx context.Context, amount int64, source FundingSource) error {
	f.mu.Lock()
	if f.state != StateForm {
		f.mu.Unlock()
		return ErrFlowBusy
	}

	verr := &shared.ValidationError{}
	if amount <= 0 {
		verr.Add("amount", "Amount must be greater than 0")
	}
	if !source.valid() {
		verr.Add("source", "Unknown funding source")
	}
	if verr.HasErrors() {
		f.mu.Unlock()
		return verr
	}

	f.state = StateProcessing
	f.mu.Unlock()

	txn, err := f.admitter.Admit(ctx, f.accountID, source.description(), amount, shared.DirectionCredit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateForm
		return err
	}

	f.state = StateSuccess
	f.scheduleReset()

	f.logger.Info("Deposit completed",
		"account_id", f.accountID.String(),
		"transaction_id", txn.ID.String(),
		"amount", amount,
		"source", string(source),
	)
	return nil
}

// Close dismisses the flow; a no-op while PROCESSING
func (f *AddMoneyFlow) Close() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateProcessing {
		return false
	}
	f.resetLocked()
	return true
}

func (f *AddMoneyFlow) scheduleReset() {
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

func (f *AddMoneyFlow) resetLocked() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	f.state = StateForm
}
