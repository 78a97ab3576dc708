package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/ledger"
)

// payLinkBase is the public base URL for shareable payment request links
const payLinkBase = "https://vault.bank/pay/"

// fulfillmentTimeout bounds the background credit admission
const fulfillmentTimeout = 30 * time.Second

// RequestMoneyFlow creates a shareable payment request link. The credit is
// never admitted synchronously: a deferred job plays the counterparty and
// fulfills the request after a fixed delay.
type RequestMoneyFlow struct {
	accountID   uuid.UUID
	admitter    ledger.Admitter
	scheduler   Scheduler
	fulfillIn   time.Duration
	successShow time.Duration
	logger      *slog.Logger

	mu         sync.Mutex
	state      State
	link       string
	resetTimer *time.Timer
}

// NewRequestMoneyFlow creates a flow for the account, starting at FORM
func NewRequestMoneyFlow(
	accountID uuid.UUID,
	admitter ledger.Admitter,
	scheduler Scheduler,
	fulfillIn time.Duration,
	successShow time.Duration,
	logger *slog.Logger,
) *RequestMoneyFlow {
	return &RequestMoneyFlow{
		accountID:   accountID,
		admitter:    admitter,
		scheduler:   scheduler,
		fulfillIn:   fulfillIn,
		successShow: successShow,
		logger:      logger,
		state:       StateForm,
	}
}

// State returns the current flow state
func (f *RequestMoneyFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Link returns the shareable pay link of the last successful request
func (f *RequestMoneyFlow) Link() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.link
}

// Submit validates the request, returns a shareable pay link, and schedules
// exactly one fulfillment credit after the configured delay
func (f *RequestMoneyFlow) Submit(ctx context.Context, amount int64, note string) (string, error) {
	f.mu.Lock()
	if f.state != StateForm {
		f.mu.Unlock()
		return "", ErrFlowBusy
	}

	if amount <= 0 {
		f.mu.Unlock()
		return "", shared.NewValidationError("amount", "Amount must be greater than 0")
	}

	f.state = StateProcessing
	f.mu.Unlock()

	requestID := uuid.New()
	link := payLinkBase + requestID.String()

	description := "Money Request Fulfilled"
	if note != "" {
		description = fmt.Sprintf("%s: %s", description, note)
	}

	err := f.scheduler.Schedule(f.fulfillIn, func() {
		fulfillCtx, cancel := context.WithTimeout(context.Background(), fulfillmentTimeout)
		defer cancel()

		txn, err := f.admitter.Admit(fulfillCtx, f.accountID, description, amount, shared.DirectionCredit)
		if err != nil {
			f.logger.Error("Money request fulfillment failed",
				"account_id", f.accountID.String(),
				"request_id", requestID.String(),
				"error", err,
			)
			return
		}
		f.logger.Info("Money request fulfilled",
			"account_id", f.accountID.String(),
			"request_id", requestID.String(),
			"transaction_id", txn.ID.String(),
			"amount", amount,
		)
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateForm
		return "", err
	}

	f.state = StateSuccess
	f.link = link
	f.scheduleReset()

	f.logger.Info("Money request created",
		"account_id", f.accountID.String(),
		"request_id", requestID.String(),
		"amount", amount,
	)
	return link, nil
}

// Close dismisses the flow; a no-op while PROCESSING
func (f *RequestMoneyFlow) Close() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateProcessing {
		return false
	}
	f.resetLocked()
	return true
}

func (f *RequestMoneyFlow) scheduleReset() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
	}
	f.resetTimer = time.AfterFunc(f.successShow, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.state == StateSuccess {
			f.resetLocked()
		}
	})
}

func (f *RequestMoneyFlow) resetLocked() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	f.state = StateForm
	f.link = ""
}
