// Package ledger implements transaction admission: the decision process that
// validates a proposed transaction, applies it to the account balance, and
// commits it together with its feed event.
package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/novaapay/banking-core/internal/domain/outbox"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/domain/transaction"
)

// Admitter decides whether a proposed transaction may mutate state.
// Callers are responsible for having already cleared PIN/OTP gates.
type Admitter interface {
	Admit(ctx context.Context, accountID uuid.UUID, description string, amount int64, direction shared.Direction) (*transaction.Transaction, error)
}

// TxRunner runs a function inside one database transaction
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Service implements Admitter on top of the PostgreSQL system of record
type Service struct {
	runner      TxRunner
	accountRepo account.Repository
	txnRepo     transaction.Repository
	outboxRepo  outbox.Repository
	logger      *slog.Logger
}

// NewService creates a new admission service
func NewService(
	logger *slog.Logger,
	runner TxRunner,
	accountRepo account.Repository,
	txnRepo transaction.Repository,
	outboxRepo outbox.Repository,
) *Service {
	return &Service{
		runner:      runner,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// Admit validates and commits a transaction. The balance check and the write
// happen under a row lock in one database transaction, so two concurrent
// debits against the same account cannot both pass the funds check.
//
// On success exactly one transaction record and its outbox event are
// committed; on rejection nothing is written.
func (s *Service) Admit(ctx context.Context, accountID uuid.UUID, description string, amount int64, direction shared.Direction) (*transaction.Transaction, error) {
	if !direction.Valid() {
		return nil, shared.ErrInvalidDirection
	}
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	var committed *transaction.Transaction

	err := s.runner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepoTx := s.accountRepo.WithTx(tx)

		acc, err := accountRepoTx.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		if direction == shared.DirectionDebit {
			if err := acc.Debit(amount); err != nil {
				return err
			}
		} else {
			if err := acc.Credit(amount); err != nil {
				return err
			}
		}

		if err := accountRepoTx.Update(ctx, acc); err != nil {
			return err
		}

		txn := transaction.New(accountID, description, amount, direction, acc.Balance)
		if err := s.txnRepo.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(txn)
		if err != nil {
			return err
		}
		if err := s.outboxRepo.WithTx(tx).Create(ctx, msg); err != nil {
			return err
		}

		committed = txn
		return nil
	})
	if err != nil {
		if errors.Is(err, account.ErrInsufficientFunds) {
			s.logger.Warn("Transaction rejected: insufficient funds",
				"account_id", accountID.String(),
				"amount", amount,
			)
			return nil, err
		}
		if errors.Is(err, account.ErrAccountNotFound{}) || errors.Is(err, account.ErrInvalidAmount) {
			return nil, err
		}
		s.logger.Error("Transaction admission failed",
			"account_id", accountID.String(),
			"amount", amount,
			"direction", string(direction),
			"error", err,
		)
		return nil, shared.StoreError{Op: "admit", Err: err}
	}

	s.logger.Info("Transaction admitted",
		"transaction_id", committed.ID.String(),
		"account_id", accountID.String(),
		"type", string(direction),
		"amount", committed.Amount,
		"balance_after", committed.BalanceAfter,
	)

	return committed, nil
}
