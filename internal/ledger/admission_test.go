package ledger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/novaapay/banking-core/internal/domain/account"
	"github.com/novaapay/banking-core/internal/domain/outbox"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeTxRunner runs the transaction function directly, without a database
type fakeTxRunner struct {
	beginErr error
}

func (r *fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	return fn(nil)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) SetPinHash(ctx context.Context, id uuid.UUID, pinHash string) error {
	args := m.Called(ctx, id, pinHash)
	return args.Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	m.Called(tx)
	return m
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	m.Called(tx)
	return m
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	m.Called(tx)
	return m
}

func testAccount(t *testing.T, balance int64) *account.Account {
	t.Helper()
	acc, err := account.NewAccount(uuid.New(), "Alex Morgan", "alex@example.com", "12345678", "021000021", balance)
	require.NoError(t, err)
	return acc
}

func newAdmissionFixture() (*Service, *MockAccountRepository, *MockTransactionRepository, *MockOutboxRepository) {
	accountRepo := new(MockAccountRepository)
	txnRepo := new(MockTransactionRepository)
	outboxRepo := new(MockOutboxRepository)
	svc := NewService(newTestLogger(), &fakeTxRunner{}, accountRepo, txnRepo, outboxRepo)
	return svc, accountRepo, txnRepo, outboxRepo
}

func TestService_Admit_Credit(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, txnRepo, outboxRepo := newAdmissionFixture()

	acc := testAccount(t, 1000)
	accountRepo.On("WithTx", mock.Anything).Return()
	accountRepo.On("LockForUpdate", ctx, acc.ID).Return(acc, nil).Once()
	accountRepo.On("Update", ctx, acc).Return(nil).Once()
	txnRepo.On("WithTx", mock.Anything).Return()
	txnRepo.On("Create", ctx, mock.AnythingOfType("*transaction.Transaction")).Return(nil).Once()
	outboxRepo.On("WithTx", mock.Anything).Return()
	outboxRepo.On("Create", ctx, mock.AnythingOfType("*outbox.Message")).Return(nil).Once()

	txn, err := svc.Admit(ctx, acc.ID, "Deposit from External Bank", 500, shared.DirectionCredit)

	require.NoError(t, err)
	assert.Equal(t, int64(1500), acc.Balance)
	assert.Equal(t, int64(500), txn.Amount)
	assert.Equal(t, int64(1500), txn.BalanceAfter)
	accountRepo.AssertExpectations(t)
	txnRepo.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestService_Admit_Debit(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, txnRepo, outboxRepo := newAdmissionFixture()

	acc := testAccount(t, 1000)
	accountRepo.On("WithTx", mock.Anything).Return()
	accountRepo.On("LockForUpdate", ctx, acc.ID).Return(acc, nil).Once()
	accountRepo.On("Update", ctx, acc).Return(nil).Once()
	txnRepo.On("WithTx", mock.Anything).Return()
	txnRepo.On("Create", ctx, mock.AnythingOfType("*transaction.Transaction")).Return(nil).Once()
	outboxRepo.On("WithTx", mock.Anything).Return()
	outboxRepo.On("Create", ctx, mock.AnythingOfType("*outbox.Message")).Return(nil).Once()

	txn, err := svc.Admit(ctx, acc.ID, "Transfer to Jordan Lee", 400, shared.DirectionDebit)

	require.NoError(t, err)
	assert.Equal(t, int64(600), acc.Balance)
	assert.Equal(t, int64(-400), txn.Amount)
	assert.Equal(t, shared.DirectionDebit, txn.Type)
	assert.Equal(t, int64(600), txn.BalanceAfter)
}

func TestService_Admit_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, txnRepo, outboxRepo := newAdmissionFixture()

	acc := testAccount(t, 100)
	accountRepo.On("WithTx", mock.Anything).Return()
	accountRepo.On("LockForUpdate", ctx, acc.ID).Return(acc, nil).Once()

	txn, err := svc.Admit(ctx, acc.ID, "Transfer to Jordan Lee", 101, shared.DirectionDebit)

	assert.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Nil(t, txn)
	assert.Equal(t, int64(100), acc.Balance)
	// Rejection writes nothing
	accountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	txnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Admit_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, _, _ := newAdmissionFixture()

	_, err := svc.Admit(ctx, uuid.New(), "x", 0, shared.DirectionCredit)
	assert.ErrorIs(t, err, account.ErrInvalidAmount)

	_, err = svc.Admit(ctx, uuid.New(), "x", -5, shared.DirectionDebit)
	assert.ErrorIs(t, err, account.ErrInvalidAmount)

	_, err = svc.Admit(ctx, uuid.New(), "x", 100, shared.Direction("XX"))
	assert.ErrorIs(t, err, shared.ErrInvalidDirection)

	accountRepo.AssertNotCalled(t, "LockForUpdate", mock.Anything, mock.Anything)
}

func TestService_Admit_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, _, _ := newAdmissionFixture()

	missing := uuid.New()
	accountRepo.On("WithTx", mock.Anything).Return()
	accountRepo.On("LockForUpdate", ctx, missing).Return(nil, account.ErrAccountNotFound{AccountID: missing}).Once()

	_, err := svc.Admit(ctx, missing, "x", 100, shared.DirectionCredit)
	assert.ErrorIs(t, err, account.ErrAccountNotFound{})
}

func TestService_Admit_StoreFailureWrapped(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, txnRepo, _ := newAdmissionFixture()

	acc := testAccount(t, 1000)
	dbErr := errors.New("connection reset")
	accountRepo.On("WithTx", mock.Anything).Return()
	accountRepo.On("LockForUpdate", ctx, acc.ID).Return(acc, nil).Once()
	accountRepo.On("Update", ctx, acc).Return(dbErr).Once()

	_, err := svc.Admit(ctx, acc.ID, "x", 100, shared.DirectionCredit)

	var storeErr shared.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, dbErr)
	txnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Drains a balance to zero, then verifies the next debit is rejected.
func TestService_Admit_DrainToZeroThenReject(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, txnRepo, outboxRepo := newAdmissionFixture()

	acc := testAccount(t, 500)
	accountRepo.On("WithTx", mock.Anything).Return()
	accountRepo.On("LockForUpdate", ctx, acc.ID).Return(acc, nil)
	accountRepo.On("Update", ctx, acc).Return(nil)
	txnRepo.On("WithTx", mock.Anything).Return()
	txnRepo.On("Create", ctx, mock.AnythingOfType("*transaction.Transaction")).Return(nil)
	outboxRepo.On("WithTx", mock.Anything).Return()
	outboxRepo.On("Create", ctx, mock.AnythingOfType("*outbox.Message")).Return(nil)

	txn, err := svc.Admit(ctx, acc.ID, "Transfer to Jordan Lee", 500, shared.DirectionDebit)
	require.NoError(t, err)
	assert.Equal(t, int64(0), txn.BalanceAfter)

	_, err = svc.Admit(ctx, acc.ID, "Transfer to Jordan Lee", 1, shared.DirectionDebit)
	assert.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Equal(t, int64(0), acc.Balance)
}
