package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/novaapay/banking-core/internal/domain/outbox"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes keyed by account and marks PROCESSED", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		producer := new(MockMessagePublisher)
		publisher := NewEventPublisher(outboxRepo, producer, newTestLogger())

		accountID := uuid.New()
		txn := transaction.New(accountID, "Transfer to Riley Park", 250, shared.DirectionDebit, 750)
		msg, err := outbox.NewMessage(txn)
		require.NoError(t, err)
		msg.ID = 42

		producer.On("Publish", ctx, accountID.String(), mock.MatchedBy(func(v interface{}) bool {
			published, ok := v.(*transaction.Transaction)
			return ok && published.ID == txn.ID
		})).Return(nil).Once()
		outboxRepo.On("UpdateStatus", ctx, msg.ID, shared.OutboxStatusProcessed).Return(nil).Once()

		err = publisher.PublishEvent(ctx, msg)
		assert.NoError(t, err)
		producer.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("poisoned payload is marked FAILED_TO_PUBLISH without retry", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		producer := new(MockMessagePublisher)
		publisher := NewEventPublisher(outboxRepo, producer, newTestLogger())

		msg := &outbox.Message{
			ID:            43,
			TransactionID: uuid.New(),
			Payload:       []byte("not json"),
			Status:        shared.OutboxStatusPending,
		}
		outboxRepo.On("UpdateStatus", ctx, msg.ID, shared.OutboxStatusFailedToPublish).Return(nil).Once()

		err := publisher.PublishEvent(ctx, msg)
		assert.Error(t, err)
		producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("broker failure leaves the row pending", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		producer := new(MockMessagePublisher)
		publisher := NewEventPublisher(outboxRepo, producer, newTestLogger())

		txn := transaction.New(uuid.New(), "Deposit from Debit Card", 100, shared.DirectionCredit, 1100)
		msg, err := outbox.NewMessage(txn)
		require.NoError(t, err)
		msg.ID = 44

		producer.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		err = publisher.PublishEvent(ctx, msg)
		assert.Error(t, err)
		outboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
