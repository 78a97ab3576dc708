package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/novaapay/banking-core/internal/config"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFeedRepository struct {
	mock.Mock
}

func (m *MockFeedRepository) Upsert(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockFeedRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockFeedRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func newProjectorFixture() (*Projector, *MockFeedRepository) {
	feedRepo := new(MockFeedRepository)
	cfg := &config.KafkaConfig{
		TransactionTopic: "transaction_events",
		ConsumerGroup:    "feed_projector",
	}
	return NewProjector(nil, feedRepo, cfg, newTestLogger()), feedRepo
}

func TestProjector_HandleEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("projects decoded transaction into feed", func(t *testing.T) {
		projector, feedRepo := newProjectorFixture()

		txn := transaction.New(uuid.New(), "Deposit from External Bank", 500, shared.DirectionCredit, 1500)
		payload, err := json.Marshal(txn)
		require.NoError(t, err)

		feedRepo.On("Upsert", ctx, mock.MatchedBy(func(got *transaction.Transaction) bool {
			return got.ID == txn.ID && got.AccountID == txn.AccountID && got.Amount == txn.Amount
		})).Return(nil).Once()

		err = projector.handleEvent(ctx, []byte(txn.AccountID.String()), payload)
		assert.NoError(t, err)
		feedRepo.AssertExpectations(t)
	})

	t.Run("drops undecodable payload without error", func(t *testing.T) {
		projector, feedRepo := newProjectorFixture()

		err := projector.handleEvent(ctx, []byte("key"), []byte("not json"))
		assert.NoError(t, err)
		feedRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("upsert failure propagates for redelivery", func(t *testing.T) {
		projector, feedRepo := newProjectorFixture()

		txn := transaction.New(uuid.New(), "Transfer to Sam Carter", 200, shared.DirectionDebit, 800)
		payload, err := json.Marshal(txn)
		require.NoError(t, err)

		feedRepo.On("Upsert", ctx, mock.Anything).Return(errors.New("mongo unavailable")).Once()

		err = projector.handleEvent(ctx, []byte(txn.AccountID.String()), payload)
		assert.Error(t, err)
	})
}
