package outbox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	txn := transaction.New(uuid.New(), "Transfer to Jordan Lee", 500, shared.DirectionDebit, 4500)

	msg, err := NewMessage(txn)
	require.NoError(t, err)

	assert.Equal(t, txn.ID, msg.TransactionID)
	assert.Equal(t, txn.AccountID, msg.AccountID)
	assert.Equal(t, shared.OutboxStatusPending, msg.Status)
	assert.Equal(t, 0, msg.Attempts)

	decoded, err := msg.GetTransaction()
	require.NoError(t, err)
	assert.Equal(t, txn.ID, decoded.ID)
	assert.Equal(t, int64(-500), decoded.Amount)
	assert.Equal(t, shared.DirectionDebit, decoded.Type)
	assert.Equal(t, int64(4500), decoded.BalanceAfter)
}

func TestMessage_StatusTransitions(t *testing.T) {
	txn := transaction.New(uuid.New(), "Deposit from Debit Card", 100, shared.DirectionCredit, 100)
	msg, err := NewMessage(txn)
	require.NoError(t, err)

	msg.IncrementAttempts()
	assert.Equal(t, 1, msg.Attempts)
	assert.NotNil(t, msg.LastAttemptAt)

	msg.MarkAsProcessed()
	assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)

	msg.MarkAsFailed()
	assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
}

func TestMessage_GetTransaction_BadPayload(t *testing.T) {
	msg := &Message{Payload: []byte("{not json")}
	_, err := msg.GetTransaction()
	assert.Error(t, err)
}
