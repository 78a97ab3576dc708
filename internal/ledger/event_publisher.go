package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/novaapay/banking-core/internal/domain/outbox"
	"github.com/novaapay/banking-core/internal/domain/shared"
	"github.com/novaapay/banking-core/internal/platform/messaging/producers"
)

// EventPublisher pushes a committed-transaction outbox row onto the event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher on Kafka
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes one outbox message keyed by account so the feed
// projector sees each account's transactions in commit order, then marks
// the row PROCESSED. A poisoned payload is marked FAILED_TO_PUBLISH
// immediately rather than retried.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	txn, err := message.GetTransaction()
	if err != nil {
		p.logger.Error("Failed to unmarshal transaction from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	if err := p.producer.Publish(ctx, txn.AccountID.String(), txn); err != nil {
		return fmt.Errorf("failed to publish transaction event %s: %w", message.TransactionID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	p.logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
