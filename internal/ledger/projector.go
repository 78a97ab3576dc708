package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/novaapay/banking-core/internal/config"
	"github.com/novaapay/banking-core/internal/domain/transaction"
	"github.com/novaapay/banking-core/internal/platform/messaging/consumers"
)

// Projector consumes committed-transaction events and maintains the
// transaction feed read model. Upserts are keyed by transaction ID, so
// redelivered events are harmless.
type Projector struct {
	consumer consumers.Consumer
	feedRepo transaction.FeedRepository
	cfg      *config.KafkaConfig
	logger   *slog.Logger
}

func NewProjector(
	consumer consumers.Consumer,
	feedRepo transaction.FeedRepository,
	cfg *config.KafkaConfig,
	logger *slog.Logger,
) *Projector {
	return &Projector{
		consumer: consumer,
		feedRepo: feedRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start subscribes to the transaction event topic until context is canceled
func (p *Projector) Start(ctx context.Context) error {
	p.logger.Info("Starting feed projector",
		"topic", p.cfg.TransactionTopic,
		"group_id", p.cfg.ConsumerGroup,
	)
	return p.consumer.Subscribe(ctx, p.cfg.TransactionTopic, p.cfg.ConsumerGroup, p.handleEvent)
}

func (p *Projector) handleEvent(ctx context.Context, key []byte, value []byte) error {
	var txn transaction.Transaction
	if err := json.Unmarshal(value, &txn); err != nil {
		// A payload that cannot be decoded will never succeed on retry.
		// Log and drop it so the partition does not stall.
		p.logger.Error("Dropping undecodable transaction event",
			"key", string(key),
			"error", err,
		)
		return nil
	}

	if err := p.feedRepo.Upsert(ctx, &txn); err != nil {
		return fmt.Errorf("failed to project transaction %s into feed: %w", txn.ID, err)
	}

	p.logger.Debug("Projected transaction into feed",
		"transaction_id", txn.ID.String(),
		"account_id", txn.AccountID.String(),
	)
	return nil
}
