package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/novaapay/banking-core/internal/config"
	"github.com/segmentio/kafka-go"
)

// TransactionEventProducer publishes committed-transaction events consumed by
// the feed projector. Messages are keyed by account ID so one account's events
// stay in order on a single partition.
type TransactionEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewTransactionEventProducer creates the producer and ensures the topic exists
func NewTransactionEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TransactionEventProducer, error) {
	if cfg.TransactionTopic == "" {
		return nil, fmt.Errorf("kafka transaction topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for transaction event producer: %w", err)
	}
	defer conn.Close()

	err = ensureKafkaTopic(conn, cfg.TransactionTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists: %w", cfg.TransactionTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.TransactionTopic,
		Balancer:     &kafka.Hash{}, // Key by account so per-account order is preserved
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &TransactionEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.TransactionTopic,
	}, nil
}

func (p *TransactionEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish transaction event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish transaction event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published transaction event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *TransactionEventProducer) Close() error {
	p.logger.Info("Closing transaction event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
