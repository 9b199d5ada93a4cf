package kafka

import (
	"context"

	"go.uber.org/zap"
)

// NopProducer drops events. It stands in for Producer when Kafka is disabled.
type NopProducer struct {
	logger *zap.Logger
}

// NewNopProducer creates a NopProducer that logs dropped events at debug level.
func NewNopProducer(logger *zap.Logger) *NopProducer {
	return &NopProducer{logger: logger}
}

// PublishEvent discards the event.
func (p *NopProducer) PublishEvent(_ context.Context, topic string, event CloudEvent) error {
	p.logger.Debug("kafka disabled, dropping event",
		zap.String("topic", topic),
		zap.String("type", event.Type),
	)
	return nil
}

// Close is a no-op.
func (p *NopProducer) Close() error { return nil }
