package events

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stagehand-bookings/service-booking/internal/application"
	"github.com/stagehand-bookings/service-booking/pkg/domain"
	"github.com/stagehand-bookings/service-booking/pkg/events"
	"github.com/stagehand-bookings/service-booking/pkg/kafka"
)

// PaymentHandler is the part of the booking service that payment events drive.
type PaymentHandler interface {
	ConfirmPayment(ctx context.Context, bookingID int64) (*application.BookingDTO, error)
	CancelBooking(ctx context.Context, bookingID int64, reason string) (*application.BookingDTO, error)
}

// PaymentEventConsumer listens to payment events and moves bookings through the lifecycle.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PaymentHandler
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PaymentHandler,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentConfirmed:
		return c.handlePaymentConfirmed(ctx, cloudEvent)
	case events.PaymentFailed, events.PaymentExpired:
		return c.handlePaymentFailed(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentConfirmed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentConfirmedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingID <= 0 {
		c.logger.Error("failed to parse PaymentConfirmedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment confirmed event",
		zap.Int64("booking_id", evt.BookingID),
		zap.String("payment_id", evt.PaymentID),
	)

	_, err := c.service.ConfirmPayment(ctx, evt.BookingID)
	return c.settle(evt.BookingID, cloudEvent.Type, err)
}

func (c *PaymentEventConsumer) handlePaymentFailed(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentFailedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingID <= 0 {
		c.logger.Error("failed to parse PaymentFailedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	reason := evt.Reason
	if reason == "" {
		reason = cloudEvent.Type
	}

	c.logger.Info("processing payment failure event",
		zap.Int64("booking_id", evt.BookingID),
		zap.String("payment_id", evt.PaymentID),
		zap.String("type", cloudEvent.Type),
	)

	_, err := c.service.CancelBooking(ctx, evt.BookingID, reason)
	return c.settle(evt.BookingID, cloudEvent.Type, err)
}

// settle decides whether a service error is worth a redelivery. Transient
// store failures are; a booking that already moved on or no longer exists is not.
func (c *PaymentEventConsumer) settle(bookingID int64, eventType string, err error) error {
	switch {
	case err == nil:
		c.logger.Info("payment event applied",
			zap.Int64("booking_id", bookingID),
			zap.String("type", eventType),
		)
		return nil
	case errors.Is(err, domain.ErrInvalidTransition):
		c.logger.Info("payment event already processed or no longer applicable",
			zap.Int64("booking_id", bookingID),
			zap.String("type", eventType),
			zap.Error(err),
		)
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
		c.logger.Warn("dropping payment event",
			zap.Int64("booking_id", bookingID),
			zap.String("type", eventType),
			zap.Error(err),
		)
		return nil
	default:
		c.logger.Error("failed to apply payment event",
			zap.Int64("booking_id", bookingID),
			zap.String("type", eventType),
			zap.Error(err),
		)
		return err
	}
}
