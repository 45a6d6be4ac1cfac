package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// ErrDeliveriesClosed is returned by Listen when the broker closes the
// delivery channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// HandlerFunc processes one message body.
type HandlerFunc func(ctx context.Context, body []byte) error

// Channel is the subset of *amqp091.Channel used by Listen.
type Channel interface {
	Publisher
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
}

// Listen consumes queueName until ctx is done. Each message is handled
// in turn; failures go through HandleProcessingError, successes are acked.
// after, if set, runs once per message.
func Listen(ctx context.Context, ch Channel, queueName string, handle HandlerFunc, after func()) error {
	msgs, err := ch.Consume(
		queueName,
		queueName+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", queueName, err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("[Queue] Stopping consumer", "queue", queueName)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("%w: %s", ErrDeliveriesClosed, queueName)
			}
			process(ctx, ch, msg, queueName, handle)
			if after != nil {
				after()
			}
		}
	}
}

func process(ctx context.Context, p Publisher, msg amqp091.Delivery, queueName string, handle HandlerFunc) {
	startTime := time.Now()
	logger.Info("[Queue] Received message", "queue", queueName, "retries", Retries(msg))

	if err := handle(ctx, msg.Body); err != nil {
		logger.Error("[Queue] Error processing message", "queue", queueName, "err", err)
		HandleProcessingError(p, msg, queueName)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
	logger.Info(
		"[Queue] Message processed successfully",
		"queue", queueName,
		"duration", FormatDuration(time.Since(startTime)),
	)
}

// FormatDuration renders d as hh:mm:ss.
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
