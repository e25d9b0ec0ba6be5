package consumer

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"campus-ride/internal/shared/mq"
	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
)

const retryDelay = 5 * time.Second

// ChannelOpener is satisfied by *mq.Connection.
type ChannelOpener interface {
	NewChannel() (*amqp.Channel, error)
}

type Fanout interface {
	Publish(c realtime.Change)
}

// ChangeConsumer forwards change signals from the broker queue to the
// in-process hub that feeds websocket clients.
type ChangeConsumer struct {
	conn   ChannelOpener
	hub    Fanout
	queue  string
	logger *util.Logger
}

func NewChangeConsumer(conn ChannelOpener, hub Fanout, queue string, logger *util.Logger) *ChangeConsumer {
	return &ChangeConsumer{conn: conn, hub: hub, queue: queue, logger: logger}
}

// Start begins consuming. It fails only if the first subscription fails;
// later channel losses are retried until ctx ends.
func (c *ChangeConsumer) Start(ctx context.Context) error {
	msgs, err := c.consume()
	if err != nil {
		return err
	}

	go func() {
		for {
			for msg := range msgs {
				c.handle(msg)
			}

			select {
			case <-ctx.Done():
				return
			default:
			}
			c.logger.Warn("ChangeConsumer", "delivery channel closed, resubscribing")

			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryDelay):
				}
				if msgs, err = c.consume(); err == nil {
					break
				}
				c.logger.Warn("ChangeConsumer", fmt.Sprintf("resubscribe failed: %v", err))
			}
		}
	}()

	c.logger.OK("ChangeConsumer", c.queue+" consumer started")
	return nil
}

func (c *ChangeConsumer) consume() (<-chan amqp.Delivery, error) {
	ch, err := c.conn.NewChannel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	msgs, err := ch.Consume(
		c.queue,
		"",
		false, // manual acknowledgment
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}
	return msgs, nil
}

func (c *ChangeConsumer) handle(msg amqp.Delivery) {
	change, err := mq.DecodeChange(msg.Body)
	if err != nil {
		c.logger.Warn("ChangeConsumer", fmt.Sprintf("invalid change message: %v", err))
		// Don't requeue malformed messages
		msg.Nack(false, false)
		return
	}

	c.hub.Publish(change)
	msg.Ack(false)
}
