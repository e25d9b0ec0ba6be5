package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"campus-ride/internal/shared/config"
	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
)

// ChangeRoutingPrefix prefixes the table name in change routing keys.
const ChangeRoutingPrefix = "change."

var ErrClosed = errors.New("rabbitmq connection closed")

// Connection keeps one AMQP connection open and re-dials it with backoff
// when the broker drops it.
type Connection struct {
	url    string
	logger *util.Logger

	mu      sync.RWMutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	done    chan struct{}
	once    sync.Once
}

func ConnectToRMQ(ctx context.Context, cfg config.RabbitMQConfig, logger *util.Logger) (*Connection, error) {
	c := &Connection{url: cfg.URL(), logger: logger, done: make(chan struct{})}

	var err error
	for i := 0; i < 10; i++ {
		if err = c.dial(); err == nil {
			go c.monitor()
			return c, nil
		}
		logger.Warn("MQ.Connect", fmt.Sprintf("RabbitMQ not ready, retrying... (%d/10)", i+1))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
}

func (c *Connection) dial() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn, c.channel = conn, ch
	c.mu.Unlock()
	return nil
}

func (c *Connection) monitor() {
	for {
		c.mu.RLock()
		notifyClose := c.conn.NotifyClose(make(chan *amqp091.Error, 1))
		c.mu.RUnlock()

		var err *amqp091.Error
		select {
		case <-c.done:
			return
		case err = <-notifyClose:
		}
		if err == nil {
			// Closed cleanly.
			return
		}

		c.logger.Warn("MQ.Monitor", fmt.Sprintf("RabbitMQ connection lost: %v. Attempting to reconnect...", err))

		backoff := 5 * time.Second
		maxBackoff := 60 * time.Second
		for {
			select {
			case <-c.done:
				return
			case <-time.After(backoff):
			}

			if dialErr := c.dial(); dialErr != nil {
				c.logger.Warn("MQ.Monitor", fmt.Sprintf("Reconnection failed: %v. Retrying in %v...", dialErr, backoff))
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			c.logger.OK("MQ.Monitor", "Successfully reconnected to RabbitMQ")
			break
		}
	}
}

// Channel is the shared publishing channel.
func (c *Connection) Channel() (*amqp091.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || c.conn.IsClosed() {
		return nil, ErrClosed
	}
	return c.channel, nil
}

// NewChannel opens a dedicated channel, e.g. for a consumer.
func (c *Connection) NewChannel() (*amqp091.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || c.conn.IsClosed() {
		return nil, ErrClosed
	}
	return c.conn.Channel()
}

func (c *Connection) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn == nil || c.conn.IsClosed()
}

func (c *Connection) Close() error {
	c.once.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}

// DeclareTopology declares the durable change exchange and queue and binds
// every change.* routing key to it.
func DeclareTopology(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, ChangeRoutingPrefix+"*", exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

// ChannelSource hands out the current publishing channel.
type ChannelSource interface {
	Channel() (*amqp091.Channel, error)
}

type Publisher struct {
	src      ChannelSource
	exchange string
	now      func() time.Time
}

func NewPublisher(src ChannelSource, exchange string) *Publisher {
	return &Publisher{src: src, exchange: exchange, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	ch, err := p.src.Channel()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    p.now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Notify publishes a change signal for table/key on change.<table>.
func (p *Publisher) Notify(ctx context.Context, table, key string) error {
	body, err := EncodeChange(realtime.Change{Table: table, Key: key, At: p.now().UTC()})
	if err != nil {
		return err
	}
	return p.Publish(ctx, RoutingKey(table), body)
}

func RoutingKey(table string) string {
	return ChangeRoutingPrefix + table
}

func EncodeChange(c realtime.Change) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change: %w", err)
	}
	return body, nil
}

func DecodeChange(body []byte) (realtime.Change, error) {
	var c realtime.Change
	if err := json.Unmarshal(body, &c); err != nil {
		return c, fmt.Errorf("failed to unmarshal change: %w", err)
	}
	if c.Table == "" {
		return c, errors.New("change without table")
	}
	return c, nil
}
