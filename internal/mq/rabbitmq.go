package mq

import (
	"CipherShare/config"
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeCleanup = "cleanup.exchange"
	ExchangeRetry   = "cleanup.retry.exchange"
	ExchangeDLQ     = "cleanup.dlq.exchange"

	QueueCleanup = "cleanup.queue"
	QueueRetry   = "cleanup.retry.queue"
	QueueDLQ     = "cleanup.dlq.queue"

	RoutingCleanup = "cleanup"
	RoutingRetry   = "cleanup.retry"
	RoutingDLQ     = "cleanup.dlq"
)

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

var publisherMu sync.Mutex
var publisher *Client

// Dial opens a connection and channel to RabbitMQ.
func Dial() (*Client, error) {
	conn, err := amqp.Dial(config.AppConfig.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

// GetPublisher returns a shared publisher client, redialing when the cached
// one has gone stale.
func GetPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	client, err := Dial()
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	publisher = client
	return publisher, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// DeclareTopology declares the cleanup work queue, the retry queue whose
// expired messages dead-letter back into the work queue, and the DLQ for
// messages past the retry budget.
func (c *Client) DeclareTopology() error {
	exchanges := []string{ExchangeCleanup, ExchangeRetry, ExchangeDLQ}
	for _, exchange := range exchanges {
		if err := c.Channel.ExchangeDeclare(
			exchange,
			"direct",
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return err
		}
	}

	if _, err := c.Channel.QueueDeclare(
		QueueCleanup,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueRetry,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    ExchangeCleanup,
			"x-dead-letter-routing-key": RoutingCleanup,
		},
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueDLQ,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	bindings := []struct {
		queue, key, exchange string
	}{
		{QueueCleanup, RoutingCleanup, ExchangeCleanup},
		{QueueRetry, RoutingRetry, ExchangeRetry},
		{QueueDLQ, RoutingDLQ, ExchangeDLQ},
	}
	for _, b := range bindings {
		if err := c.Channel.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// PublishCleanup enqueues a cleanup task.
func (c *Client) PublishCleanup(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeCleanup, RoutingCleanup, body, "")
}

// PublishRetry enqueues a cleanup task on the retry queue with a per-message
// TTL; expiry dead-letters it back to the work queue.
func (c *Client) PublishRetry(ctx context.Context, body []byte, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	expiration := fmt.Sprintf("%d", delay.Milliseconds())
	return c.publish(ctx, ExchangeRetry, RoutingRetry, body, expiration)
}

// PublishDLQ parks a task that exhausted its retries.
func (c *Client) PublishDLQ(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeDLQ, RoutingDLQ, body, "")
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte, expiration string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if expiration != "" {
		msg.Expiration = expiration
	}
	return c.Channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}
