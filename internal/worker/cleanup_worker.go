package worker

import (
	"CipherShare/config"
	"CipherShare/internal/mq"
	"CipherShare/internal/service"
	"CipherShare/internal/storage"
	"CipherShare/internal/task"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"
)

// RunCleanupWorker consumes orphan-cleanup tasks from RabbitMQ and removes
// the named objects from their buckets.
func RunCleanupWorker(ctx context.Context, registry *service.BucketRegistry) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := config.AppConfig.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueCleanup,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	concurrency := config.AppConfig.CleanupWorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	burst := config.AppConfig.CleanupBurst
	if burst <= 0 {
		burst = 1
	}
	rateLimit := config.AppConfig.CleanupRate
	var limiter *rate.Limiter
	if rateLimit <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("cleanup worker: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handleCleanupMessage(ctx, client, registry, limiter, d)
			}(delivery)
		}
	}
}

func handleCleanupMessage(
	ctx context.Context,
	client *mq.Client,
	registry *service.BucketRegistry,
	limiter *rate.Limiter,
	delivery amqp.Delivery,
) {
	var msg task.CleanupMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		log.Printf("cleanup worker: invalid message: %v", err)
		_ = delivery.Ack(false)
		return
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			_ = delivery.Nack(false, true)
			return
		}
	}

	if err := removeOrphan(ctx, registry, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = delivery.Nack(false, true)
			return
		}
		if err := scheduleRetry(ctx, client, msg, err); err != nil {
			log.Printf("cleanup worker: retry schedule failed: %v", err)
			_ = delivery.Nack(false, true)
			return
		}
	}

	_ = delivery.Ack(false)
}

// removeOrphan deletes the named object. An already-absent object counts as
// success.
func removeOrphan(ctx context.Context, registry *service.BucketRegistry, msg task.CleanupMessage) error {
	bucket, err := registry.ResolveByID(ctx, msg.BucketID)
	if err != nil {
		return err
	}
	if err := bucket.Store.RemoveObject(ctx, bucket.Name, msg.Object); err != nil && !storage.IsNotExist(err) {
		return err
	}
	log.Printf("cleanup worker: removed orphan %s from bucket %d", msg.Object, msg.BucketID)
	return nil
}

func scheduleRetry(ctx context.Context, client *mq.Client, msg task.CleanupMessage, procErr error) error {
	maxRetry := config.AppConfig.CleanupRetryMax
	if maxRetry < 0 {
		maxRetry = 0
	}
	nextAttempt := msg.Attempt + 1
	if maxRetry == 0 || nextAttempt > maxRetry {
		return parkFailed(ctx, client, msg, procErr)
	}

	delay := pickRetryDelay(nextAttempt, config.AppConfig.CleanupRetryDelays)
	msg.Attempt = nextAttempt
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	log.Printf("cleanup worker: orphan %s retry %d in %v: %v", msg.Object, nextAttempt, delay, procErr)
	return client.PublishRetry(ctx, body, delay)
}

type dlqMessage struct {
	BucketID uint64    `json:"bucket_id"`
	Object   string    `json:"object"`
	Attempt  int       `json:"attempt"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

func parkFailed(ctx context.Context, client *mq.Client, msg task.CleanupMessage, procErr error) error {
	dlq := dlqMessage{
		BucketID: msg.BucketID,
		Object:   msg.Object,
		Attempt:  msg.Attempt,
		Error:    procErr.Error(),
		FailedAt: time.Now(),
	}
	body, err := json.Marshal(dlq)
	if err != nil {
		return err
	}
	log.Printf("cleanup worker: orphan %s exhausted retries: %v", msg.Object, procErr)
	return client.PublishDLQ(ctx, body)
}

func pickRetryDelay(attempt int, delays []time.Duration) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	index := attempt - 1
	if index < 0 {
		index = 0
	}
	if index >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[index]
}
