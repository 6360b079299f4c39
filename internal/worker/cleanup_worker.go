package worker

import (
	"ImageHub/config"
	"ImageHub/internal/mq"
	"ImageHub/internal/storage"
	"ImageHub/internal/task"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"
)

type cleanupDLQMessage struct {
	Bucket   string    `json:"bucket"`
	Object   string    `json:"object"`
	Attempt  int       `json:"attempt"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// RunCleanupWorker consumes orphan-blob removal retries from RabbitMQ.
func RunCleanupWorker(ctx context.Context) error {
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
				handleCleanupMessage(ctx, client, limiter, d)
			}(delivery)
		}
	}
}

func handleCleanupMessage(ctx context.Context, client *mq.Client, limiter *rate.Limiter, delivery amqp.Delivery) {
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

	loc := storage.Location{Bucket: msg.Bucket, Object: msg.Object}
	if err := storage.Blobs.Remove(ctx, loc); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = delivery.Nack(false, true)
			return
		}
		if err := scheduleCleanupRetry(ctx, client, msg, err); err != nil {
			log.Printf("cleanup worker: retry schedule failed: %v", err)
			_ = delivery.Nack(false, true)
			return
		}
	} else {
		log.Printf("cleanup worker: removed %s/%s", msg.Bucket, msg.Object)
	}

	_ = delivery.Ack(false)
}

func scheduleCleanupRetry(ctx context.Context, client *mq.Client, msg task.CleanupMessage, procErr error) error {
	maxRetry := config.AppConfig.CleanupRetryMax
	if maxRetry < 0 {
		maxRetry = 0
	}
	nextAttempt := msg.Attempt + 1
	if maxRetry == 0 || nextAttempt > maxRetry {
		return publishCleanupDLQ(ctx, client, msg, procErr)
	}

	delay := pickRetryDelay(nextAttempt, config.AppConfig.CleanupRetryDelays)
	msg.Attempt = nextAttempt
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return client.PublishRetry(ctx, body, delay)
}

func publishCleanupDLQ(ctx context.Context, client *mq.Client, msg task.CleanupMessage, procErr error) error {
	dlq := cleanupDLQMessage{
		Bucket:   msg.Bucket,
		Object:   msg.Object,
		Attempt:  msg.Attempt,
		Error:    procErr.Error(),
		FailedAt: time.Now(),
	}
	body, err := json.Marshal(dlq)
	if err != nil {
		return err
	}
	if err := client.PublishDLQ(ctx, body); err != nil {
		log.Printf("cleanup worker: dlq publish failed: %v", err)
	}
	return nil
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
