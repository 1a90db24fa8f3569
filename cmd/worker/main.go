// cmd/worker replays ingestion jobs that the server dead-lettered to RabbitMQ.
// Each job is re-applied to the shared store; failures are republished with an
// incremented retry count until REPLAY_MAX_RETRIES is reached.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/streadway/amqp"

	"github.com/unclebandit/xeno-crm/internal/config"
	"github.com/unclebandit/xeno-crm/internal/queue"
	"github.com/unclebandit/xeno-crm/internal/repository"
	"github.com/unclebandit/xeno-crm/internal/service"
)

type action int

const (
	actionApplied action = iota
	actionRetried
	actionDiscarded
)

func (a action) String() string {
	switch a {
	case actionApplied:
		return "applied"
	case actionRetried:
		return "retried"
	default:
		return "discarded"
	}
}

// republishFunc puts a letter back on the dead letter queue with the given retry count.
type republishFunc func(letter queue.DeadLetter, retries int) error

// handleDelivery applies one dead letter. The delivery is always acked by the
// caller: a failed job is either republished with retries+1 or discarded.
func handleDelivery(ctx context.Context, body []byte, headers amqp.Table, applier service.Applier, republish republishFunc, maxRetries int, jobTimeout time.Duration) action {
	var letter queue.DeadLetter
	if err := json.Unmarshal(body, &letter); err != nil {
		log.Println("❌ Invalid dead letter:", err)
		return actionDiscarded
	}

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	err := applier.Apply(jobCtx, letter.Job)
	cancel()
	if err == nil {
		log.Printf("✅ Replayed %s job %s", letter.Job.Kind(), letter.Job.JobID())
		return actionApplied
	}

	retries := queue.RetryCount(headers)
	log.Printf("⚠️ Replay of %s job %s failed (retry %d): %v", letter.Job.Kind(), letter.Job.JobID(), retries, err)
	if retries >= maxRetries {
		log.Printf("❌ Giving up on %s job %s after %d replays", letter.Job.Kind(), letter.Job.JobID(), retries)
		return actionDiscarded
	}

	letter.Attempts++
	letter.Error = err.Error()
	letter.FailedAt = time.Now().UTC()
	if err := republish(letter, retries+1); err != nil {
		log.Printf("❌ Failed to republish job %s: %v", letter.Job.JobID(), err)
		return actionDiscarded
	}
	return actionRetried
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration:", err)
	}
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the dead letter worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open store:", err)
	}
	defer store.Close()
	applier := &service.JobApplier{CustomerRepo: store.Customers, OrderRepo: store.Orders}

	// Publisher connection used for republishing failed replays.
	publisher, err := queue.DialAMQPDeadLetters(cfg.AMQPURL, cfg.DeadLetterQueue)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer publisher.Close()

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := queue.DeclareDeadLetterQueue(ch, cfg.DeadLetterQueue)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		log.Fatal("Failed to set QoS:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	log.Printf("👷 Dead letter worker consuming %s", q.Name)
	for {
		select {
		case <-ctx.Done():
			log.Println("👋 Dead letter worker shutting down")
			return
		case d, ok := <-msgs:
			if !ok {
				log.Println("⚠️ Delivery channel closed")
				return
			}
			result := handleDelivery(ctx, d.Body, d.Headers, applier, publisher.PublishWithRetries, cfg.ReplayMaxRetries, cfg.Ingest.JobTimeout)
			if err := d.Ack(false); err != nil {
				log.Println("⚠️ Failed to ack delivery:", err)
			}
			log.Printf("Dead letter %s: %s", d.MessageId, result)
		}
	}
}
