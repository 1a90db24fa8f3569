package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"
)

// RetryCountHeader carries how many times a dead letter has been replayed.
const RetryCountHeader = "x-retry-count"

// AMQPDeadLetters publishes dead letters to a durable RabbitMQ queue.
type AMQPDeadLetters struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// DialAMQPDeadLetters connects to RabbitMQ and declares the dead letter queue.
func DialAMQPDeadLetters(url, queueName string) (*AMQPDeadLetters, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := DeclareDeadLetterQueue(ch, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPDeadLetters{conn: conn, ch: ch, queue: queueName}, nil
}

// DeclareDeadLetterQueue declares the durable queue shared by the publisher and the replayer.
func DeclareDeadLetterQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return q, fmt.Errorf("declare queue %s: %w", name, err)
	}
	return q, nil
}

// Publish sends the letter as persistent JSON with a zero retry count.
func (a *AMQPDeadLetters) Publish(_ context.Context, letter DeadLetter) error {
	return a.PublishWithRetries(letter, 0)
}

// PublishWithRetries republishes a letter, recording retries in RetryCountHeader.
func (a *AMQPDeadLetters) PublishWithRetries(letter DeadLetter, retries int) error {
	body, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.ch.Publish(
		"",
		a.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    letter.Job.JobID(),
			Timestamp:    letter.FailedAt,
			Headers:      amqp.Table{RetryCountHeader: int32(retries)},
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish dead letter %s: %w", letter.Job.JobID(), err)
	}
	log.Printf("📤 Dead letter %s published to %s", letter.Job.JobID(), a.queue)
	return nil
}

// RetryCount reads RetryCountHeader from a delivery. Missing or malformed headers count as zero.
func RetryCount(headers amqp.Table) int {
	switch v := headers[RetryCountHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func (a *AMQPDeadLetters) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ch.Close(); err != nil {
		a.conn.Close()
		return err
	}
	return a.conn.Close()
}

var _ DeadLetterSink = (*AMQPDeadLetters)(nil)
