package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cloud.google.com/go/pubsub"
)

// PubSubDeadLetters publishes dead letters to a Google Cloud Pub/Sub topic.
type PubSubDeadLetters struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubDeadLetters opens the topic, creating it when it does not exist.
func NewPubSubDeadLetters(ctx context.Context, projectID, topicID string) (*PubSubDeadLetters, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check topic existence: %w", err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create topic: %w", err)
		}
	}
	return &PubSubDeadLetters{client: client, topic: topic}, nil
}

// Publish blocks until the server acknowledges the message.
func (p *PubSubDeadLetters) Publish(ctx context.Context, letter DeadLetter) error {
	body, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"job_id":   letter.Job.JobID(),
			"job_type": string(letter.Job.Kind()),
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish dead letter %s: %w", letter.Job.JobID(), err)
	}
	log.Printf("📤 Dead letter %s published to Pub/Sub (message %s)", letter.Job.JobID(), id)
	return nil
}

func (p *PubSubDeadLetters) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

var _ DeadLetterSink = (*PubSubDeadLetters)(nil)
