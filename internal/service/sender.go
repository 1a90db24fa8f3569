package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
)

// Message is one personalized campaign message.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Sender delivers a message through an outbound transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrSimulatedFailure is returned by MockSender for its simulated failures.
var ErrSimulatedFailure = errors.New("simulated delivery failure")

// MockSender simulates a provider that succeeds with probability SuccessRate.
type MockSender struct {
	SuccessRate float64
	// Float returns a value in [0,1). Nil uses math/rand/v2.
	Float func() float64
}

func (m *MockSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	roll := rand.Float64
	if m.Float != nil {
		roll = m.Float
	}
	if roll() >= m.SuccessRate {
		return ErrSimulatedFailure
	}
	log.Printf("📤 Mock sent %q to %s", msg.Subject, msg.To)
	return nil
}

var _ Sender = (*MockSender)(nil)
