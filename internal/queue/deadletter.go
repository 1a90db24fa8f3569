package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unclebandit/xeno-crm/internal/model"
)

// DeadLetter is a job the worker gave up on.
type DeadLetter struct {
	Job      model.IngestionJob
	Error    string
	Attempts int
	FailedAt time.Time
}

type deadLetterWire struct {
	Job      json.RawMessage `json:"job"`
	Error    string          `json:"error"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failedAt"`
}

func (d DeadLetter) MarshalJSON() ([]byte, error) {
	job, err := model.MarshalJob(d.Job)
	if err != nil {
		return nil, err
	}
	return json.Marshal(deadLetterWire{Job: job, Error: d.Error, Attempts: d.Attempts, FailedAt: d.FailedAt})
}

func (d *DeadLetter) UnmarshalJSON(b []byte) error {
	var w deadLetterWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	job, err := model.UnmarshalJob(w.Job)
	if err != nil {
		return err
	}
	*d = DeadLetter{Job: job, Error: w.Error, Attempts: w.Attempts, FailedAt: w.FailedAt}
	return nil
}

// DeadLetterSink receives jobs that failed every attempt.
type DeadLetterSink interface {
	Publish(ctx context.Context, letter DeadLetter) error
}

// MemoryDeadLetters keeps the most recent dead letters for inspection.
type MemoryDeadLetters struct {
	mu      sync.Mutex
	letters []DeadLetter
	max     int
}

// NewMemoryDeadLetters keeps at most max letters; older ones are dropped first.
func NewMemoryDeadLetters(max int) *MemoryDeadLetters {
	return &MemoryDeadLetters{max: max}
}

func (m *MemoryDeadLetters) Publish(_ context.Context, letter DeadLetter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.letters = append(m.letters, letter)
	if m.max > 0 && len(m.letters) > m.max {
		m.letters = append([]DeadLetter(nil), m.letters[len(m.letters)-m.max:]...)
	}
	return nil
}

// List returns a copy, oldest first.
func (m *MemoryDeadLetters) List() []DeadLetter {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeadLetter, len(m.letters))
	copy(out, m.letters)
	return out
}

// MultiSink publishes to every sink and reports all failures.
type MultiSink []DeadLetterSink

func (m MultiSink) Publish(ctx context.Context, letter DeadLetter) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Publish(ctx, letter); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("dead letter publish: %w", errors.Join(errs...))
	}
	return nil
}

var (
	_ DeadLetterSink = (*MemoryDeadLetters)(nil)
	_ DeadLetterSink = MultiSink(nil)
)
