package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/service"
)

var errStoreDown = errors.New("store unavailable")

// failingOutcomeRepo fails every write and counts calls.
type failingOutcomeRepo struct {
	mu     sync.Mutex
	writes int
}

func (m *failingOutcomeRepo) Upsert(ctx context.Context, o model.DeliveryOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	return errStoreDown
}

func (m *failingOutcomeRepo) ListAll(ctx context.Context) ([]model.DeliveryOutcome, error) {
	return nil, errStoreDown
}

// countingCustomerRepo records whether the store was read.
type countingCustomerRepo struct {
	customers []model.Customer
	listCalls int
}

func (m *countingCustomerRepo) Upsert(ctx context.Context, c model.Customer) error {
	m.customers = append(m.customers, c)
	return nil
}

func (m *countingCustomerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *countingCustomerRepo) ListAll(ctx context.Context) ([]model.Customer, error) {
	m.listCalls++
	return m.customers, nil
}

// failingCustomerRepo fails every write.
type failingCustomerRepo struct{ countingCustomerRepo }

func (m *failingCustomerRepo) Upsert(ctx context.Context, c model.Customer) error {
	return errStoreDown
}

// scriptedApplier fails the first failures calls, then succeeds.
type scriptedApplier struct {
	mu       sync.Mutex
	failures int
	calls    int
	applied  []string
}

func (a *scriptedApplier) Apply(ctx context.Context, job model.IngestionJob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.calls <= a.failures {
		return errStoreDown
	}
	a.applied = append(a.applied, job.RecordID())
	return nil
}

func (a *scriptedApplier) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// blockingApplier waits for its context to end.
type blockingApplier struct{}

func (blockingApplier) Apply(ctx context.Context, job model.IngestionJob) error {
	<-ctx.Done()
	return ctx.Err()
}

// gatedApplier blocks each call until release is closed or its context ends.
type gatedApplier struct {
	started chan struct{}
	release chan struct{}

	mu      sync.Mutex
	applied []string
}

func newGatedApplier() *gatedApplier {
	return &gatedApplier{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (a *gatedApplier) Apply(ctx context.Context, job model.IngestionJob) error {
	a.started <- struct{}{}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.release:
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, job.RecordID())
	return nil
}

func (a *gatedApplier) Applied() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.applied...)
}

// stubSender returns results in order, then succeeds.
type stubSender struct {
	results []error
	sent    []string
}

func (s *stubSender) Send(ctx context.Context, msg service.Message) error {
	s.sent = append(s.sent, msg.Text)
	if len(s.results) == 0 {
		return nil
	}
	err := s.results[0]
	s.results = s.results[1:]
	return err
}
