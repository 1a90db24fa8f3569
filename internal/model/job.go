// internal/model/job.go
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	JobKindCustomer JobKind = "customer"
	JobKindOrder    JobKind = "order"
)

// IngestionJob is a buffered write. The only implementations are CustomerJob and OrderJob.
type IngestionJob interface {
	JobID() string
	Kind() JobKind
	// RecordID is the key of the record the job writes.
	RecordID() string
	sealed()
}

type CustomerJob struct {
	ID         string    `json:"id"`
	Customer   Customer  `json:"customer"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

type OrderJob struct {
	ID         string    `json:"id"`
	Order      Order     `json:"order"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

func NewCustomerJob(c Customer) *CustomerJob {
	return &CustomerJob{ID: uuid.NewString(), Customer: c, EnqueuedAt: time.Now()}
}

func NewOrderJob(o Order) *OrderJob {
	return &OrderJob{ID: uuid.NewString(), Order: o, EnqueuedAt: time.Now()}
}

func (j *CustomerJob) JobID() string    { return j.ID }
func (j *CustomerJob) Kind() JobKind    { return JobKindCustomer }
func (j *CustomerJob) RecordID() string { return j.Customer.ID }
func (*CustomerJob) sealed()            {}

func (j *OrderJob) JobID() string    { return j.ID }
func (j *OrderJob) Kind() JobKind    { return JobKindOrder }
func (j *OrderJob) RecordID() string { return j.Order.OrderID }
func (*OrderJob) sealed()            {}

// jobEnvelope is the wire form of a job, used when jobs leave the process (dead letters).
type jobEnvelope struct {
	Type JobKind         `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJob encodes a job as {"type": ..., "data": ...}.
func MarshalJob(job IngestionJob) ([]byte, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jobEnvelope{Type: job.Kind(), Data: data})
}

// UnmarshalJob decodes the output of MarshalJob.
func UnmarshalJob(b []byte) (IngestionJob, error) {
	var env jobEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode job envelope: %w", err)
	}
	switch env.Type {
	case JobKindCustomer:
		var j CustomerJob
		if err := json.Unmarshal(env.Data, &j); err != nil {
			return nil, fmt.Errorf("decode customer job: %w", err)
		}
		return &j, nil
	case JobKindOrder:
		var j OrderJob
		if err := json.Unmarshal(env.Data, &j); err != nil {
			return nil, fmt.Errorf("decode order job: %w", err)
		}
		return &j, nil
	default:
		return nil, fmt.Errorf("unknown job type %q", env.Type)
	}
}
