package queue

import (
	"sync"

	"github.com/unclebandit/xeno-crm/internal/model"
)

// Queue is the ingestion buffer shared by the intake handlers and the worker.
type Queue interface {
	Enqueue(job model.IngestionJob)
	Dequeue() (model.IngestionJob, bool)
	Len() int
}

// InMemoryQueue is an unbounded FIFO. Dequeue removes and returns under one
// lock, so a job is handed out at most once.
type InMemoryQueue struct {
	mu   sync.Mutex
	jobs []model.IngestionJob
	head int
}

// NewInMemoryQueue creates an empty queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{}
}

// Enqueue appends a job. It never blocks.
func (q *InMemoryQueue) Enqueue(job model.IngestionJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

// Dequeue removes the oldest job. ok is false when the queue is empty.
func (q *InMemoryQueue) Dequeue() (model.IngestionJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.jobs) {
		return nil, false
	}
	job := q.jobs[q.head]
	q.jobs[q.head] = nil
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 64 && q.head*2 >= len(q.jobs) {
		q.jobs = append([]model.IngestionJob(nil), q.jobs[q.head:]...)
		q.head = 0
	}
	return job, true
}

// Len returns the number of pending jobs.
func (q *InMemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs) - q.head
}

var _ Queue = (*InMemoryQueue)(nil)
