package service

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/queue"
)

// WorkerConfig controls how the ingestion worker drains the queue.
type WorkerConfig struct {
	Tick       time.Duration
	BatchSize  int
	JobTimeout time.Duration
	// MaxRetries is the number of extra attempts after the first failure.
	MaxRetries   int
	RetryBackoff time.Duration
}

// WorkerStats is a snapshot of worker counters.
type WorkerStats struct {
	Applied      int64 `json:"applied"`
	Failed       int64 `json:"failed"`
	DeadLettered int64 `json:"deadLettered"`
	Pending      int   `json:"pending"`
}

// Worker applies queued ingestion jobs on a timer.
type Worker struct {
	Queue       queue.Queue
	Applier     Applier
	DeadLetters queue.DeadLetterSink // nil drops failed jobs after logging
	Config      WorkerConfig

	mu           sync.Mutex // one tick at a time
	applied      atomic.Int64
	failed       atomic.Int64
	deadLettered atomic.Int64
}

// Constructor
func NewWorker(q queue.Queue, applier Applier, deadLetters queue.DeadLetterSink, cfg WorkerConfig) *Worker {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &Worker{
		Queue:       q,
		Applier:     applier,
		DeadLetters: deadLetters,
		Config:      cfg,
	}
}

// Start runs ticks until ctx is canceled. A job already being applied is
// finished; jobs still queued at that point are left for Drain.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.Config.Tick)
	defer ticker.Stop()

	log.Printf("👷 Ingestion worker started (tick=%s batch=%d)", w.Config.Tick, w.Config.BatchSize)
	for {
		select {
		case <-ctx.Done():
			log.Println("👷 Ingestion worker stopping")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick applies up to BatchSize jobs and returns how many it took off the queue.
// An empty queue makes it a no-op.
func (w *Worker) Tick(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for n < w.Config.BatchSize {
		if ctx.Err() != nil {
			break
		}
		job, ok := w.Queue.Dequeue()
		if !ok {
			break
		}
		w.process(ctx, job)
		n++
	}
	return n
}

// Drain ticks until the queue is empty or ctx ends.
func (w *Worker) Drain(ctx context.Context) {
	for w.Queue.Len() > 0 && ctx.Err() == nil {
		if w.Tick(ctx) == 0 {
			return
		}
	}
	if left := w.Queue.Len(); left > 0 {
		log.Printf("⚠️ Ingestion worker stopped with %d jobs still queued", left)
	}
}

func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Applied:      w.applied.Load(),
		Failed:       w.failed.Load(),
		DeadLettered: w.deadLettered.Load(),
		Pending:      w.Queue.Len(),
	}
}

func (w *Worker) process(ctx context.Context, job model.IngestionJob) {
	var err error
	attempts := 0
	for attempt := 0; attempt <= w.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			if !sleepCtx(ctx, w.Config.RetryBackoff*time.Duration(attempt)) {
				break
			}
		}
		attempts++
		err = w.applyOnce(ctx, job)
		if err == nil {
			w.applied.Add(1)
			return
		}
		log.Printf("⚠️ %s job %s (record %s) attempt %d failed: %v", job.Kind(), job.JobID(), job.RecordID(), attempts, err)
	}
	if err == nil {
		err = ctx.Err()
	}

	w.failed.Add(1)
	if w.DeadLetters == nil {
		log.Printf("❌ Dropping %s job %s after %d attempts", job.Kind(), job.JobID(), attempts)
		return
	}

	letter := queue.DeadLetter{
		Job:      job,
		Error:    err.Error(),
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	// The dead-letter publish gets its own deadline so shutdown does not lose it.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout())
	defer cancel()
	if perr := w.DeadLetters.Publish(pubCtx, letter); perr != nil {
		log.Printf("❌ Failed to dead-letter %s job %s: %v", job.Kind(), job.JobID(), perr)
		return
	}
	w.deadLettered.Add(1)
	log.Printf("📮 Dead-lettered %s job %s after %d attempts", job.Kind(), job.JobID(), attempts)
}

// applyOnce runs one attempt under the job timeout only. Canceling ctx stops
// the worker between jobs and between retries, never in the middle of a write.
func (w *Worker) applyOnce(ctx context.Context, job model.IngestionJob) error {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout())
	defer cancel()
	return w.Applier.Apply(jobCtx, job)
}

func (w *Worker) timeout() time.Duration {
	if w.Config.JobTimeout <= 0 {
		return 5 * time.Second
	}
	return w.Config.JobTimeout
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
