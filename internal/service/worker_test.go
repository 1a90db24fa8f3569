package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/unclebandit/xeno-crm/internal/model"
	"github.com/unclebandit/xeno-crm/internal/queue"
	"github.com/unclebandit/xeno-crm/internal/service"
)

func enqueueCustomers(q queue.Queue, n int) {
	for i := 1; i <= n; i++ {
		q.Enqueue(model.NewCustomerJob(model.Customer{ID: fmt.Sprintf("c%d", i), Name: "N", Email: "e@x.io"}))
	}
}

func TestWorker_TickDrainsBoundedBatch(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 5)
	applier := &scriptedApplier{}
	w := service.NewWorker(q, applier, nil, service.WorkerConfig{Tick: time.Second, BatchSize: 2})

	if n := w.Tick(context.Background()); n != 2 {
		t.Fatalf("expected 2 jobs in first tick, got %d", n)
	}
	if q.Len() != 3 {
		t.Fatalf("expected 3 jobs left, got %d", q.Len())
	}
	w.Tick(context.Background())
	w.Tick(context.Background())
	if n := w.Tick(context.Background()); n != 0 {
		t.Errorf("expected empty tick to be a no-op, got %d", n)
	}

	want := []string{"c1", "c2", "c3", "c4", "c5"}
	if fmt.Sprint(applier.applied) != fmt.Sprint(want) {
		t.Errorf("applied %v, want %v", applier.applied, want)
	}
	if stats := w.Stats(); stats.Applied != 5 || stats.Failed != 0 || stats.Pending != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestWorker_RetriesThenSucceeds(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 1)
	applier := &scriptedApplier{failures: 2}
	dead := queue.NewMemoryDeadLetters(10)
	w := service.NewWorker(q, applier, dead, service.WorkerConfig{BatchSize: 10, MaxRetries: 2, RetryBackoff: time.Millisecond})

	w.Tick(context.Background())

	if applier.Calls() != 3 {
		t.Errorf("expected 3 attempts, got %d", applier.Calls())
	}
	if len(dead.List()) != 0 {
		t.Errorf("expected no dead letters, got %d", len(dead.List()))
	}
	if stats := w.Stats(); stats.Applied != 1 || stats.Failed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestWorker_DeadLettersAfterRetries(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 2)
	applier := &scriptedApplier{failures: 100}
	dead := queue.NewMemoryDeadLetters(10)
	w := service.NewWorker(q, applier, dead, service.WorkerConfig{BatchSize: 10, MaxRetries: 1})

	w.Tick(context.Background())

	letters := dead.List()
	if len(letters) != 2 {
		t.Fatalf("expected 2 dead letters, got %d", len(letters))
	}
	if letters[0].Attempts != 2 || letters[0].Job.RecordID() != "c1" {
		t.Errorf("unexpected dead letter: %+v", letters[0])
	}
	if letters[0].Error == "" {
		t.Error("expected failure reason on dead letter")
	}
	if stats := w.Stats(); stats.Failed != 2 || stats.DeadLettered != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestWorker_DropsWithoutSink(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 1)
	applier := &scriptedApplier{failures: 1}
	w := service.NewWorker(q, applier, nil, service.WorkerConfig{BatchSize: 1})

	w.Tick(context.Background())

	if applier.Calls() != 1 {
		t.Errorf("expected a single attempt with no retries, got %d", applier.Calls())
	}
	if q.Len() != 0 {
		t.Errorf("failed job must not be requeued, queue has %d", q.Len())
	}
	if stats := w.Stats(); stats.Failed != 1 || stats.DeadLettered != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestWorker_JobTimeout(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 1)
	dead := queue.NewMemoryDeadLetters(10)
	w := service.NewWorker(q, blockingApplier{}, dead, service.WorkerConfig{BatchSize: 1, JobTimeout: 20 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		w.Tick(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tick did not return after job timeout")
	}

	letters := dead.List()
	if len(letters) != 1 {
		t.Fatalf("expected timed-out job to be dead-lettered, got %d", len(letters))
	}
	if letters[0].Error != context.DeadlineExceeded.Error() {
		t.Errorf("expected deadline error, got %q", letters[0].Error)
	}
}

func TestWorker_ConcurrentTicksApplyEachJobOnce(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 200)
	applier := &scriptedApplier{}
	w := service.NewWorker(q, applier, nil, service.WorkerConfig{BatchSize: 7})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w.Tick(context.Background()) > 0 {
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range applier.applied {
		if seen[id] {
			t.Fatalf("job for %s applied twice", id)
		}
		seen[id] = true
	}
	if len(seen) != 200 {
		t.Errorf("expected 200 applied jobs, got %d", len(seen))
	}
}

func TestWorker_StartAndDrain(t *testing.T) {
	q := queue.NewInMemoryQueue()
	applier := &scriptedApplier{}
	w := service.NewWorker(q, applier, nil, service.WorkerConfig{Tick: 5 * time.Millisecond, BatchSize: 10})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	enqueueCustomers(q, 3)
	deadline := time.Now().Add(2 * time.Second)
	for w.Stats().Applied < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := w.Stats().Applied; got != 3 {
		t.Fatalf("expected worker to apply 3 jobs, got %d", got)
	}

	cancel()
	<-stopped

	enqueueCustomers(q, 25)
	w.Drain(context.Background())
	if q.Len() != 0 {
		t.Errorf("expected drain to empty the queue, %d left", q.Len())
	}
	if got := w.Stats().Applied; got != 28 {
		t.Errorf("expected 28 applied, got %d", got)
	}
}

func TestWorker_CanceledDuringBackoffStillDeadLetters(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 1)
	dead := queue.NewMemoryDeadLetters(10)
	applier := &scriptedApplier{failures: 100}
	w := service.NewWorker(q, applier, dead, service.WorkerConfig{BatchSize: 1, MaxRetries: 5, RetryBackoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	w.Tick(ctx)

	if applier.Calls() != 1 {
		t.Errorf("expected backoff to be interrupted after 1 attempt, got %d", applier.Calls())
	}
	letters := dead.List()
	if len(letters) != 1 || letters[0].Attempts != 1 {
		t.Fatalf("expected one dead letter with 1 attempt, got %+v", letters)
	}
	if letters[0].Error != errStoreDown.Error() {
		t.Errorf("expected last apply error to be kept, got %q", letters[0].Error)
	}
}

func TestWorker_CancelMidJobFinishesCurrentJob(t *testing.T) {
	q := queue.NewInMemoryQueue()
	enqueueCustomers(q, 2)
	dead := queue.NewMemoryDeadLetters(10)
	applier := newGatedApplier()
	w := service.NewWorker(q, applier, dead, service.WorkerConfig{BatchSize: 10, JobTimeout: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int)
	go func() { done <- w.Tick(ctx) }()

	<-applier.started
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(applier.release)

	if n := <-done; n != 1 {
		t.Fatalf("expected tick to stop after the in-flight job, took %d", n)
	}
	if got := applier.Applied(); len(got) != 1 || got[0] != "c1" {
		t.Fatalf("expected c1 to be applied, got %v", got)
	}
	if len(dead.List()) != 0 {
		t.Errorf("in-flight job must not be dead-lettered on shutdown, got %+v", dead.List())
	}
	if q.Len() != 1 {
		t.Fatalf("expected c2 left for drain, queue has %d", q.Len())
	}

	w.Drain(context.Background())
	if got := applier.Applied(); len(got) != 2 || got[1] != "c2" {
		t.Errorf("expected drain to apply c2, got %v", got)
	}
}
