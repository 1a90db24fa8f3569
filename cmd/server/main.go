// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/unclebandit/xeno-crm/internal/config"
	"github.com/unclebandit/xeno-crm/internal/controller"
	"github.com/unclebandit/xeno-crm/internal/handler"
	"github.com/unclebandit/xeno-crm/internal/queue"
	"github.com/unclebandit/xeno-crm/internal/repository"
	"github.com/unclebandit/xeno-crm/internal/segment"
	"github.com/unclebandit/xeno-crm/internal/service"
)

const (
	shutdownTimeout = 15 * time.Second
	deadLetterCap   = 500
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init store
	store, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open store:", err)
	}
	defer store.Close()

	// Dead letters: always kept in memory for inspection, optionally forwarded.
	recentDeadLetters := queue.NewMemoryDeadLetters(deadLetterCap)
	sinks := queue.MultiSink{recentDeadLetters}
	if cfg.AMQPURL != "" {
		amqpSink, err := queue.DialAMQPDeadLetters(cfg.AMQPURL, cfg.DeadLetterQueue)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		defer amqpSink.Close()
		sinks = append(sinks, amqpSink)
		log.Printf("✅ Dead letters forwarded to RabbitMQ queue %s", cfg.DeadLetterQueue)
	}
	if cfg.PubSubProject != "" {
		psSink, err := queue.NewPubSubDeadLetters(ctx, cfg.PubSubProject, cfg.PubSubDeadLetterTopic)
		if err != nil {
			log.Fatal("Failed to connect to Pub/Sub:", err)
		}
		defer psSink.Close()
		sinks = append(sinks, psSink)
		log.Printf("✅ Dead letters forwarded to Pub/Sub topic %s", cfg.PubSubDeadLetterTopic)
	}

	q := queue.NewInMemoryQueue()
	worker := service.NewWorker(q,
		&service.JobApplier{CustomerRepo: store.Customers, OrderRepo: store.Orders},
		sinks,
		service.WorkerConfig{
			Tick:         cfg.Ingest.Tick,
			BatchSize:    cfg.Ingest.BatchSize,
			JobTimeout:   cfg.Ingest.JobTimeout,
			MaxRetries:   cfg.Ingest.MaxRetries,
			RetryBackoff: cfg.Ingest.RetryBackoff,
		},
	)

	audience := &service.AudienceService{CustomerRepo: store.Customers, Engine: segment.NewEngine()}
	recorder := &service.DeliveryRecorder{OutcomeRepo: store.Outcomes}
	campaignService := &service.CampaignService{
		OutcomeRepo:  store.Outcomes,
		CustomerRepo: store.Customers,
		SegmentRepo:  store.Segments,
		Audience:     audience,
		Recorder:     recorder,
		Sender:       &service.MockSender{SuccessRate: cfg.MockSendSuccessRate},
	}

	router := handler.NewRouter(handler.Controllers{
		Ingest: &controller.IngestController{
			Ingest:      &service.IngestService{Queue: q},
			Worker:      worker,
			DeadLetters: recentDeadLetters,
		},
		Customer: &controller.CustomerController{CustomerRepo: store.Customers, OrderRepo: store.Orders},
		Delivery: &controller.DeliveryController{Recorder: recorder},
		Campaign: &controller.CampaignController{CampaignService: campaignService},
		Segment: &controller.SegmentController{
			SegmentService:  &service.SegmentService{SegmentRepo: store.Segments, Matcher: audience},
			AudienceService: audience,
		},
	}, cfg.CORSAllowedOrigins)

	workerDone := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(workerDone)
	}()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("🚀 Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error:", err)
		}
	}()

	<-ctx.Done()
	log.Println("👋 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("⚠️ HTTP shutdown:", err)
	}

	// Requests have stopped, so the queue can only shrink from here.
	<-workerDone
	worker.Drain(shutdownCtx)
	log.Printf("✅ Shutdown complete: %+v", worker.Stats())
}
