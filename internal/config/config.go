// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port               int      `env:"PORT" envDefault:"4000"`
	DatabaseURL        string   `env:"DATABASE_URL" envDefault:"memory://"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	Ingest IngestConfig

	AMQPURL         string `env:"AMQP_URL"`
	DeadLetterQueue string `env:"DEAD_LETTER_QUEUE" envDefault:"ingestion_dead_letter"`
	// ReplayMaxRetries bounds how often cmd/worker re-applies one dead letter.
	ReplayMaxRetries int `env:"REPLAY_MAX_RETRIES" envDefault:"3"`

	PubSubProject         string `env:"PUBSUB_PROJECT"`
	PubSubDeadLetterTopic string `env:"PUBSUB_DEAD_LETTER_TOPIC"`

	MockSendSuccessRate float64 `env:"MOCK_SEND_SUCCESS_RATE" envDefault:"0.9"`
}

// IngestConfig tunes the ingestion worker.
type IngestConfig struct {
	Tick         time.Duration `env:"INGEST_TICK" envDefault:"1s"`
	BatchSize    int           `env:"INGEST_BATCH_SIZE" envDefault:"100"`
	JobTimeout   time.Duration `env:"INGEST_JOB_TIMEOUT" envDefault:"5s"`
	MaxRetries   int           `env:"INGEST_MAX_RETRIES" envDefault:"0"`
	RetryBackoff time.Duration `env:"INGEST_RETRY_BACKOFF" envDefault:"500ms"`
}

// Load reads .env when present, then parses and validates the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}
	return Parse()
}

// Parse reads the process environment without touching .env.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Ingest.Tick <= 0 {
		return fmt.Errorf("INGEST_TICK must be positive")
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be positive")
	}
	if c.Ingest.JobTimeout <= 0 {
		return fmt.Errorf("INGEST_JOB_TIMEOUT must be positive")
	}
	if c.Ingest.MaxRetries < 0 {
		return fmt.Errorf("INGEST_MAX_RETRIES cannot be negative")
	}
	if c.Ingest.RetryBackoff < 0 {
		return fmt.Errorf("INGEST_RETRY_BACKOFF cannot be negative")
	}
	if c.ReplayMaxRetries < 0 {
		return fmt.Errorf("REPLAY_MAX_RETRIES cannot be negative")
	}
	if c.MockSendSuccessRate < 0 || c.MockSendSuccessRate > 1 {
		return fmt.Errorf("MOCK_SEND_SUCCESS_RATE must be within [0,1], got %v", c.MockSendSuccessRate)
	}
	if (c.PubSubProject == "") != (c.PubSubDeadLetterTopic == "") {
		return fmt.Errorf("PUBSUB_PROJECT and PUBSUB_DEAD_LETTER_TOPIC must be set together")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
