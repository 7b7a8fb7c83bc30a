package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Payment provider identifiers accepted by PAYMENT_PROVIDER.
const (
	PaymentProviderStripe = "stripe"
	PaymentProviderLocal  = "local"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress              string
	DatabaseURI             string
	GeneratorAddress        string
	GeneratorTimeout        time.Duration
	PaymentProvider         string
	AllowLocalPayments      bool
	StripeSecretKey         string
	WebhookSecret           string
	PublicBaseURL           string
	WorkerPoolSize          int
	GenerationQueueSize     int
	GenerationSweepInterval time.Duration
	SweepBatchSize          int
	ShutdownTimeout         time.Duration
	RateLimitRPS            float64
	RateLimitBurst          int
	LogLevel                slog.Level
}

const (
	defaultRunAddress              = ":8080"
	defaultGeneratorTimeout        = 60 * time.Second
	defaultPublicBaseURL           = "http://localhost:8080"
	defaultWorkerPoolSize          = 4
	defaultGenerationQueueSize     = 64
	defaultGenerationSweepInterval = 30 * time.Second
	defaultSweepBatchSize          = 32
	defaultShutdownTimeout         = 30 * time.Second
	defaultRateLimitRPS            = 1.0
	defaultRateLimitBurst          = 5
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:              getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:             getString(lookup, "DATABASE_URI", ""),
		GeneratorAddress:        getString(lookup, "GENERATOR_ADDRESS", ""),
		GeneratorTimeout:        getDuration(lookup, "GENERATOR_TIMEOUT", defaultGeneratorTimeout),
		PaymentProvider:         getString(lookup, "PAYMENT_PROVIDER", PaymentProviderStripe),
		AllowLocalPayments:      getBool(lookup, "ALLOW_LOCAL_PAYMENTS", false),
		StripeSecretKey:         getString(lookup, "STRIPE_SECRET_KEY", ""),
		WebhookSecret:           getString(lookup, "WEBHOOK_SECRET", ""),
		PublicBaseURL:           getString(lookup, "PUBLIC_BASE_URL", defaultPublicBaseURL),
		WorkerPoolSize:          getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		GenerationQueueSize:     getInt(lookup, "GENERATION_QUEUE_SIZE", defaultGenerationQueueSize),
		GenerationSweepInterval: getDuration(lookup, "GENERATION_SWEEP_INTERVAL", defaultGenerationSweepInterval),
		SweepBatchSize:          getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
		ShutdownTimeout:         getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		RateLimitRPS:            getFloat(lookup, "RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst:          getInt(lookup, "RATE_LIMIT_BURST", defaultRateLimitBurst),
	}

	fs := flag.NewFlagSet("heartframe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		generatorTimeoutStr = cfg.GeneratorTimeout.String()
		sweepIntervalStr    = cfg.GenerationSweepInterval.String()
		shutdownTimeoutStr  = cfg.ShutdownTimeout.String()
		logLevelStr         = getString(lookup, "LOG_LEVEL", "info")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN or SQLite database path")
	fs.StringVar(&cfg.GeneratorAddress, "g", cfg.GeneratorAddress, "Content generator base URL")
	fs.StringVar(&generatorTimeoutStr, "generator-timeout", generatorTimeoutStr, "Content generator request timeout")
	fs.StringVar(&cfg.PaymentProvider, "payment-provider", cfg.PaymentProvider, "Payment provider (stripe|local)")
	fs.BoolVar(&cfg.AllowLocalPayments, "allow-local-payments", cfg.AllowLocalPayments, "Permit the local development payment provider")
	fs.StringVar(&cfg.PublicBaseURL, "base-url", cfg.PublicBaseURL, "Public base URL used in checkout redirects")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent generation workers")
	fs.IntVar(&cfg.GenerationQueueSize, "queue-size", cfg.GenerationQueueSize, "Capacity of the generation queue")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between stalled generation sweeps")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch", cfg.SweepBatchSize, "Maximum orders per sweep")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.Float64Var(&cfg.RateLimitRPS, "rate-limit", cfg.RateLimitRPS, "Order submissions per second per client")
	fs.IntVar(&cfg.RateLimitBurst, "rate-burst", cfg.RateLimitBurst, "Order submission burst per client")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.GeneratorTimeout, err = time.ParseDuration(generatorTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid generator timeout: %w", err)
	}

	if cfg.GenerationSweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if secretFile, ok := lookup("WEBHOOK_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read webhook secret file: %w", err)
		}
		cfg.WebhookSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.GenerationQueueSize <= 0 {
		cfg.GenerationQueueSize = defaultGenerationQueueSize
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.GeneratorTimeout <= 0 {
		cfg.GeneratorTimeout = defaultGeneratorTimeout
	}

	if cfg.GenerationSweepInterval <= 0 {
		cfg.GenerationSweepInterval = defaultGenerationSweepInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	// zero disables rate limiting
	if cfg.RateLimitRPS < 0 {
		cfg.RateLimitRPS = defaultRateLimitRPS
	}

	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	switch cfg.PaymentProvider {
	case PaymentProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe secret key must be provided")
		}
	case PaymentProviderLocal:
		if !cfg.AllowLocalPayments {
			return nil, fmt.Errorf("local payment provider requires ALLOW_LOCAL_PAYMENTS")
		}
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.PaymentProvider)
	}

	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("webhook secret must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
