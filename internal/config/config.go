package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress          string
	DatabaseURI         string
	AutoMigrate         bool
	JWTSecret           string
	TokenTTL            time.Duration
	AdminToken          string
	TaxRate             decimal.Decimal
	OrderPrefix         string
	OrderNumberAttempts int
	PendingOrderTTL     time.Duration
	ExpiryPollInterval  time.Duration
	ExpiryBatchSize     int
	WorkerPoolSize      int
	ShutdownTimeout     time.Duration
	KafkaBrokers        []string
	KafkaTopic          string
	KafkaWriteTimeout   time.Duration
	OTLPEndpoint        string
	ServiceName         string
	ServiceVersion      string
}

const (
	defaultRunAddress          = ":8080"
	defaultJWTSecret           = "change-me-in-production"
	defaultTokenTTL            = 24 * time.Hour
	defaultTaxRate             = "0.10"
	defaultOrderPrefix         = "ORD-"
	defaultOrderNumberAttempts = 5
	defaultExpiryPollInterval  = time.Minute
	defaultExpiryBatchSize     = 32
	defaultWorkerPoolSize      = 4
	defaultShutdownTimeout     = 10 * time.Second
	defaultKafkaTopic          = "storefront.orders"
	defaultKafkaWriteTimeout   = 2 * time.Second
	defaultServiceName         = "storefront"
	defaultServiceVersion      = "dev"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		AutoMigrate:         getBool(lookup, "AUTO_MIGRATE", true),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:            getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		AdminToken:          getString(lookup, "ADMIN_TOKEN", ""),
		OrderPrefix:         getString(lookup, "ORDER_REFERENCE_PREFIX", defaultOrderPrefix),
		OrderNumberAttempts: getInt(lookup, "ORDER_REFERENCE_ATTEMPTS", defaultOrderNumberAttempts),
		PendingOrderTTL:     getDuration(lookup, "PENDING_ORDER_TTL", 0),
		ExpiryPollInterval:  getDuration(lookup, "EXPIRY_POLL_INTERVAL", defaultExpiryPollInterval),
		ExpiryBatchSize:     getInt(lookup, "EXPIRY_BATCH_SIZE", defaultExpiryBatchSize),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		KafkaTopic:          getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		KafkaWriteTimeout:   getDuration(lookup, "KAFKA_WRITE_TIMEOUT", defaultKafkaWriteTimeout),
		OTLPEndpoint:        getString(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:         getString(lookup, "OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion:      getString(lookup, "SERVICE_VERSION", defaultServiceVersion),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		taxRateStr           = getString(lookup, "TAX_RATE", defaultTaxRate)
		kafkaBrokersStr      = getString(lookup, "KAFKA_BROKERS", "")
		tokenTTLStr          = cfg.TokenTTL.String()
		pendingTTLStr        = cfg.PendingOrderTTL.String()
		expiryIntervalStr    = cfg.ExpiryPollInterval.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
		kafkaWriteTimeoutStr = cfg.KafkaWriteTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.BoolVar(&cfg.AutoMigrate, "auto-migrate", cfg.AutoMigrate, "Apply schema migrations on startup")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "Bearer token for order status management")
	fs.StringVar(&taxRateStr, "tax-rate", taxRateStr, "Tax rate applied to order subtotal")
	fs.StringVar(&cfg.OrderPrefix, "order-prefix", cfg.OrderPrefix, "Prefix of generated order numbers")
	fs.IntVar(&cfg.OrderNumberAttempts, "order-attempts", cfg.OrderNumberAttempts, "Attempts to generate a unique order number")
	fs.StringVar(&pendingTTLStr, "pending-ttl", pendingTTLStr, "Cancel unpaid pending orders older than this (0 disables)")
	fs.StringVar(&expiryIntervalStr, "expiry-interval", expiryIntervalStr, "Interval between pending order expiry polls")
	fs.IntVar(&cfg.ExpiryBatchSize, "expiry-batch", cfg.ExpiryBatchSize, "Maximum orders expired per poll")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent expiry workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&kafkaBrokersStr, "kafka-brokers", kafkaBrokersStr, "Comma separated Kafka brokers for order events")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for order events")
	fs.StringVar(&kafkaWriteTimeoutStr, "kafka-write-timeout", kafkaWriteTimeoutStr, "Maximum time spent publishing one order event")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP gRPC collector endpoint")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TaxRate, err = decimal.NewFromString(taxRateStr); err != nil {
		return nil, fmt.Errorf("invalid tax rate: %w", err)
	}
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("invalid tax rate: %s must be within [0, 1)", cfg.TaxRate)
	}

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.PendingOrderTTL, err = time.ParseDuration(pendingTTLStr); err != nil {
		return nil, fmt.Errorf("invalid pending order ttl: %w", err)
	}

	if cfg.ExpiryPollInterval, err = time.ParseDuration(expiryIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid expiry interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.KafkaWriteTimeout, err = time.ParseDuration(kafkaWriteTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid kafka write timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.KafkaBrokers = splitList(kafkaBrokersStr)

	if cfg.OrderNumberAttempts <= 0 {
		cfg.OrderNumberAttempts = defaultOrderNumberAttempts
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ExpiryBatchSize <= 0 {
		cfg.ExpiryBatchSize = defaultExpiryBatchSize
	}

	if cfg.ExpiryPollInterval <= 0 {
		cfg.ExpiryPollInterval = defaultExpiryPollInterval
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.PendingOrderTTL < 0 {
		cfg.PendingOrderTTL = 0
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.KafkaWriteTimeout <= 0 {
		cfg.KafkaWriteTimeout = defaultKafkaWriteTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
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

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
