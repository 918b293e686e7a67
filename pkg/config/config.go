package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"resort/pkg/client"
	"resort/pkg/logger"

	"github.com/shopspring/decimal"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	ServiceFeeDefault        decimal.Decimal
	RatesLenient             bool
	PromotionReverseOnCancel bool
	ConflictMaxRetries       int
	ConflictRetryBackoff     time.Duration
	LedgerLockTTL            time.Duration
	PendingBookingTTL        time.Duration
	ExpirySweepInterval      time.Duration
	ReferenceMaxAttempts     int

	KafkaEnabled       bool
	BookingEventsTopic string

	Log    *logger.Logger
	Client *client.Client

	serviceFeeRaw string
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RatesLenient:             getEnvBool(EnvRatesLenient, false),
		PromotionReverseOnCancel: getEnvBool(EnvPromotionReverseOnCancel, false),
		ConflictMaxRetries:       getEnvNum(EnvConflictMaxRetries, DefaultConflictMaxRetries),
		ConflictRetryBackoff:     getEnvDuration(EnvConflictRetryBackoff, DefaultConflictRetryBackoff),
		LedgerLockTTL:            getEnvDuration(EnvLedgerLockTTL, DefaultLedgerLockTTL),
		PendingBookingTTL:        getEnvDuration(EnvPendingBookingTTL, DefaultPendingBookingTTL),
		ExpirySweepInterval:      getEnvDuration(EnvExpirySweepInterval, DefaultExpirySweepInterval),
		ReferenceMaxAttempts:     getEnvNum(EnvReferenceMaxAttempts, DefaultReferenceMaxAttempts),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, false),
		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),

		serviceFeeRaw: getEnvStr(EnvServiceFeeDefault, DefaultServiceFeeDefault),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared Redis client. Without REDIS_ADDR the services
// fall back to in-process idempotency storage.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Warn("REDIS_ADDR not set, idempotency keys are kept in memory")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	fee, err := decimal.NewFromString(cfg.serviceFeeRaw)
	if err != nil || fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(100)) {
		errors = append(errors, fmt.Sprintf("ServiceFeeDefault must be a percentage between 0 and 100, got: %s", cfg.serviceFeeRaw))
	} else {
		cfg.ServiceFeeDefault = fee
	}

	if cfg.ConflictMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("ConflictMaxRetries cannot be negative, got: %d", cfg.ConflictMaxRetries))
	}
	if cfg.ConflictRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("ConflictRetryBackoff cannot be negative, got: %s", cfg.ConflictRetryBackoff))
	}
	if cfg.LedgerLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("LedgerLockTTL must be positive, got: %s", cfg.LedgerLockTTL))
	}
	if cfg.PendingBookingTTL <= 0 {
		errors = append(errors, fmt.Sprintf("PendingBookingTTL must be positive, got: %s", cfg.PendingBookingTTL))
	}
	if cfg.ExpirySweepInterval <= 0 {
		errors = append(errors, fmt.Sprintf("ExpirySweepInterval must be positive, got: %s", cfg.ExpirySweepInterval))
	}
	if cfg.ReferenceMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ReferenceMaxAttempts must be positive, got: %d", cfg.ReferenceMaxAttempts))
	}
	if cfg.KafkaEnabled && cfg.BookingEventsTopic == "" {
		errors = append(errors, "BookingEventsTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"redis_db", cfg.RedisDB,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"service_fee_default", cfg.ServiceFeeDefault.String(),
		"rates_lenient", cfg.RatesLenient,
		"promotion_reverse_on_cancel", cfg.PromotionReverseOnCancel,
		"conflict_max_retries", cfg.ConflictMaxRetries,
		"conflict_retry_backoff", cfg.ConflictRetryBackoff,
		"ledger_lock_ttl", cfg.LedgerLockTTL,
		"pending_booking_ttl", cfg.PendingBookingTTL,
		"expiry_sweep_interval", cfg.ExpirySweepInterval,
		"reference_max_attempts", cfg.ReferenceMaxAttempts,
		"kafka_enabled", cfg.KafkaEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
