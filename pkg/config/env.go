package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvServiceFeeDefault        = "SERVICE_FEE_DEFAULT"
	EnvRatesLenient             = "RATES_LENIENT"
	EnvPromotionReverseOnCancel = "PROMOTION_REVERSE_ON_CANCEL"
	EnvConflictMaxRetries       = "CONFLICT_MAX_RETRIES"
	EnvConflictRetryBackoff     = "CONFLICT_RETRY_BACKOFF"
	EnvLedgerLockTTL            = "LEDGER_LOCK_TTL"
	EnvPendingBookingTTL        = "PENDING_BOOKING_TTL"
	EnvExpirySweepInterval      = "EXPIRY_SWEEP_INTERVAL"
	EnvReferenceMaxAttempts     = "REFERENCE_MAX_ATTEMPTS"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvBookingEventsTopic = "BOOKING_EVENTS_TOPIC"
)
