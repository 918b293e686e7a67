package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "resort"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = ""
	DefaultRedisDB   = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultServiceFeeDefault    = "12"
	DefaultConflictMaxRetries   = 3
	DefaultConflictRetryBackoff = 50 * time.Millisecond
	DefaultLedgerLockTTL        = 30 * time.Second
	DefaultPendingBookingTTL    = 24 * time.Hour
	DefaultExpirySweepInterval  = 10 * time.Minute
	DefaultReferenceMaxAttempts = 5

	DefaultBookingEventsTopic = "booking-events"
)
