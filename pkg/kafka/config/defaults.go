package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// A lost lifecycle event skews the live accrual, so writes wait for
	// every in-sync replica.
	DefaultProducerMaxAttempts  = 5
	DefaultProducerBatchTimeout = 5 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	// A fresh accrual group reads the topic from the start.
	DefaultReportsGroupID            = "reports-commission-accrual"
	DefaultConsumerStartOffset       = -2
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 1 << 20
	DefaultConsumerMaxWait           = 250 * time.Millisecond
	DefaultConsumerCommitInterval    = time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 30 * time.Second
	DefaultConsumerMaxRetries        = 3

	DefaultDLQSuffix = ".dlq"

	DefaultEnableMiddleware = true
)
