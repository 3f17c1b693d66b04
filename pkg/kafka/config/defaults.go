package kafka_config

import "time"

const (
	DefaultKafkaBrokers = ""
	DefaultKafkaTopic   = "campsite.events"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all
	DefaultProducerCompression  = "snappy"
)
