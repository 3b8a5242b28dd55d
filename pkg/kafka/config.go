package kafka

import "time"

// ProducerOption configures a Producer.
type ProducerOption func(*producerConfig)

// producerConfig collects writer settings before construction. Defaults
// favor delivery over latency: acks from all replicas, a small retry
// budget, and batches flushed within a second.
type producerConfig struct {
	brokers      []string
	compression  string
	acks         int
	maxAttempts  int
	batchSize    int
	batchBytes   int
	linger       time.Duration
	writeTimeout time.Duration
	readTimeout  time.Duration
	async        bool
	keyOrdering  bool
}

// WithBrokers sets the broker endpoints. Required.
func WithBrokers(brokers []string) ProducerOption {
	return func(c *producerConfig) {
		c.brokers = brokers
	}
}

// WithCompression selects the wire codec: gzip, snappy, lz4 or zstd.
func WithCompression(name string) ProducerOption {
	return func(c *producerConfig) {
		c.compression = name
	}
}

// WithDelivery sets the acknowledgement level (-1 waits for all
// replicas) and the per-message retry budget.
func WithDelivery(acks, maxAttempts int) ProducerOption {
	return func(c *producerConfig) {
		c.acks = acks
		c.maxAttempts = maxAttempts
	}
}

// WithBatching bounds a batch by message count, aggregate bytes, and
// linger time, whichever fills first.
func WithBatching(size, bytes int, linger time.Duration) ProducerOption {
	return func(c *producerConfig) {
		c.batchSize = size
		c.batchBytes = bytes
		c.linger = linger
	}
}

// WithTimeouts sets the writer's write and read deadlines.
func WithTimeouts(write, read time.Duration) ProducerOption {
	return func(c *producerConfig) {
		c.writeTimeout = write
		c.readTimeout = read
	}
}

// WithAsync makes Publish fire-and-forget.
func WithAsync(async bool) ProducerOption {
	return func(c *producerConfig) {
		c.async = async
	}
}

// WithKeyOrdering routes messages with the same key to the same
// partition, so one feed's updates stay in order across the broker.
func WithKeyOrdering(on bool) ProducerOption {
	return func(c *producerConfig) {
		c.keyOrdering = on
	}
}
