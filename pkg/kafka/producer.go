// Package kafka wraps the segmentio writer behind a small producer the
// firehose publisher can use without knowing broker details.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes pre-encoded messages to Kafka.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a producer from options. Brokers are the only
// required setting.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &producerConfig{
		compression:  "gzip",
		acks:         -1,
		maxAttempts:  3,
		batchSize:    100,
		batchBytes:   1 << 20,
		linger:       time.Second,
		writeTimeout: 10 * time.Second,
		readTimeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	balancer := kafka.Balancer(&kafka.LeastBytes{})
	if cfg.keyOrdering {
		balancer = &kafka.Hash{}
	}

	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.brokers...),
		Balancer:     balancer,
		RequiredAcks: kafka.RequiredAcks(cfg.acks),
		Compression:  compressionCodec(cfg.compression),
		MaxAttempts:  cfg.maxAttempts,
		BatchSize:    cfg.batchSize,
		BatchBytes:   int64(cfg.batchBytes),
		BatchTimeout: cfg.linger,
		WriteTimeout: cfg.writeTimeout,
		ReadTimeout:  cfg.readTimeout,
		Async:        cfg.async,
	}}, nil
}

// Publish writes one message to topic. The value must already be
// encoded; the producer does no serialization of its own.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

// Close flushes buffered batches and closes the writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}
