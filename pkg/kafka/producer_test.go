package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNewProducerKeyOrdering(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithKeyOrdering(true),
	)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	if _, ok := p.writer.Balancer.(*kafka.Hash); !ok {
		t.Errorf("balancer = %T, want *kafka.Hash", p.writer.Balancer)
	}
}

func TestNewProducerOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithCompression("zstd"),
		WithDelivery(1, 5),
		WithBatching(50, 1<<19, 250*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	w := p.writer
	if w.Compression != kafka.Zstd {
		t.Errorf("compression = %v, want zstd", w.Compression)
	}
	if w.RequiredAcks != kafka.RequiredAcks(1) || w.MaxAttempts != 5 {
		t.Errorf("delivery = %v/%d, want 1/5", w.RequiredAcks, w.MaxAttempts)
	}
	if w.BatchSize != 50 || w.BatchBytes != 1<<19 || w.BatchTimeout != 250*time.Millisecond {
		t.Errorf("batching = %d/%d/%v", w.BatchSize, w.BatchBytes, w.BatchTimeout)
	}
	if _, ok := w.Balancer.(*kafka.LeastBytes); !ok {
		t.Errorf("balancer = %T, want *kafka.LeastBytes", w.Balancer)
	}
}
