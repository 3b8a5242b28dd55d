package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/repository"
	pkgkafka "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/kafka"
)

// KafkaPublisher emits every successful fetch to a Kafka topic, keyed
// by feed so one feed's updates stay in partition order.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a firehose publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

type feedEvent struct {
	AssetClass models.AssetClass `json:"asset_class"`
	Symbol     string            `json:"symbol"`
	Payload    json.RawMessage   `json:"payload"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// PublishUpdate sends one feed update to the configured topic.
func (p *KafkaPublisher) PublishUpdate(ctx context.Context, u models.FeedUpdate) error {
	event, err := json.Marshal(feedEvent{
		AssetClass: u.Key.Class,
		Symbol:     u.Key.Symbol,
		Payload:    u.Payload,
		FetchedAt:  u.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("encode feed event: %w", err)
	}
	return p.producer.Publish(ctx, p.topic, []byte(u.Key.String()), event)
}

// Close flushes and closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
