package repository

import (
	"context"
	"encoding/json"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
)

// FeedFetcher retrieves a fresh snapshot for a feed from its upstream
// provider. Implementations map provider-specific failures (including
// rate limits) to *models-level UpstreamError values so the scheduler
// treats every upstream problem the same way: skip the tick.
type FeedFetcher interface {
	Fetch(ctx context.Context, key models.FeedKey) (json.RawMessage, error)
}

// Publisher emits successful fetches to a downstream firehose.
// Best-effort: errors are logged by the caller and never interrupt the
// distribution path.
type Publisher interface {
	PublishUpdate(ctx context.Context, u models.FeedUpdate) error
	Close() error
}

// HistoryStore appends successful fetches to durable history storage.
type HistoryStore interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, u models.FeedUpdate) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational counters for the distribution engine.
type Metrics interface {
	SetConnections(n int)
	SetActiveFeeds(n int)
	RecordFetch(class models.AssetClass, seconds float64, err error)
	RecordPublish(class models.AssetClass, subscribers int)
	RecordDroppedUpdate(connID string)
	RecordError(kind string)
}
