package repository

import (
	"context"
	"fmt"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/repository"
	pkgch "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/clickhouse"
)

// ClickHouseHistory appends feed updates to a ClickHouse table for
// later replay and analysis. It implements repository.HistoryStore.
type ClickHouseHistory struct {
	client *pkgch.Client
	table  string
}

// NewClickHouseHistory creates a ClickHouse-backed history store.
func NewClickHouseHistory(client *pkgch.Client, table string) repository.HistoryStore {
	if table == "" {
		table = "md_updates"
	}
	return &ClickHouseHistory{client: client, table: table}
}

// Init ensures the history table exists. Idempotent.
func (h *ClickHouseHistory) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts DateTime64(3),
		asset_class LowCardinality(String),
		symbol String,
		payload String
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ts)
	ORDER BY (asset_class, symbol, ts)
	TTL toDateTime(ts) + INTERVAL 90 DAY`, h.table)
	return h.client.InitSchema(ctx, []string{stmt})
}

// Append stores one feed update.
func (h *ClickHouseHistory) Append(ctx context.Context, u models.FeedUpdate) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, asset_class, symbol, payload) VALUES (?, ?, ?, ?)", h.table)
	_, err := h.client.DB().ExecContext(ctx, q,
		u.Timestamp,
		string(u.Key.Class),
		u.Key.Symbol,
		string(u.Payload),
	)
	return err
}

// Health pings the underlying connection pool.
func (h *ClickHouseHistory) Health(ctx context.Context) error {
	return h.client.Health(ctx)
}

// Close closes the connection pool.
func (h *ClickHouseHistory) Close() error {
	return h.client.Close()
}
