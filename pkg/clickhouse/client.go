// Package clickhouse provides a database/sql client for the history
// store, with DSN assembly and idempotent schema setup.
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
)

// Client owns a ClickHouse connection pool.
type Client struct {
	db *sql.DB
}

// NewClient opens a pool and verifies connectivity with a ping.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		port:        9000,
		maxOpen:     10,
		maxIdle:     5,
		dialTimeout: 5 * time.Second,
		readTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.host == "" {
		return nil, fmt.Errorf("host is required")
	}

	db, err := sql.Open("clickhouse", dsn(*cfg))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(cfg.maxOpen)
	db.SetMaxIdleConns(cfg.maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	return &Client{db: db}, nil
}

// DB exposes the underlying pool for query execution.
func (c *Client) DB() *sql.DB { return c.db }

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the pool.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// InitSchema executes DDL statements in order. Statements are expected
// to be IF NOT EXISTS so repeated startup is safe.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func dsn(cfg clientConfig) string {
	u := url.URL{
		Scheme: "clickhouse",
		User:   url.UserPassword(cfg.user, cfg.password),
		Host:   fmt.Sprintf("%s:%d", cfg.host, cfg.port),
		Path:   "/" + cfg.database,
	}
	if cfg.useHTTP {
		u.Scheme = "clickhouse+http"
	}

	q := url.Values{}
	if cfg.dialTimeout > 0 {
		q.Set("dial_timeout", cfg.dialTimeout.String())
	}
	if cfg.readTimeout > 0 {
		q.Set("read_timeout", cfg.readTimeout.String())
	}
	if cfg.maxExecTime > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(cfg.maxExecTime.Seconds())))
	}
	if cfg.asyncInsert {
		q.Set("async_insert", "1")
		if cfg.waitForAsync {
			q.Set("wait_for_async_insert", "1")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
