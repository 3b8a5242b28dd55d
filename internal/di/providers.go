package di

import (
	"context"
	"fmt"
	"time"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/repository"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/engine"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/handler/api"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/handler/ws"
	internalrepo "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/repository"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/service/providers"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/cache"
	pkgch "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/clickhouse"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/config"
	xhttp "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/http"
	pkgkafka "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/kafka"
	applogger "github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/metrics"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the snapshot cache, memory or Redis per config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "redis" {
		c, err := cache.NewRedisCache(
			cache.WithAddress(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithCredentials(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithPool(cfg.Cache.Redis.PoolSize, 2),
			cache.WithPrefix(cfg.Cache.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideFetcher creates the upstream provider service.
func ProvideFetcher(cfg *config.Config, l *applogger.Logger) repository.FeedFetcher {
	return providers.NewService(providers.Config{
		AlphaVantageKey: cfg.Providers.AlphaVantageKey,
		AlphaVantageURL: cfg.Providers.AlphaVantageURL,
		CoinGeckoURL:    cfg.Providers.CoinGeckoURL,
		QuandlKey:       cfg.Providers.QuandlKey,
		QuandlURL:       cfg.Providers.QuandlURL,
		Timeout:         cfg.Providers.Timeout,
	}, l)
}

// ProvidePublisher creates the Kafka firehose publisher, or nil when
// Kafka is disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.BatchSize, cfg.Kafka.BatchBytes, cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithKeyOrdering(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideHistoryStore creates the ClickHouse history store, or nil when
// ClickHouse is disabled.
func ProvideHistoryStore(cfg *config.Config) (repository.HistoryStore, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewClickHouseHistory(client, "")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideEngine creates the distribution engine with its side sinks.
func ProvideEngine(
	fetcher repository.FeedFetcher,
	c cache.Service,
	l *applogger.Logger,
	m repository.Metrics,
	publisher repository.Publisher,
	history repository.HistoryStore,
) *engine.Engine {
	opts := []engine.Option{}
	if publisher != nil {
		opts = append(opts, engine.WithPublisher(publisher))
	}
	if history != nil {
		opts = append(opts, engine.WithHistoryStore(history))
	}
	return engine.New(fetcher, c, l, m, opts...)
}

// ProvideWSManager creates the WebSocket connection manager.
func ProvideWSManager(cfg *config.Config, eng *engine.Engine, l *applogger.Logger) *ws.Manager {
	return ws.NewManager(eng, l, ws.StreamConfig{
		SendBuffer:     cfg.Stream.SendBuffer,
		PongWait:       cfg.Stream.PongWait,
		WriteWait:      cfg.Stream.WriteWait,
		MaxMessageSize: cfg.Stream.MaxMessageSize,
	})
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(l *applogger.Logger, eng *engine.Engine, wsm *ws.Manager) xhttp.Handler {
	return api.NewHandler(l, eng, wsm)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	eng *engine.Engine,
	handler xhttp.Handler,
	c cache.Service,
	publisher repository.Publisher,
	history repository.HistoryStore,
) *server.App {
	return server.New(cfg, l, eng, handler, c, publisher, history)
}
