// Package engine implements the real-time market-data distribution
// core: a subscription registry, a per-feed polling scheduler, and a
// broadcast router. N connections watching the same feed cost exactly
// one upstream poll per tick.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/repository"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/cache"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// Status is the synchronous health surface for external monitoring.
type Status struct {
	Connections int `json:"connections"`
	ActiveFeeds int `json:"active_feeds"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithSchedulerOptions forwards options to the internal scheduler.
func WithSchedulerOptions(opts ...SchedulerOption) Option {
	return func(e *Engine) { e.schedOpts = opts }
}

// WithPublisher attaches a best-effort downstream firehose.
func WithPublisher(p repository.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithHistoryStore attaches a best-effort history sink.
func WithHistoryStore(h repository.HistoryStore) Option {
	return func(e *Engine) { e.history = h }
}

// Engine is an explicitly owned, constructible distribution engine
// instance: no package-level state, clean construction and shutdown.
type Engine struct {
	reg     *Registry
	router  *Router
	sched   *Scheduler
	cache   cache.Service
	log     *logger.Logger
	metrics repository.Metrics

	publisher repository.Publisher
	history   repository.HistoryStore
	schedOpts []SchedulerOption

	// sideCh decouples kafka/clickhouse emission from the tick loop.
	sideCh chan models.FeedUpdate
	sideWg sync.WaitGroup

	// mu serializes subscription transitions: a key's registry state
	// and its poll task must change together, or a racing
	// unsubscribe/resubscribe pair can strand a subscriber with no
	// running task.
	mu     sync.Mutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a distribution engine.
func New(fetcher repository.FeedFetcher, c cache.Service, log *logger.Logger, metrics repository.Metrics, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cache:   c,
		log:     log,
		metrics: metrics,
		sideCh:  make(chan models.FeedUpdate, 1024),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.reg = NewRegistry()
	e.router = NewRouter(e.reg, log, metrics)
	e.sched = NewScheduler(fetcher, c, SinkFunc(e.emit), log, metrics, e.schedOpts...)

	if e.publisher != nil || e.history != nil {
		e.sideWg.Add(1)
		go e.sideLoop()
	}
	return e
}

// emit is the scheduler's sink: fan out to subscribers, then hand the
// update to the side sinks without blocking the tick loop.
func (e *Engine) emit(key models.FeedKey, payload []byte, fetchedAt time.Time) {
	e.router.Publish(key, payload, fetchedAt)

	if e.publisher == nil && e.history == nil {
		return
	}
	select {
	case e.sideCh <- models.FeedUpdate{Key: key, Payload: payload, Timestamp: fetchedAt}:
	default:
		if e.metrics != nil {
			e.metrics.RecordError("side_sink_overflow")
		}
	}
}

func (e *Engine) sideLoop() {
	defer e.sideWg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case u := <-e.sideCh:
			if e.publisher != nil {
				if err := e.publisher.PublishUpdate(e.ctx, u); err != nil && e.ctx.Err() == nil {
					e.log.Warn("firehose publish failed",
						logger.String("feed", u.Key.String()), logger.Error(err))
				}
			}
			if e.history != nil {
				if err := e.history.Append(e.ctx, u); err != nil && e.ctx.Err() == nil {
					e.log.Warn("history append failed",
						logger.String("feed", u.Key.String()), logger.Error(err))
				}
			}
		}
	}
}

// Attach registers a new connection with the engine.
func (e *Engine) Attach(sub Subscriber) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.mu.Unlock()

	e.router.Attach(sub)
	if e.metrics != nil {
		e.metrics.SetConnections(e.router.Connections())
	}
	e.log.Info("connection attached", logger.String("conn", sub.ID()))
	return nil
}

// Detach performs the full dropConnection cleanup: every subscription
// is removed, polling stops for keys that lost their last subscriber,
// and no subsequent publish can reach the connection. Idempotent at
// this level; the transport guarantees it is invoked exactly once.
func (e *Engine) Detach(connID string) {
	e.router.Detach(connID)

	e.mu.Lock()
	orphaned := e.reg.DropConnection(connID)
	for _, key := range orphaned {
		e.sched.Stop(key)
	}
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.SetConnections(e.router.Connections())
	}
	e.log.Info("connection detached",
		logger.String("conn", connID),
		logger.Int("stopped_feeds", len(orphaned)),
	)
}

// Subscribe declares a connection's interest in a feed and starts
// polling it if this is the first subscriber. Idempotent.
func (e *Engine) Subscribe(connID string, key models.FeedKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}

	first, err := e.reg.Subscribe(connID, key)
	if err != nil {
		return err
	}
	if first {
		e.sched.Start(key)
	}
	return nil
}

// Unsubscribe withdraws interest; polling stops when the key has no
// subscribers left. Idempotent.
func (e *Engine) Unsubscribe(connID string, key models.FeedKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if last := e.reg.Unsubscribe(connID, key); last {
		e.sched.Stop(key)
	}
}

// Snapshot returns the cached FeedSnapshot for key, if a fresh one
// exists. Used to serve late-joining subscribers before the next tick.
func (e *Engine) Snapshot(ctx context.Context, key models.FeedKey) (*models.FeedSnapshot, bool) {
	var snap models.FeedSnapshot
	if err := e.cache.Get(ctx, key.CacheKey(), &snap); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			e.log.Warn("snapshot read failed",
				logger.String("feed", key.String()), logger.Error(err))
		}
		return nil, false
	}
	if len(snap.Payload) == 0 {
		return nil, false
	}
	return &snap, true
}

// Status reports current connection and poll-task counts.
func (e *Engine) Status() Status {
	return Status{
		Connections: e.router.Connections(),
		ActiveFeeds: e.sched.Active(),
	}
}

// Registry exposes the subscription table for transports that need to
// echo back a connection's holdings.
func (e *Engine) Registry() *Registry { return e.reg }

// Shutdown cancels all poll tasks and side sinks, then waits for them.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	err := e.sched.Shutdown(ctx)

	e.cancel()
	done := make(chan struct{})
	go func() {
		e.sideWg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}

	e.log.Info("distribution engine stopped")
	return err
}
