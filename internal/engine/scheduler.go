package engine

import (
	"context"
	"sync"
	"time"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/repository"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/cache"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// Sink receives every successful fetch result.
type Sink interface {
	Publish(key models.FeedKey, payload []byte, fetchedAt time.Time)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(key models.FeedKey, payload []byte, fetchedAt time.Time)

func (f SinkFunc) Publish(key models.FeedKey, payload []byte, fetchedAt time.Time) {
	f(key, payload, fetchedAt)
}

// pollTask is one live polling goroutine. At most one exists per key;
// gen disambiguates a stopped instance from a later restart of the same
// key, so a stale in-flight fetch can never publish into the stream of
// a newer instance.
type pollTask struct {
	cancel context.CancelFunc
	gen    uint64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval overrides the per-class cadence. Test hook.
func WithInterval(fn func(models.FeedKey) time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.interval = fn }
}

// Scheduler owns one recurring poll task per actively-subscribed feed.
// Start/Stop are idempotent; a task polls immediately on start and then
// on every tick of its class-specific interval.
type Scheduler struct {
	fetcher repository.FeedFetcher
	cache   cache.Service
	sink    Sink
	log     *logger.Logger
	metrics repository.Metrics

	interval func(models.FeedKey) time.Duration

	mu      sync.Mutex
	tasks   map[models.FeedKey]*pollTask
	nextGen uint64
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. The sink is invoked only for
// results whose task is still current at fetch-completion time.
func NewScheduler(fetcher repository.FeedFetcher, c cache.Service, sink Sink, log *logger.Logger, metrics repository.Metrics, opts ...SchedulerOption) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		fetcher:  fetcher,
		cache:    c,
		sink:     sink,
		log:      log,
		metrics:  metrics,
		interval: func(k models.FeedKey) time.Duration { return k.Class.PollInterval() },
		tasks:    make(map[models.FeedKey]*pollTask),
		baseCtx:  ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches a poll task for key. No-op when one is already
// running, which guards the race where two subscribers arrive before
// the first start completes.
func (s *Scheduler) Start(key models.FeedKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.tasks[key]; running {
		return
	}
	if s.baseCtx.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.nextGen++
	task := &pollTask{cancel: cancel, gen: s.nextGen}
	s.tasks[key] = task

	if s.metrics != nil {
		s.metrics.SetActiveFeeds(len(s.tasks))
	}

	s.wg.Add(1)
	go s.run(ctx, key, task.gen)

	s.log.Debug("poll task started",
		logger.String("feed", key.String()),
		logger.Duration("interval", s.interval(key)),
	)
}

// Stop cancels the poll task for key. An in-flight fetch completes but
// its result is discarded. No-op when not running.
func (s *Scheduler) Stop(key models.FeedKey) {
	s.mu.Lock()
	task, running := s.tasks[key]
	if running {
		delete(s.tasks, key)
		if s.metrics != nil {
			s.metrics.SetActiveFeeds(len(s.tasks))
		}
	}
	s.mu.Unlock()

	if running {
		task.cancel()
		s.log.Debug("poll task stopped", logger.String("feed", key.String()))
	}
}

// Running reports whether key currently has a live task.
func (s *Scheduler) Running(key models.FeedKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Active returns the number of live poll tasks.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Shutdown cancels every task and waits for their goroutines to exit.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	s.tasks = make(map[models.FeedKey]*pollTask)
	if s.metrics != nil {
		s.metrics.SetActiveFeeds(0)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the per-key polling loop. The first poll happens immediately
// so a fresh subscriber is not left waiting a full interval.
func (s *Scheduler) run(ctx context.Context, key models.FeedKey, gen uint64) {
	defer s.wg.Done()

	interval := s.interval(key)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.poll(ctx, key, gen, interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx, key, gen, interval)
		}
	}
}

// poll performs one fetch-cache-publish cycle. A failed fetch skips the
// tick: no retry, no backoff, previous snapshot retained.
func (s *Scheduler) poll(ctx context.Context, key models.FeedKey, gen uint64, interval time.Duration) {
	start := time.Now()
	payload, err := s.fetcher.Fetch(ctx, key)
	if s.metrics != nil {
		s.metrics.RecordFetch(key.Class, time.Since(start).Seconds(), err)
	}
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("upstream fetch failed",
				logger.String("feed", key.String()),
				logger.Error(err),
			)
		}
		return
	}

	// A result landing after Stop must not publish: the context check
	// catches cancellation, the generation check catches a restarted
	// task already polling the same key.
	if ctx.Err() != nil || !s.current(key, gen) {
		return
	}

	fetchedAt := time.Now()
	snap := models.FeedSnapshot{
		Class:     key.Class,
		Symbol:    key.Symbol,
		Payload:   payload,
		FetchedAt: fetchedAt,
	}
	if err := s.cache.Set(ctx, key.CacheKey(), snap, 2*interval); err != nil && ctx.Err() == nil {
		s.log.Warn("cache write failed",
			logger.String("feed", key.String()),
			logger.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordError("cache_write")
		}
	}

	s.sink.Publish(key, payload, fetchedAt)
}

func (s *Scheduler) current(key models.FeedKey, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[key]
	return ok && task.gen == gen
}
