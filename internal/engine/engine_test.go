package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/cache"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// chanSubscriber forwards deliveries to a channel.
type chanSubscriber struct {
	id string
	ch chan models.FeedUpdate
}

func newChanSubscriber(id string) *chanSubscriber {
	return &chanSubscriber{id: id, ch: make(chan models.FeedUpdate, 64)}
}

func (s *chanSubscriber) ID() string { return s.id }

func (s *chanSubscriber) Deliver(u models.FeedUpdate) bool {
	select {
	case s.ch <- u:
		return true
	default:
		return false
	}
}

func (s *chanSubscriber) wait(t *testing.T, d time.Duration) models.FeedUpdate {
	t.Helper()
	select {
	case u := <-s.ch:
		return u
	case <-time.After(d):
		t.Fatal("timed out waiting for update")
		return models.FeedUpdate{}
	}
}

func newTestEngine(t *testing.T, f *fakeFetcher, opts ...Option) *Engine {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	opts = append([]Option{WithSchedulerOptions(WithInterval(fastInterval))}, opts...)
	e := New(f, c, logger.Nop(), nil, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		e.Shutdown(ctx)
	})
	return e
}

func TestEngineEndToEnd(t *testing.T) {
	f := newFakeFetcher()
	e := newTestEngine(t, f)

	sub := newChanSubscriber("conn-1")
	if err := e.Attach(sub); err != nil {
		t.Fatalf("attach: %v", err)
	}

	k := key(models.AssetStock, "AAPL")
	if err := e.Subscribe(sub.ID(), k); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	u := sub.wait(t, time.Second)
	if u.Key != k {
		t.Errorf("update key = %v, want %v", u.Key, k)
	}
	if string(u.Payload) != `{"price":100.5}` {
		t.Errorf("update payload = %s", u.Payload)
	}

	st := e.Status()
	if st.Connections != 1 || st.ActiveFeeds != 1 {
		t.Errorf("status = %+v, want 1 conn / 1 feed", st)
	}

	e.Unsubscribe(sub.ID(), k)
	if got := e.Status().ActiveFeeds; got != 0 {
		t.Errorf("active feeds after unsubscribe = %d", got)
	}

	e.Detach(sub.ID())
	if got := e.Status().Connections; got != 0 {
		t.Errorf("connections after detach = %d", got)
	}
}

func TestEngineDedupesPolling(t *testing.T) {
	f := newFakeFetcher()
	e := newTestEngine(t, f)

	k := key(models.AssetCrypto, "BTC")
	a := newChanSubscriber("a")
	b := newChanSubscriber("b")
	for _, sub := range []*chanSubscriber{a, b} {
		if err := e.Attach(sub); err != nil {
			t.Fatalf("attach: %v", err)
		}
		if err := e.Subscribe(sub.ID(), k); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	// Both receive updates from the single shared poll task.
	a.wait(t, time.Second)
	b.wait(t, time.Second)
	if got := e.Status().ActiveFeeds; got != 1 {
		t.Errorf("active feeds = %d, want 1 for two subscribers of one key", got)
	}
}

func TestEngineDetachStopsOrphanedFeeds(t *testing.T) {
	f := newFakeFetcher()
	e := newTestEngine(t, f)

	exclusive := key(models.AssetForex, "EUR/USD")
	shared := key(models.AssetStock, "AAPL")

	a := newChanSubscriber("a")
	b := newChanSubscriber("b")
	e.Attach(a)
	e.Attach(b)
	e.Subscribe("a", exclusive)
	e.Subscribe("a", shared)
	e.Subscribe("b", shared)

	e.Detach("a")

	st := e.Status()
	if st.ActiveFeeds != 1 {
		t.Errorf("active feeds after detach = %d, want 1", st.ActiveFeeds)
	}
	if st.Connections != 1 {
		t.Errorf("connections after detach = %d, want 1", st.Connections)
	}

	// b keeps receiving on the shared key.
	b.wait(t, time.Second)
}

func TestEngineSnapshot(t *testing.T) {
	f := newFakeFetcher()
	e := newTestEngine(t, f)

	k := key(models.AssetETF, "SPY")
	sub := newChanSubscriber("conn-1")
	e.Attach(sub)
	e.Subscribe(sub.ID(), k)
	sub.wait(t, time.Second)

	snap, ok := e.Snapshot(context.Background(), k)
	if !ok {
		t.Fatal("no snapshot after successful poll")
	}
	if snap.Key() != k {
		t.Errorf("snapshot key = %v", snap.Key())
	}

	if _, ok := e.Snapshot(context.Background(), key(models.AssetBond, "NONE")); ok {
		t.Error("snapshot reported for never-polled key")
	}
}

func TestEngineRejectsInvalidKey(t *testing.T) {
	f := newFakeFetcher()
	e := newTestEngine(t, f)

	sub := newChanSubscriber("conn-1")
	e.Attach(sub)

	err := e.Subscribe(sub.ID(), models.FeedKey{Class: "EQUITY", Symbol: "AAPL"})
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("err = %v, want ErrInvalidKey", err)
	}
	if got := e.Status().ActiveFeeds; got != 0 {
		t.Errorf("invalid subscribe started a poll task")
	}
}

func TestEngineClosed(t *testing.T) {
	f := newFakeFetcher()
	e := newTestEngine(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := e.Attach(newChanSubscriber("late")); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("attach after shutdown: err = %v", err)
	}
	if err := e.Subscribe("late", key(models.AssetStock, "AAPL")); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("subscribe after shutdown: err = %v", err)
	}

	// Second shutdown is a no-op.
	if err := e.Shutdown(ctx); err != nil {
		t.Fatalf("repeated shutdown: %v", err)
	}
}

func TestEngineHandoffKeepsPollTask(t *testing.T) {
	f := newFakeFetcher()
	e := newTestEngine(t, f)
	k := key(models.AssetStock, "AAPL")

	// The last subscriber leaving and a new one arriving race: the
	// departer must never cancel the poll task the arriver now owns.
	for i := 0; i < 500; i++ {
		if err := e.Subscribe("conn-a", k); err != nil {
			t.Fatalf("subscribe a: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.Unsubscribe("conn-a", k)
		}()
		go func() {
			defer wg.Done()
			if err := e.Subscribe("conn-b", k); err != nil {
				t.Errorf("subscribe b: %v", err)
			}
		}()
		wg.Wait()

		if len(e.reg.Subscribers(k)) > 0 && !e.sched.Running(k) {
			t.Fatalf("iteration %d: key has subscribers but no poll task", i)
		}

		e.Unsubscribe("conn-b", k)
		if e.sched.Running(k) {
			t.Fatalf("iteration %d: poll task survived last unsubscribe", i)
		}
	}
}

// recordingPublisher captures firehose events.
type recordingPublisher struct {
	ch chan models.FeedUpdate
}

func (p *recordingPublisher) PublishUpdate(_ context.Context, u models.FeedUpdate) error {
	select {
	case p.ch <- u:
	default:
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestEngineSideSink(t *testing.T) {
	f := newFakeFetcher()
	pub := &recordingPublisher{ch: make(chan models.FeedUpdate, 16)}
	e := newTestEngine(t, f, WithPublisher(pub))

	k := key(models.AssetCrypto, "ETH")
	sub := newChanSubscriber("conn-1")
	e.Attach(sub)
	e.Subscribe(sub.ID(), k)

	select {
	case u := <-pub.ch:
		if u.Key != k {
			t.Errorf("firehose key = %v, want %v", u.Key, k)
		}
	case <-time.After(time.Second):
		t.Fatal("firehose never received the update")
	}
}
