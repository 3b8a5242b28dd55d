package engine

import (
	"sync"
	"time"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/repository"
	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/pkg/logger"
)

// Subscriber is a connection's delivery endpoint. Deliver must never
// block; it reports false when the update was dropped for backpressure.
type Subscriber interface {
	ID() string
	Deliver(u models.FeedUpdate) bool
}

// Router fans one feed update out to every connection subscribed to the
// key at publish time. Each enqueue is independent and best-effort: one
// slow consumer never delays delivery to the others, and never blocks
// the scheduler's tick loop.
type Router struct {
	reg     *Registry
	log     *logger.Logger
	metrics repository.Metrics

	mu    sync.RWMutex
	conns map[string]Subscriber
}

// NewRouter creates a router over the given registry.
func NewRouter(reg *Registry, log *logger.Logger, metrics repository.Metrics) *Router {
	return &Router{
		reg:     reg,
		log:     log,
		metrics: metrics,
		conns:   make(map[string]Subscriber),
	}
}

// Attach registers a connection's delivery endpoint.
func (r *Router) Attach(sub Subscriber) {
	r.mu.Lock()
	r.conns[sub.ID()] = sub
	r.mu.Unlock()
}

// Detach removes a connection's delivery endpoint. Publishes racing a
// detach resolve the handle before sending, so nothing reaches a
// connection after Detach returns and the handle is gone.
func (r *Router) Detach(connID string) {
	r.mu.Lock()
	delete(r.conns, connID)
	r.mu.Unlock()
}

// Connections returns the number of attached connections.
func (r *Router) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Publish delivers an update to the key's current subscriber set.
// Fire-and-forget: a full outbound buffer drops the oldest undelivered
// update for that connection in favor of the newest.
func (r *Router) Publish(key models.FeedKey, payload []byte, fetchedAt time.Time) {
	ids := r.reg.Subscribers(key)
	if len(ids) == 0 {
		return
	}

	u := models.FeedUpdate{Key: key, Payload: payload, Timestamp: fetchedAt}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range ids {
		sub, ok := r.conns[id]
		if !ok {
			continue
		}
		if !sub.Deliver(u) {
			if r.metrics != nil {
				r.metrics.RecordDroppedUpdate(id)
			}
			r.log.Debug("update dropped for slow consumer",
				logger.String("conn", id),
				logger.String("feed", key.String()),
			)
		}
	}

	if r.metrics != nil {
		r.metrics.RecordPublish(key.Class, len(ids))
	}
}
