package engine

import (
	"strings"
	"sync"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
)

// Registry is the subscription table: two indexes that are mutual
// inverses at all times. All mutations go through a single mutex so
// concurrent subscribe/unsubscribe/disconnect flows are serialized.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[models.FeedKey]map[string]struct{}
	byConn map[string]map[models.FeedKey]struct{}
}

// NewRegistry creates an empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[models.FeedKey]map[string]struct{}),
		byConn: make(map[string]map[models.FeedKey]struct{}),
	}
}

// ValidateKey rejects keys outside the closed asset-class enumeration
// or with an empty symbol.
func ValidateKey(key models.FeedKey) error {
	if !key.Class.Valid() {
		return ErrInvalidKey
	}
	if strings.TrimSpace(key.Symbol) == "" {
		return ErrInvalidKey
	}
	return nil
}

// Subscribe adds the mutual mapping between conn and key. Idempotent:
// re-subscribing is a no-op that still reports success. The returned
// first flag is true when conn is the key's first subscriber, meaning
// the caller must start polling for it.
func (r *Registry) Subscribe(connID string, key models.FeedKey) (first bool, err error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byKey[key]
	if !ok {
		conns = make(map[string]struct{})
		r.byKey[key] = conns
	}
	if _, dup := conns[connID]; dup {
		return false, nil
	}

	first = len(conns) == 0
	conns[connID] = struct{}{}

	keys, ok := r.byConn[connID]
	if !ok {
		keys = make(map[models.FeedKey]struct{})
		r.byConn[connID] = keys
	}
	keys[key] = struct{}{}

	return first, nil
}

// Unsubscribe removes the mutual mapping. Idempotent no-op when not
// subscribed. The returned last flag is true when the key just lost its
// final subscriber, meaning the caller must stop polling for it.
func (r *Registry) Unsubscribe(connID string, key models.FeedKey) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(connID, key)
}

// DropConnection removes every subscription held by conn and forgets
// the connection. It returns the keys that lost their last subscriber.
// Must be called exactly once per connection termination.
func (r *Registry) DropConnection(connID string) (orphaned []models.FeedKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.byConn[connID] {
		if r.removeLocked(connID, key) {
			orphaned = append(orphaned, key)
		}
	}
	delete(r.byConn, connID)
	return orphaned
}

func (r *Registry) removeLocked(connID string, key models.FeedKey) (last bool) {
	conns, ok := r.byKey[key]
	if !ok {
		return false
	}
	if _, sub := conns[connID]; !sub {
		return false
	}

	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byKey, key)
		last = true
	}

	if keys, ok := r.byConn[connID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.byConn, connID)
		}
	}
	return last
}

// Subscribers returns the connections currently interested in key.
// The slice is a copy taken under the read lock; it reflects the
// subscriber set at call time, which is exactly what publish wants.
func (r *Registry) Subscribers(key models.FeedKey) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byKey[key]
	if len(conns) == 0 {
		return nil
	}
	out := make([]string, 0, len(conns))
	for id := range conns {
		out = append(out, id)
	}
	return out
}

// Keys returns the feed keys conn currently holds.
func (r *Registry) Keys(connID string) []models.FeedKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.byConn[connID]
	if len(keys) == 0 {
		return nil
	}
	out := make([]models.FeedKey, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	return out
}

// ActiveKeys returns every key with at least one subscriber.
func (r *Registry) ActiveKeys() []models.FeedKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.FeedKey, 0, len(r.byKey))
	for k := range r.byKey {
		out = append(out, k)
	}
	return out
}

// Counts returns the number of tracked connections and active keys.
func (r *Registry) Counts() (conns, keys int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn), len(r.byKey)
}
