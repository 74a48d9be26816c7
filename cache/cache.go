// Package cache is a keyed TTL cache over Redis used by the portal's read
// routes to avoid hammering upstream services. It is never the source of
// truth: every operation degrades to a miss or a no-op when Redis is not
// configured or unreachable, so callers always keep a live fetch path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Namespace is one cache area with its fixed TTL. TTLs are per namespace,
// not per call.
type Namespace struct {
	Name string
	TTL  time.Duration
}

var (
	// Directory caches the full staffing-service directory snapshot.
	Directory = Namespace{Name: "directory", TTL: 7 * 24 * time.Hour}
	// Profile caches one team member profile per email.
	Profile = Namespace{Name: "profile", TTL: time.Hour}
	// ExchangeRates caches the global exchange-rate snapshot.
	ExchangeRates = Namespace{Name: "exchange_rates", TTL: 24 * time.Hour}
	// Holidays caches one holiday calendar per country code.
	Holidays = Namespace{Name: "holidays", TTL: 7 * 24 * time.Hour}
)

// staleRetention is how long an entry stays physically readable past its
// logical TTL, so consumers can fall back to it when a refresh fails.
const staleRetention = 30 * 24 * time.Hour

// entry is the stored envelope. Expiry is tracked inside the value rather
// than with the Redis key TTL, so an expired entry is still reachable as a
// stale fallback until retention runs out.
type entry struct {
	Value     json.RawMessage `json:"value"`
	StoredAt  time.Time       `json:"storedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Store wraps a Redis client. A nil client is valid and turns every read
// into a miss and every write into a no-op.
type Store struct {
	client *redis.Client
}

// NewStore creates a cache store. client may be nil.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func cacheKey(ns Namespace, key string) string {
	if key == "" {
		return fmt.Sprintf("cache:%s", ns.Name)
	}
	return fmt.Sprintf("cache:%s:%s", ns.Name, key)
}

// Get returns the cached value for the namespace and optional key, or a
// miss. Infrastructure trouble is logged and reported as a miss, never as
// an error.
func (s *Store) Get(ctx context.Context, ns Namespace, key string) (json.RawMessage, bool) {
	e, ok := s.load(ctx, ns, key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.ExpiresAt) {
		return nil, false
	}
	return e.Value, true
}

// GetStale returns the cached value even when its TTL has passed. Used as
// the fallback when a live refresh fails.
func (s *Store) GetStale(ctx context.Context, ns Namespace, key string) (json.RawMessage, bool) {
	e, ok := s.load(ctx, ns, key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (s *Store) load(ctx context.Context, ns Namespace, key string) (*entry, bool) {
	if s.client == nil {
		return nil, false
	}
	raw, err := s.client.Get(ctx, cacheKey(ns, key)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s failed: %v", cacheKey(ns, key), err)
		}
		return nil, false
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		log.Printf("cache: corrupt entry at %s: %v", cacheKey(ns, key), err)
		return nil, false
	}
	return &e, true
}

// Set stores value under the namespace's TTL, replacing any existing entry
// wholesale. Failures are logged and swallowed; callers must not depend on
// the write landing.
func (s *Store) Set(ctx context.Context, ns Namespace, key string, value interface{}) {
	if s.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal for %s failed: %v", cacheKey(ns, key), err)
		return
	}
	now := time.Now()
	e := entry{Value: raw, StoredAt: now, ExpiresAt: now.Add(ns.TTL)}
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("cache: marshal envelope for %s failed: %v", cacheKey(ns, key), err)
		return
	}
	if err := s.client.Set(ctx, cacheKey(ns, key), payload, ns.TTL+staleRetention).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", cacheKey(ns, key), err)
	}
}

// Delete evicts one entry. Only the administrative cleanup uses this;
// normal read paths let entries age out.
func (s *Store) Delete(ctx context.Context, ns Namespace, key string) {
	if s.client == nil {
		return
	}
	if err := s.client.Del(ctx, cacheKey(ns, key)).Err(); err != nil {
		log.Printf("cache: delete %s failed: %v", cacheKey(ns, key), err)
	}
}

// CleanupExpired removes every entry in the namespace whose logical TTL has
// passed and returns how many were evicted. With Redis absent it is a
// logged no-op.
func (s *Store) CleanupExpired(ctx context.Context, ns Namespace) int {
	if s.client == nil {
		log.Printf("cache: cleanup skipped, redis not configured")
		return 0
	}
	pattern := fmt.Sprintf("cache:%s*", ns.Name)
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		log.Printf("cache: cleanup keys %s failed: %v", pattern, err)
		return 0
	}

	evicted := 0
	now := time.Now()
	for _, key := range keys {
		raw, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			// Corrupt entries go too.
			s.client.Del(ctx, key)
			evicted++
			continue
		}
		if now.After(e.ExpiresAt) {
			s.client.Del(ctx, key)
			evicted++
		}
	}
	return evicted
}
