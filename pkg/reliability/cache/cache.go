package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type entry struct {
	key            string
	value          any
	createdAt      time.Time
	lastAccessedAt time.Time
	accessCount    uint64
	currentTTL     time.Duration
}

// Cache is a TTL-bounded key/value store with pluggable eviction, adaptive
// TTL, and a stale-value window for graceful degradation. All values are
// held in memory; persistence and cross-process sharing are out of scope.
type Cache struct {
	mu      sync.Mutex
	policy  Policy
	clock   clock.Clock
	entries map[string]*entry

	// nextTTL holds per-key TTLs shrunk by RecordMissPenalty, consumed by
	// the key's next Set.
	nextTTL map[string]time.Duration

	hits   uint64
	misses uint64
}

// Option configures a Cache.
type Option func(*Cache)

func WithClock(c clock.Clock) Option {
	return func(cache *Cache) {
		cache.clock = c
	}
}

func New(policy Policy, opts ...Option) *Cache {
	c := &Cache{
		policy:  policy,
		clock:   clock.New(),
		entries: make(map[string]*entry),
		nextTTL: make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the policy the cache was created with.
func (c *Cache) Policy() Policy {
	return c.policy
}

// Get looks up key. On a fresh hit the entry's TTL grows (capped at MaxTTL)
// and (value, true, false) is returned. An expired entry still inside its
// stale window returns (value, false, true) so the caller can serve it as a
// degraded fallback. Anything else is (nil, false, false).
func (c *Cache) Get(key string) (value any, hit bool, stale bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false, false
	}

	now := c.clock.Now()
	age := now.Sub(e.createdAt)

	if age <= e.currentTTL {
		e.lastAccessedAt = now
		e.accessCount++
		e.currentTTL = c.clampTTL(time.Duration(float64(e.currentTTL) * c.policy.GrowthFactor))
		c.hits++
		return e.value, true, false
	}

	c.misses++
	staleDeadline := time.Duration(float64(e.currentTTL) * c.policy.StaleMultiplier)
	if age <= staleDeadline {
		return e.value, false, true
	}

	// Beyond the stale window the value is unusable; drop it.
	delete(c.entries, key)
	return nil, false, false
}

// Set stores value under key with the policy's initial TTL, or the shrunken
// TTL left behind by RecordMissPenalty.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ttl, ok := c.nextTTL[key]
	if ok {
		delete(c.nextTTL, key)
	} else {
		ttl = c.policy.InitialTTL
	}
	c.set(key, value, ttl)
}

// SetWithTTL stores value under key with an explicit TTL, clamped to the
// policy bounds.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, ttl)
}

// set inserts or replaces an entry, evicting first if the store would grow
// past MaxSize. Caller must hold c.mu.
func (c *Cache) set(key string, value any, ttl time.Duration) {
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.policy.MaxSize {
		c.evict()
	}

	now := c.clock.Now()
	c.entries[key] = &entry{
		key:            key,
		value:          value,
		createdAt:      now,
		lastAccessedAt: now,
		currentTTL:     c.clampTTL(ttl),
	}
}

// RecordMissPenalty shrinks the TTL the key's next Set will use, bounded at
// MinTTL. Volatile keys that keep missing converge to the floor.
func (c *Cache) RecordMissPenalty(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	base, ok := c.nextTTL[key]
	if !ok {
		if e, exists := c.entries[key]; exists {
			base = e.currentTTL
		} else {
			base = c.policy.InitialTTL
		}
	}
	c.nextTTL[key] = c.clampTTL(time.Duration(float64(base) * c.policy.ShrinkFactor))
}

// Warm bulk-loads entries before first traffic. Eviction pressure applies
// exactly as for Set.
func (c *Cache) Warm(entries map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range entries {
		c.set(key, value, c.policy.InitialTTL)
	}
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.nextTTL, key)
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports the entry count and lifetime hit rate.
func (c *Cache) Stats() (size int, hitRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size = len(c.entries)
	total := c.hits + c.misses
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return size, hitRate
}

func (c *Cache) clampTTL(ttl time.Duration) time.Duration {
	if ttl < c.policy.MinTTL {
		return c.policy.MinTTL
	}
	if ttl > c.policy.MaxTTL {
		return c.policy.MaxTTL
	}
	return ttl
}

// evict removes EvictionFraction of capacity (at least one entry) ranked by
// the configured strategy. Caller must hold c.mu.
func (c *Cache) evict() {
	count := int(float64(c.policy.MaxSize) * c.policy.EvictionFraction)
	if count < 1 {
		count = 1
	}
	if count > len(c.entries) {
		count = len(c.entries)
	}

	candidates := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		candidates = append(candidates, e)
	}

	now := c.clock.Now()
	less := c.evictionOrder(now)
	sort.Slice(candidates, func(i, j int) bool { return less(candidates[i], candidates[j]) })

	for _, victim := range candidates[:count] {
		delete(c.entries, victim.key)
	}
}

// evictionOrder returns a comparison placing the best eviction victims first.
func (c *Cache) evictionOrder(now time.Time) func(a, b *entry) bool {
	switch c.policy.Strategy {
	case StrategyTTL:
		return func(a, b *entry) bool {
			return a.createdAt.Add(a.currentTTL).Before(b.createdAt.Add(b.currentTTL))
		}
	case StrategyLRU:
		return func(a, b *entry) bool {
			return a.lastAccessedAt.Before(b.lastAccessedAt)
		}
	case StrategyLFU:
		return func(a, b *entry) bool {
			if a.accessCount != b.accessCount {
				return a.accessCount < b.accessCount
			}
			return a.createdAt.Before(b.createdAt)
		}
	default: // StrategyAdaptive
		return func(a, b *entry) bool {
			return adaptiveScore(a, now) < adaptiveScore(b, now)
		}
	}
}

// adaptiveScore blends frequency and recency: more-accessed and younger
// entries score higher and survive longer. Age is floored at one second so
// a brand-new untouched entry does not become unevictable.
func adaptiveScore(e *entry, now time.Time) float64 {
	age := now.Sub(e.createdAt).Seconds()
	if age < 1.0 {
		age = 1.0
	}
	return float64(e.accessCount) / age
}
