package reliability

import (
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/reliability/breaker"
	"github.com/gemscan/gemscan-backend/pkg/reliability/cache"
	"github.com/gemscan/gemscan-backend/pkg/reliability/sla"
)

// Registry owns the per-source monitors, breakers, and caches. Components
// are created once on first use and live for the registry's lifetime;
// re-registration with the same name returns the existing instance untouched.
//
// A Registry is an explicit value, never an ambient global: tests and
// independent applications hold separate instances.
type Registry struct {
	logger logging.Logger
	clock  clock.Clock

	mu       sync.RWMutex
	monitors map[string]*sla.Monitor
	breakers map[string]*breaker.Breaker
	caches   map[string]*cache.Cache
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock injects a clock propagated into every component the registry
// creates, so one mock clock drives a whole test registry.
func WithClock(c clock.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = c
	}
}

func NewRegistry(logger logging.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:   logger,
		clock:    clock.New(),
		monitors: make(map[string]*sla.Monitor),
		breakers: make(map[string]*breaker.Breaker),
		caches:   make(map[string]*cache.Cache),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreateMonitor returns the existing monitor for name or constructs one
// with thresholds. Existence check and construction are atomic.
func (r *Registry) GetOrCreateMonitor(name string, thresholds sla.Thresholds) *sla.Monitor {
	r.mu.RLock()
	m, exists := r.monitors[name]
	r.mu.RUnlock()
	if exists {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock.
	if m, exists = r.monitors[name]; exists {
		return m
	}

	m = sla.NewMonitor(thresholds, sla.WithClock(r.clock))
	r.monitors[name] = m
	r.logger.Infof("Created SLA monitor for source: %s", name)
	return m
}

// GetOrCreateBreaker returns the existing breaker for name or constructs one
// with config.
func (r *Registry) GetOrCreateBreaker(name string, config breaker.Config) *breaker.Breaker {
	r.mu.RLock()
	b, exists := r.breakers[name]
	r.mu.RUnlock()
	if exists {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, exists = r.breakers[name]; exists {
		return b
	}

	b = breaker.New(name, config, breaker.WithClock(r.clock), breaker.WithLogger(r.logger))
	r.breakers[name] = b
	r.logger.Infof("Created circuit breaker for source: %s", name)
	return b
}

// GetOrCreateCache returns the existing cache for name or constructs one
// with policy.
func (r *Registry) GetOrCreateCache(name string, policy cache.Policy) *cache.Cache {
	r.mu.RLock()
	c, exists := r.caches[name]
	r.mu.RUnlock()
	if exists {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, exists = r.caches[name]; exists {
		return c
	}

	c = cache.New(policy, cache.WithClock(r.clock))
	r.caches[name] = c
	r.logger.Infof("Created adaptive cache for source: %s", name)
	return c
}

// Monitors returns a snapshot of the registered monitors. Not for hot paths.
func (r *Registry) Monitors() map[string]*sla.Monitor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*sla.Monitor, len(r.monitors))
	for name, m := range r.monitors {
		out[name] = m
	}
	return out
}

// Breakers returns a snapshot of the registered breakers. Not for hot paths.
func (r *Registry) Breakers() map[string]*breaker.Breaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*breaker.Breaker, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b
	}
	return out
}

// Caches returns a snapshot of the registered caches. Not for hot paths.
func (r *Registry) Caches() map[string]*cache.Cache {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*cache.Cache, len(r.caches))
	for name, c := range r.caches {
		out[name] = c
	}
	return out
}

// Sources returns the union of names known to any of the three registries.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for name := range r.monitors {
		seen[name] = struct{}{}
	}
	for name := range r.breakers {
		seen[name] = struct{}{}
	}
	for name := range r.caches {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}
