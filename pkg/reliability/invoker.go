package reliability

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/reliability/breaker"
	"github.com/gemscan/gemscan-backend/pkg/reliability/cache"
	"github.com/gemscan/gemscan-backend/pkg/reliability/sla"
)

// Operation is any zero-argument callable that returns a value or an error.
// The layer is agnostic to what it does; the caller supplies an operation
// that is already bounded (timeouts are the caller's responsibility).
type Operation func() (any, error)

// SourcePolicy bundles the three per-source configurations.
type SourcePolicy struct {
	SLA     sla.Thresholds
	Breaker breaker.Config
	Cache   cache.Policy
}

func DefaultSourcePolicy() SourcePolicy {
	return SourcePolicy{
		SLA:     sla.DefaultThresholds(),
		Breaker: breaker.DefaultConfig(),
		Cache:   cache.DefaultPolicy(),
	}
}

// Result carries the outcome of a detailed invocation. Stale is true when
// the value was served from the cache's stale window after the operation
// failed; FromCache is true for both fresh hits and stale fallbacks.
type Result struct {
	Value     any
	Stale     bool
	FromCache bool
}

// Invoker composes cache, breaker, and monitor around arbitrary operations,
// per named source. It holds references obtained from the registry, never
// ownership, so every call site sharing a source name observes the same
// accumulated state.
type Invoker struct {
	registry *Registry
	logger   logging.Logger
	clock    clock.Clock
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithInvokerClock injects the clock used to time operations.
func WithInvokerClock(c clock.Clock) InvokerOption {
	return func(inv *Invoker) {
		inv.clock = c
	}
}

func NewInvoker(registry *Registry, logger logging.Logger, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		registry: registry,
		logger:   logger,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Call starts a builder for source with default policies; the With methods
// override them before Do executes the composed invocation.
func (inv *Invoker) Call(source string) *Call {
	return &Call{
		inv:    inv,
		source: source,
		policy: DefaultSourcePolicy(),
	}
}

// Invoke executes op for source under the default source policy.
func (inv *Invoker) Invoke(ctx context.Context, source, cacheKey string, op Operation) (any, error) {
	return inv.Call(source).Do(ctx, cacheKey, op)
}

// InvokeDetailed is Invoke with an explicit stale/cache flag in the result.
func (inv *Invoker) InvokeDetailed(ctx context.Context, source, cacheKey string, op Operation) (Result, error) {
	return inv.Call(source).DoDetailed(ctx, cacheKey, op)
}

// Call is an explicit middleware chain: cache, then breaker, then monitored
// execution, in that fixed order.
type Call struct {
	inv    *Invoker
	source string
	policy SourcePolicy
}

func (c *Call) WithSLA(thresholds sla.Thresholds) *Call {
	c.policy.SLA = thresholds
	return c
}

func (c *Call) WithBreaker(config breaker.Config) *Call {
	c.policy.Breaker = config
	return c
}

func (c *Call) WithCache(policy cache.Policy) *Call {
	c.policy.Cache = policy
	return c
}

func (c *Call) WithPolicy(policy SourcePolicy) *Call {
	c.policy = policy
	return c
}

// Do executes the composed invocation and returns just the value.
func (c *Call) Do(ctx context.Context, cacheKey string, op Operation) (any, error) {
	result, err := c.DoDetailed(ctx, cacheKey, op)
	return result.Value, err
}

// DoDetailed executes the composed invocation:
//
//  1. fresh cache hit returns immediately: a cache hit is not a
//     dependency call, so neither breaker nor monitor see it;
//  2. the breaker gate rejects with CircuitOpenError before the operation
//     is attempted;
//  3. the operation is timed and its outcome recorded into monitor and
//     breaker;
//  4. on failure, a value still inside its stale window is served as a
//     degraded fallback instead of the error.
func (c *Call) DoDetailed(ctx context.Context, cacheKey string, op Operation) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	monitor := c.inv.registry.GetOrCreateMonitor(c.source, c.policy.SLA)
	brk := c.inv.registry.GetOrCreateBreaker(c.source, c.policy.Breaker)
	store := c.inv.registry.GetOrCreateCache(c.source, c.policy.Cache)

	if value, hit, stale := store.Get(cacheKey); hit {
		return Result{Value: value, FromCache: true}, nil
	} else if stale {
		// The entry expired before it was re-requested: this key is more
		// volatile than its TTL assumed, so the refetch's Set shrinks it.
		store.RecordMissPenalty(cacheKey)
	}

	if !brk.Allow() {
		return Result{}, &CircuitOpenError{Source: c.source}
	}

	start := c.inv.clock.Now()
	value, opErr := op()
	latency := c.inv.clock.Now().Sub(start)

	c.record(monitor, brk, opErr == nil, latency)

	if opErr == nil {
		store.Set(cacheKey, value)
		return Result{Value: value}, nil
	}

	if staleValue, _, stale := store.Get(cacheKey); stale {
		c.inv.logger.Warn("Serving stale cached value after operation failure",
			"source", c.source,
			"cache_key", cacheKey,
			"error", opErr,
		)
		return Result{Value: staleValue, Stale: true, FromCache: true}, nil
	}

	return Result{}, opErr
}

// record updates monitor and breaker. Bookkeeping must never panic past the
// component boundary; only the operation's own error may surface.
func (c *Call) record(monitor *sla.Monitor, brk *breaker.Breaker, success bool, latency time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			c.inv.logger.Errorf("Reliability bookkeeping panic for source %s: %v", c.source, r)
		}
	}()

	monitor.Record(success, latency)
	if success {
		brk.OnSuccess()
	} else {
		brk.OnFailure()
	}
}
