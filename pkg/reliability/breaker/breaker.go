package breaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/gemscan/gemscan-backend/pkg/logging"
)

// State represents the circuit breaker state.
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// ErrCircuitOpen is returned when the breaker rejects a call without
// attempting it: either OPEN with the cooldown still running, or HALF_OPEN
// with the single probe slot already taken.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config holds circuit breaker tuning for one dependency.
type Config struct {
	// FailureThreshold is the consecutive-failure count (since the breaker
	// last closed) that trips CLOSED -> OPEN.
	FailureThreshold int
	// Timeout is how long the breaker stays OPEN before a recovery probe
	// is allowed. Evaluated lazily on the next Allow call.
	Timeout time.Duration
	// SuccessThreshold is the number of consecutive successful probes that
	// close a HALF_OPEN breaker.
	SuccessThreshold int
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		SuccessThreshold: 2,
	}
}

func (c Config) Validate() error {
	if c.FailureThreshold <= 0 {
		return errors.New("FailureThreshold must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("Timeout must be positive")
	}
	if c.SuccessThreshold <= 0 {
		return errors.New("SuccessThreshold must be positive")
	}
	return nil
}

// Breaker is a per-dependency finite-state machine that fails fast once the
// dependency is unhealthy and cautiously probes for recovery. It performs no
// retries itself; it only gates whether an attempt is made and remembers the
// outcome.
type Breaker struct {
	name   string
	config Config
	clock  clock.Clock
	logger logging.Logger

	mu                sync.Mutex
	state             State
	failureCount      int
	openedAt          time.Time
	halfOpenSuccesses int
	probeInFlight     bool
}

// Option configures a Breaker.
type Option func(*Breaker)

func WithClock(c clock.Clock) Option {
	return func(b *Breaker) {
		b.clock = c
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(b *Breaker) {
		b.logger = logger
	}
}

func New(name string, config Config, opts ...Option) *Breaker {
	b := &Breaker{
		name:   name,
		config: config,
		clock:  clock.New(),
		logger: logging.NoopLogger{},
		state:  StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the dependency name this breaker guards.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call attempt may proceed. When an OPEN breaker's
// cooldown has elapsed, the calling goroutine transitions the breaker to
// HALF_OPEN and claims the sole probe slot; concurrent callers arriving while
// that probe is outstanding are rejected as if the breaker were still OPEN.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true

	case StateOpen:
		if b.clock.Now().Sub(b.openedAt) < b.config.Timeout {
			return false
		}
		b.transition(StateHalfOpen)
		b.halfOpenSuccesses = 0
		b.probeInFlight = true
		return true

	case StateHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	}

	return false
}

// OnSuccess records a successful call and drives recovery transitions.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount = 0

	case StateHalfOpen:
		b.probeInFlight = false
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.config.SuccessThreshold {
			b.transition(StateClosed)
			b.failureCount = 0
			b.halfOpenSuccesses = 0
		}

	case StateOpen:
		// A success reported while OPEN belongs to a call admitted before
		// the trip; it does not re-close the breaker.
	}
}

// OnFailure records a failed call and drives trip transitions.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.config.FailureThreshold {
			b.trip()
		}

	case StateHalfOpen:
		b.probeInFlight = false
		b.halfOpenSuccesses = 0
		b.trip()

	case StateOpen:
	}
}

// trip moves the breaker to OPEN and stamps the cooldown start.
// Caller must hold b.mu.
func (b *Breaker) trip() {
	b.transition(StateOpen)
	b.openedAt = b.clock.Now()
}

// transition logs and applies a state change. Caller must hold b.mu.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to

	switch to {
	case StateOpen:
		b.logger.Warnf("Circuit breaker [%s] %s -> OPEN, failing fast for %v", b.name, from, b.config.Timeout)
	case StateHalfOpen:
		b.logger.Infof("Circuit breaker [%s] %s -> HALF_OPEN, probing recovery", b.name, from)
	case StateClosed:
		b.logger.Infof("Circuit breaker [%s] %s -> CLOSED", b.name, from)
	}
}

// Counts reports internal counters for observability.
func (b *Breaker) Counts() (failureCount, halfOpenSuccesses int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount, b.halfOpenSuccesses
}

// Execute runs fn through the breaker: rejected immediately with
// ErrCircuitOpen when no attempt is allowed, otherwise the outcome is
// recorded. Composing layers that need to time the call use
// Allow/OnSuccess/OnFailure directly.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	if !b.Allow() {
		return nil, fmt.Errorf("%s: %w", b.name, ErrCircuitOpen)
	}

	result, err := fn()
	if err != nil {
		b.OnFailure()
		return nil, err
	}
	b.OnSuccess()
	return result, nil
}
