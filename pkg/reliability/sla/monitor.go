package sla

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Status classifies a data source against its thresholds.
type Status string

const (
	StatusHealthy  Status = "HEALTHY"
	StatusDegraded Status = "DEGRADED"
	StatusFailed   Status = "FAILED"
)

// DefaultWindowSize is the number of recent call outcomes kept per source.
const DefaultWindowSize = 100

// CallOutcome is one recorded invocation of a data source.
type CallOutcome struct {
	Timestamp time.Time
	Latency   time.Duration
	Success   bool
}

// Snapshot is a derived, read-only view of a source's recent behavior.
//
// SuccessRate and the percentiles cover the rolling window only; the
// uptime figures are lifetime counters since the monitor was created, so a
// long outage stays visible after the window has churned past it.
type Snapshot struct {
	P50                 time.Duration `json:"p50_latency_ns"`
	P95                 time.Duration `json:"p95_latency_ns"`
	P99                 time.Duration `json:"p99_latency_ns"`
	SuccessRate         float64       `json:"success_rate"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	Status              Status        `json:"status"`
	UptimePercent       float64       `json:"uptime_percent"`
	WindowSize          int           `json:"window_size"`
	TotalCalls          uint64        `json:"total_calls"`
}

// Monitor keeps a fixed-capacity ring buffer of call outcomes for one source
// and classifies the source against its thresholds on demand.
type Monitor struct {
	mu         sync.Mutex
	thresholds Thresholds
	clock      clock.Clock

	window  []CallOutcome // ring buffer, len == capacity once full
	writeAt int
	count   int

	consecutiveFailures int
	totalCalls          uint64
	totalFailures       uint64
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock injects a clock, used by tests to drive time deterministically.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithWindowSize overrides the default ring buffer capacity.
func WithWindowSize(size int) Option {
	return func(m *Monitor) {
		if size > 0 {
			m.window = make([]CallOutcome, size)
		}
	}
}

func NewMonitor(thresholds Thresholds, opts ...Option) *Monitor {
	m := &Monitor{
		thresholds: thresholds,
		clock:      clock.New(),
		window:     make([]CallOutcome, DefaultWindowSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Thresholds returns the immutable thresholds this monitor classifies against.
func (m *Monitor) Thresholds() Thresholds {
	return m.thresholds
}

// Record appends one call outcome, overwriting the oldest entry once the
// window is full. The consecutive-failure counter is independent of the
// window so an outage is detected before the percentiles shift.
func (m *Monitor) Record(success bool, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.window[m.writeAt] = CallOutcome{
		Timestamp: m.clock.Now(),
		Latency:   latency,
		Success:   success,
	}
	m.writeAt = (m.writeAt + 1) % len(m.window)
	if m.count < len(m.window) {
		m.count++
	}

	m.totalCalls++
	if success {
		m.consecutiveFailures = 0
	} else {
		m.consecutiveFailures++
		m.totalFailures++
	}
}

// Snapshot computes the current health view. It never mutates monitor state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		ConsecutiveFailures: m.consecutiveFailures,
		WindowSize:          m.count,
		TotalCalls:          m.totalCalls,
		SuccessRate:         1.0,
		UptimePercent:       100.0,
	}
	if m.totalCalls > 0 {
		snap.UptimePercent = 100.0 * float64(m.totalCalls-m.totalFailures) / float64(m.totalCalls)
	}

	if m.count > 0 {
		latencies := make([]time.Duration, 0, m.count)
		successes := 0
		for i := 0; i < m.count; i++ {
			outcome := m.window[i]
			latencies = append(latencies, outcome.Latency)
			if outcome.Success {
				successes++
			}
		}
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

		snap.P50 = quantile(latencies, 0.50)
		snap.P95 = quantile(latencies, 0.95)
		snap.P99 = quantile(latencies, 0.99)
		snap.SuccessRate = float64(successes) / float64(m.count)
	}

	snap.Status = m.classify(snap)
	return snap
}

func (m *Monitor) classify(snap Snapshot) Status {
	if m.consecutiveFailures >= m.thresholds.MaxConsecutiveFailures {
		return StatusFailed
	}
	if m.count == 0 {
		return StatusHealthy
	}
	if snap.P95 > m.thresholds.MaxP95Latency ||
		snap.P99 > m.thresholds.MaxP99Latency ||
		snap.SuccessRate < m.thresholds.MinSuccessRate {
		return StatusDegraded
	}
	return StatusHealthy
}

// quantile computes a linear-interpolation quantile over sorted values.
func quantile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := q * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	frac := rank - float64(lower)
	return sorted[lower] + time.Duration(frac*float64(sorted[upper]-sorted[lower]))
}
