package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gemscan/gemscan-backend/pkg/reliability"
	"github.com/gemscan/gemscan-backend/pkg/reliability/breaker"
)

// SourceMetrics exposes per-source reliability gauges, labeled by source name.
type SourceMetrics struct {
	P95LatencySeconds   *prometheus.GaugeVec
	P99LatencySeconds   *prometheus.GaugeVec
	SuccessRate         *prometheus.GaugeVec
	ConsecutiveFailures *prometheus.GaugeVec
	UptimePercent       *prometheus.GaugeVec
	BreakerState        *prometheus.GaugeVec
	CacheSize           *prometheus.GaugeVec
	CacheHitRate        *prometheus.GaugeVec
}

// NewSourceMetrics creates per-source reliability gauges and registers them
func NewSourceMetrics(namespace string, registry *prometheus.Registry) *SourceMetrics {
	newGaugeVec := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      name,
			Help:      help,
		}, []string{"source"})
	}

	sm := &SourceMetrics{
		P95LatencySeconds:   newGaugeVec("p95_latency_seconds", "95th percentile call latency over the rolling window"),
		P99LatencySeconds:   newGaugeVec("p99_latency_seconds", "99th percentile call latency over the rolling window"),
		SuccessRate:         newGaugeVec("success_rate", "Fraction of successful calls over the rolling window"),
		ConsecutiveFailures: newGaugeVec("consecutive_failures", "Current run of consecutive failed calls"),
		UptimePercent:       newGaugeVec("uptime_percent", "Lifetime percentage of successful calls"),
		BreakerState:        newGaugeVec("breaker_state", "Circuit breaker state (0=closed, 1=open, 2=half-open)"),
		CacheSize:           newGaugeVec("cache_size", "Number of entries in the source cache"),
		CacheHitRate:        newGaugeVec("cache_hit_rate", "Lifetime cache hit rate"),
	}

	registry.MustRegister(
		sm.P95LatencySeconds,
		sm.P99LatencySeconds,
		sm.SuccessRate,
		sm.ConsecutiveFailures,
		sm.UptimePercent,
		sm.BreakerState,
		sm.CacheSize,
		sm.CacheHitRate,
	)

	return sm
}

// Update publishes a health snapshot to the gauges
func (sm *SourceMetrics) Update(snapshot map[string]reliability.SourceHealth) {
	for source, health := range snapshot {
		labels := prometheus.Labels{"source": source}

		sm.P95LatencySeconds.With(labels).Set(health.SLA.P95.Seconds())
		sm.P99LatencySeconds.With(labels).Set(health.SLA.P99.Seconds())
		sm.SuccessRate.With(labels).Set(health.SLA.SuccessRate)
		sm.ConsecutiveFailures.With(labels).Set(float64(health.SLA.ConsecutiveFailures))
		sm.UptimePercent.With(labels).Set(health.SLA.UptimePercent)
		sm.BreakerState.With(labels).Set(breakerStateValue(health.BreakerState))
		sm.CacheSize.With(labels).Set(float64(health.Cache.Size))
		sm.CacheHitRate.With(labels).Set(health.Cache.HitRate)
	}
}

func breakerStateValue(state breaker.State) float64 {
	switch state {
	case breaker.StateOpen:
		return 1
	case breaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
