package metrics

import "time"

// CollectorOptions configures the metrics collector.
type CollectorOptions struct {
	Namespace            string
	EnableProcessMetrics bool
	UptimeUpdateInterval time.Duration
	RuntimeStatsInterval time.Duration
}

// Option is a functional option for configuring the collector.
type Option func(*CollectorOptions)

func defaultOptions() CollectorOptions {
	return CollectorOptions{
		Namespace:            "gemscan",
		EnableProcessMetrics: true,
		UptimeUpdateInterval: 15 * time.Second,
		RuntimeStatsInterval: 30 * time.Second,
	}
}

// WithNamespace sets a custom namespace.
func WithNamespace(namespace string) Option {
	return func(o *CollectorOptions) {
		o.Namespace = namespace
	}
}

// WithProcessMetrics enables or disables process metrics collection.
func WithProcessMetrics(enable bool) Option {
	return func(o *CollectorOptions) {
		o.EnableProcessMetrics = enable
	}
}

// WithUptimeInterval sets the uptime update interval.
func WithUptimeInterval(interval time.Duration) Option {
	return func(o *CollectorOptions) {
		o.UptimeUpdateInterval = interval
	}
}

// WithRuntimeStatsInterval sets the runtime stats sampling interval.
func WithRuntimeStatsInterval(interval time.Duration) Option {
	return func(o *CollectorOptions) {
		o.RuntimeStatsInterval = interval
	}
}
