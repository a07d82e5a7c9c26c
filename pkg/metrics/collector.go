package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the Prometheus registry for one service and, when enabled,
// samples process metrics in the background until Stop.
type Collector struct {
	serviceName string
	registry    *prometheus.Registry
	process     *ProcessMetrics
	handler     http.Handler
	options     CollectorOptions

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewCollector(serviceName string, opts ...Option) *Collector {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	registry := prometheus.NewRegistry()

	c := &Collector{
		serviceName: serviceName,
		registry:    registry,
		options:     options,
		stopCh:      make(chan struct{}),
	}
	if options.EnableProcessMetrics {
		c.process = newProcessMetrics(options.Namespace, serviceName, registry)
	}
	c.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})

	return c
}

// Start launches the background sampling loop. A no-op when process metrics
// are disabled.
func (c *Collector) Start() {
	if c.process == nil {
		return
	}
	c.wg.Add(1)
	go c.collectLoop()
}

func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return c.handler
}

// Registry exposes the underlying registry so callers can attach their own
// metric families, such as the per-source reliability gauges.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Process() *ProcessMetrics {
	return c.process
}

// collectLoop drives uptime and runtime sampling on their own intervals.
// A non-positive interval leaves that channel nil, which never fires.
func (c *Collector) collectLoop() {
	defer c.wg.Done()

	var uptimeC, statsC <-chan time.Time
	if c.options.UptimeUpdateInterval > 0 {
		ticker := time.NewTicker(c.options.UptimeUpdateInterval)
		defer ticker.Stop()
		uptimeC = ticker.C
	}
	if c.options.RuntimeStatsInterval > 0 {
		ticker := time.NewTicker(c.options.RuntimeStatsInterval)
		defer ticker.Stop()
		statsC = ticker.C
	}

	for {
		select {
		case <-uptimeC:
			c.process.UpdateUptime()
		case <-statsC:
			c.process.UpdateRuntimeStats()
		case <-c.stopCh:
			return
		}
	}
}
