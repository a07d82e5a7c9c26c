package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
)

// ProcessMetrics tracks the process itself: uptime, heap pressure, scheduler
// load, and host CPU. Reliability gauges for the upstream sources live in
// SourceMetrics; nothing here is per-source.
type ProcessMetrics struct {
	startedAt time.Time

	Uptime         prometheus.Gauge
	HeapAllocBytes prometheus.Gauge
	Goroutines     prometheus.Gauge
	GCPauseSeconds prometheus.Gauge
	CPUPercent     prometheus.Gauge
}

func newProcessMetrics(namespace, subsystem string, registry *prometheus.Registry) *ProcessMetrics {
	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(g)
		return g
	}

	return &ProcessMetrics{
		startedAt:      time.Now(),
		Uptime:         gauge("uptime_seconds", "Seconds since the process started"),
		HeapAllocBytes: gauge("heap_alloc_bytes", "Bytes of allocated heap objects"),
		Goroutines:     gauge("goroutines", "Number of live goroutines"),
		GCPauseSeconds: gauge("gc_pause_seconds_total", "Cumulative GC stop-the-world pause in seconds"),
		CPUPercent:     gauge("cpu_percent", "Host CPU utilization percentage"),
	}
}

func (pm *ProcessMetrics) UpdateUptime() {
	pm.Uptime.Set(time.Since(pm.startedAt).Seconds())
}

// UpdateRuntimeStats samples the Go runtime and host CPU. CPU sampling can
// fail on restricted hosts; the gauge just keeps its last value then.
func (pm *ProcessMetrics) UpdateRuntimeStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	pm.HeapAllocBytes.Set(float64(ms.HeapAlloc))
	pm.Goroutines.Set(float64(runtime.NumGoroutine()))
	pm.GCPauseSeconds.Set(float64(ms.PauseTotalNs) / 1e9)

	percentages, err := cpu.Percent(0, false)
	if err == nil && len(percentages) > 0 {
		pm.CPUPercent.Set(percentages[0])
	}
}
