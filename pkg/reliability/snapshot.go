package reliability

import (
	"github.com/gemscan/gemscan-backend/pkg/reliability/breaker"
	"github.com/gemscan/gemscan-backend/pkg/reliability/sla"
)

// CacheStats is the cache portion of a source's health view.
type CacheStats struct {
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// SourceHealth is the unified per-source health view, suitable for direct
// JSON serialization by an observability endpoint.
type SourceHealth struct {
	SLA          sla.Snapshot  `json:"sla"`
	BreakerState breaker.State `json:"breaker_state"`
	Cache        CacheStats    `json:"cache"`
}

// HealthSnapshot aggregates the current state of every known source. Pure
// read: it never mutates monitors, breakers, or caches.
func (inv *Invoker) HealthSnapshot() map[string]SourceHealth {
	monitors := inv.registry.Monitors()
	breakers := inv.registry.Breakers()
	caches := inv.registry.Caches()

	out := make(map[string]SourceHealth, len(monitors))
	for _, source := range inv.registry.Sources() {
		health := SourceHealth{BreakerState: breaker.StateClosed}

		if m, ok := monitors[source]; ok {
			health.SLA = m.Snapshot()
		}
		if b, ok := breakers[source]; ok {
			health.BreakerState = b.State()
		}
		if c, ok := caches[source]; ok {
			size, hitRate := c.Stats()
			health.Cache = CacheStats{Size: size, HitRate: hitRate}
		}

		out[source] = health
	}
	return out
}
