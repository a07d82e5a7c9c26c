package reliability

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/reliability/breaker"
	"github.com/gemscan/gemscan-backend/pkg/reliability/cache"
	"github.com/gemscan/gemscan-backend/pkg/reliability/sla"
)

func TestRegistry_GetOrCreateIsIdempotent(t *testing.T) {
	r := NewRegistry(logging.NoopLogger{})

	m1 := r.GetOrCreateMonitor("coingecko", sla.DefaultThresholds())
	m2 := r.GetOrCreateMonitor("coingecko", sla.Thresholds{
		MaxP95Latency:          1,
		MaxP99Latency:          1,
		MinSuccessRate:         0.1,
		MaxConsecutiveFailures: 1,
	})

	// Same instance; the second config is ignored, not hot-swapped.
	assert.Same(t, m1, m2)
	assert.Equal(t, sla.DefaultThresholds(), m2.Thresholds())

	b1 := r.GetOrCreateBreaker("coingecko", breaker.DefaultConfig())
	b2 := r.GetOrCreateBreaker("coingecko", breaker.Config{FailureThreshold: 1, Timeout: 1, SuccessThreshold: 1})
	assert.Same(t, b1, b2)

	c1 := r.GetOrCreateCache("coingecko", cache.DefaultPolicy())
	c2 := r.GetOrCreateCache("coingecko", cache.DefaultPolicy())
	assert.Same(t, c1, c2)
}

func TestRegistry_SeparateNamesGetSeparateInstances(t *testing.T) {
	r := NewRegistry(logging.NoopLogger{})

	coingecko := r.GetOrCreateBreaker("coingecko", breaker.DefaultConfig())
	binance := r.GetOrCreateBreaker("binance", breaker.DefaultConfig())

	assert.NotSame(t, coingecko, binance)
	assert.Len(t, r.Breakers(), 2)
}

func TestRegistry_ConcurrentFirstUseCreatesSingleInstance(t *testing.T) {
	r := NewRegistry(logging.NoopLogger{})

	const goroutines = 32
	results := make(chan *sla.Monitor, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.GetOrCreateMonitor("twitter", sla.DefaultThresholds())
		}()
	}
	wg.Wait()
	close(results)

	first := <-results
	for m := range results {
		assert.Same(t, first, m)
	}
	assert.Len(t, r.Monitors(), 1)
}

func TestRegistry_Sources(t *testing.T) {
	r := NewRegistry(logging.NoopLogger{})

	r.GetOrCreateMonitor("coingecko", sla.DefaultThresholds())
	r.GetOrCreateBreaker("binance", breaker.DefaultConfig())
	r.GetOrCreateCache("twitter", cache.DefaultPolicy())
	r.GetOrCreateCache("coingecko", cache.DefaultPolicy())

	sources := r.Sources()
	assert.ElementsMatch(t, []string{"coingecko", "binance", "twitter"}, sources)
}

func TestRegistry_ListSnapshotsAreCopies(t *testing.T) {
	r := NewRegistry(logging.NoopLogger{})
	r.GetOrCreateCache("coingecko", cache.DefaultPolicy())

	caches := r.Caches()
	delete(caches, "coingecko")

	assert.Len(t, r.Caches(), 1, "mutating a listing must not touch the registry")
}

func TestRegistry_ManySourcesConcurrently(t *testing.T) {
	r := NewRegistry(logging.NoopLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				name := fmt.Sprintf("source-%d", j)
				r.GetOrCreateMonitor(name, sla.DefaultThresholds())
				r.GetOrCreateBreaker(name, breaker.DefaultConfig())
				r.GetOrCreateCache(name, cache.DefaultPolicy())
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Monitors(), 20)
	assert.Len(t, r.Breakers(), 20)
	assert.Len(t, r.Caches(), 20)
}
