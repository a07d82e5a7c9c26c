package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/metrics"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
)

func newPublisherFixture(t *testing.T, logger logging.Logger) (*Publisher, *reliability.Invoker, *metrics.SourceMetrics) {
	t.Helper()

	registry := reliability.NewRegistry(logging.NoopLogger{})
	invoker := reliability.NewInvoker(registry, logging.NoopLogger{})
	collector := metrics.NewCollector("scanner", metrics.WithProcessMetrics(false))
	sourceMetrics := metrics.NewSourceMetrics("gemscan", collector.Registry())

	return NewPublisher(invoker, sourceMetrics, logger, time.Second), invoker, sourceMetrics
}

func TestPublishUpdatesGauges(t *testing.T) {
	publisher, invoker, sourceMetrics := newPublisherFixture(t, logging.NoopLogger{})

	_, err := invoker.Invoke(context.Background(), "coingecko", "btc", func() (any, error) {
		return 67000.5, nil
	})
	require.NoError(t, err)

	publisher.Publish()

	assert.Equal(t, 1.0, testutil.ToFloat64(sourceMetrics.SuccessRate.WithLabelValues("coingecko")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sourceMetrics.CacheSize.WithLabelValues("coingecko")))
}

func TestPublishWarnsOnUnhealthySources(t *testing.T) {
	mockLogger := &logging.MockLogger{}
	mockLogger.SetupDefaultExpectations()

	publisher, invoker, _ := newPublisherFixture(t, mockLogger)

	// Five consecutive failures push the source to FAILED.
	for i := 0; i < 5; i++ {
		_, _ = invoker.Invoke(context.Background(), "binance", "eth", func() (any, error) {
			return nil, assert.AnError
		})
	}

	publisher.Publish()

	mockLogger.AssertCalled(t, "Warn", "Source is not healthy", mock.Anything)
}

func TestPublisherStartStop(t *testing.T) {
	publisher, invoker, sourceMetrics := newPublisherFixture(t, logging.NoopLogger{})

	_, err := invoker.Invoke(context.Background(), "coingecko", "btc", func() (any, error) {
		return 1, nil
	})
	require.NoError(t, err)

	require.NoError(t, publisher.Start())
	publisher.Stop()

	// A final manual publish still works after Stop.
	publisher.Publish()
	assert.Equal(t, 1.0, testutil.ToFloat64(sourceMetrics.SuccessRate.WithLabelValues("coingecko")))
}
