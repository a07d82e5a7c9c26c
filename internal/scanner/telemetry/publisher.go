package telemetry

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/metrics"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
	"github.com/gemscan/gemscan-backend/pkg/reliability/sla"
)

// Publisher periodically pushes invoker health snapshots into the Prometheus
// gauges and logs sources that have left the HEALTHY state.
type Publisher struct {
	invoker       *reliability.Invoker
	sourceMetrics *metrics.SourceMetrics
	logger        logging.Logger
	cron          *cron.Cron
	interval      time.Duration
}

func NewPublisher(invoker *reliability.Invoker, sourceMetrics *metrics.SourceMetrics, logger logging.Logger, interval time.Duration) *Publisher {
	return &Publisher{
		invoker:       invoker,
		sourceMetrics: sourceMetrics,
		logger:        logger,
		cron:          cron.New(cron.WithSeconds()),
		interval:      interval,
	}
}

// Start schedules snapshot publishing and returns once the schedule is armed.
func (p *Publisher) Start() error {
	spec := fmt.Sprintf("@every %ds", int(p.interval.Seconds()))
	if _, err := p.cron.AddFunc(spec, p.Publish); err != nil {
		return fmt.Errorf("failed to schedule snapshot publishing: %w", err)
	}

	p.cron.Start()
	p.logger.Infof("Snapshot publisher started with interval %s", p.interval)
	return nil
}

// Stop halts the schedule and waits for a running publish to finish.
func (p *Publisher) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("Snapshot publisher stopped")
}

// Publish pushes one snapshot immediately.
func (p *Publisher) Publish() {
	snapshot := p.invoker.HealthSnapshot()
	p.sourceMetrics.Update(snapshot)

	for source, health := range snapshot {
		if health.SLA.Status == sla.StatusHealthy {
			continue
		}
		p.logger.Warn("Source is not healthy",
			"source", source,
			"status", health.SLA.Status,
			"success_rate", health.SLA.SuccessRate,
			"consecutive_failures", health.SLA.ConsecutiveFailures,
			"breaker_state", health.BreakerState,
		)
	}
}
