package sla

import (
	"errors"
	"time"
)

// Thresholds defines the service level a data source must meet to be
// considered healthy. Immutable once handed to a Monitor.
type Thresholds struct {
	MaxP95Latency          time.Duration
	MaxP99Latency          time.Duration
	MinSuccessRate         float64
	MaxConsecutiveFailures int
}

// DefaultThresholds returns thresholds suited to third-party market data APIs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxP95Latency:          2 * time.Second,
		MaxP99Latency:          5 * time.Second,
		MinSuccessRate:         0.95,
		MaxConsecutiveFailures: 5,
	}
}

func (t Thresholds) Validate() error {
	if t.MaxP95Latency <= 0 {
		return errors.New("MaxP95Latency must be positive")
	}
	if t.MaxP99Latency < t.MaxP95Latency {
		return errors.New("MaxP99Latency must be >= MaxP95Latency")
	}
	if t.MinSuccessRate < 0 || t.MinSuccessRate > 1.0 {
		return errors.New("MinSuccessRate must be between 0.0 and 1.0")
	}
	if t.MaxConsecutiveFailures <= 0 {
		return errors.New("MaxConsecutiveFailures must be positive")
	}
	return nil
}
