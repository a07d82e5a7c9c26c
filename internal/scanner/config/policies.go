package config

import (
	"fmt"
	"time"

	"github.com/gemscan/gemscan-backend/pkg/reliability"
	"github.com/gemscan/gemscan-backend/pkg/reliability/cache"
	"github.com/gemscan/gemscan-backend/pkg/yaml"
)

// slaYAML mirrors the sla block of the sources file. Durations are strings
// so the file can say "2s" instead of nanosecond counts.
type slaYAML struct {
	MaxP95Latency          string  `yaml:"max_p95_latency" validate:"duration"`
	MaxP99Latency          string  `yaml:"max_p99_latency" validate:"duration"`
	MinSuccessRate         float64 `yaml:"min_success_rate" validate:"min=0,max=1"`
	MaxConsecutiveFailures int     `yaml:"max_consecutive_failures" validate:"min=0"`
}

type breakerYAML struct {
	FailureThreshold int    `yaml:"failure_threshold" validate:"min=0"`
	Timeout          string `yaml:"timeout" validate:"duration"`
	SuccessThreshold int    `yaml:"success_threshold" validate:"min=0"`
}

type cacheYAML struct {
	InitialTTL       string  `yaml:"initial_ttl" validate:"duration"`
	MinTTL           string  `yaml:"min_ttl" validate:"duration"`
	MaxTTL           string  `yaml:"max_ttl" validate:"duration"`
	MaxSize          int     `yaml:"max_size" validate:"min=0"`
	Strategy         string  `yaml:"strategy" validate:"oneof=|TTL|LRU|LFU|ADAPTIVE"`
	EvictionFraction float64 `yaml:"eviction_fraction" validate:"min=0,max=1"`
	GrowthFactor     float64 `yaml:"growth_factor" validate:"min=0"`
	ShrinkFactor     float64 `yaml:"shrink_factor" validate:"min=0"`
	StaleMultiplier  float64 `yaml:"stale_multiplier" validate:"min=0"`
}

type sourceYAML struct {
	SLA     slaYAML     `yaml:"sla"`
	Breaker breakerYAML `yaml:"breaker"`
	Cache   cacheYAML   `yaml:"cache"`
}

type sourcesYAML struct {
	Sources map[string]sourceYAML `yaml:"sources"`
}

// LoadSourcePolicies reads the per-source reliability policy file. Fields left
// out of the file keep their defaults, so a source entry only needs to state
// what it overrides.
func LoadSourcePolicies(path string) (map[string]reliability.SourcePolicy, error) {
	var file sourcesYAML
	if err := yaml.Load(path, &file); err != nil {
		return nil, err
	}

	validator := yaml.NewValidator()
	policies := make(map[string]reliability.SourcePolicy, len(file.Sources))

	for name, src := range file.Sources {
		if err := validator.ValidateConfig(&src); err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}

		policy, err := toSourcePolicy(src)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		policies[name] = policy
	}

	return policies, nil
}

func toSourcePolicy(src sourceYAML) (reliability.SourcePolicy, error) {
	policy := reliability.DefaultSourcePolicy()

	if err := overrideDuration(&policy.SLA.MaxP95Latency, src.SLA.MaxP95Latency); err != nil {
		return policy, err
	}
	if err := overrideDuration(&policy.SLA.MaxP99Latency, src.SLA.MaxP99Latency); err != nil {
		return policy, err
	}
	if src.SLA.MinSuccessRate > 0 {
		policy.SLA.MinSuccessRate = src.SLA.MinSuccessRate
	}
	if src.SLA.MaxConsecutiveFailures > 0 {
		policy.SLA.MaxConsecutiveFailures = src.SLA.MaxConsecutiveFailures
	}

	if src.Breaker.FailureThreshold > 0 {
		policy.Breaker.FailureThreshold = src.Breaker.FailureThreshold
	}
	if err := overrideDuration(&policy.Breaker.Timeout, src.Breaker.Timeout); err != nil {
		return policy, err
	}
	if src.Breaker.SuccessThreshold > 0 {
		policy.Breaker.SuccessThreshold = src.Breaker.SuccessThreshold
	}

	if err := overrideDuration(&policy.Cache.InitialTTL, src.Cache.InitialTTL); err != nil {
		return policy, err
	}
	if err := overrideDuration(&policy.Cache.MinTTL, src.Cache.MinTTL); err != nil {
		return policy, err
	}
	if err := overrideDuration(&policy.Cache.MaxTTL, src.Cache.MaxTTL); err != nil {
		return policy, err
	}
	if src.Cache.MaxSize > 0 {
		policy.Cache.MaxSize = src.Cache.MaxSize
	}
	if src.Cache.Strategy != "" {
		policy.Cache.Strategy = cache.Strategy(src.Cache.Strategy)
	}
	if src.Cache.EvictionFraction > 0 {
		policy.Cache.EvictionFraction = src.Cache.EvictionFraction
	}
	if src.Cache.GrowthFactor > 0 {
		policy.Cache.GrowthFactor = src.Cache.GrowthFactor
	}
	if src.Cache.ShrinkFactor > 0 {
		policy.Cache.ShrinkFactor = src.Cache.ShrinkFactor
	}
	if src.Cache.StaleMultiplier > 0 {
		policy.Cache.StaleMultiplier = src.Cache.StaleMultiplier
	}

	if err := policy.SLA.Validate(); err != nil {
		return policy, err
	}
	if err := policy.Breaker.Validate(); err != nil {
		return policy, err
	}
	if err := policy.Cache.Validate(); err != nil {
		return policy, err
	}

	return policy, nil
}

func overrideDuration(target *time.Duration, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*target = d
	return nil
}
