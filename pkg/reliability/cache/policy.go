package cache

import (
	"errors"
	"time"
)

// Strategy selects which entries are discarded under capacity pressure.
type Strategy string

const (
	// StrategyTTL evicts soonest-to-expire entries first.
	StrategyTTL Strategy = "TTL"
	// StrategyLRU evicts least-recently-accessed entries first.
	StrategyLRU Strategy = "LRU"
	// StrategyLFU evicts least-frequently-accessed entries first.
	StrategyLFU Strategy = "LFU"
	// StrategyAdaptive evicts by lowest access_count/age score, blending
	// recency and frequency.
	StrategyAdaptive Strategy = "ADAPTIVE"
)

// Policy configures an adaptive cache.
type Policy struct {
	InitialTTL       time.Duration
	MinTTL           time.Duration
	MaxTTL           time.Duration
	MaxSize          int
	Strategy         Strategy
	EvictionFraction float64
	GrowthFactor     float64
	ShrinkFactor     float64
	StaleMultiplier  float64
}

// DefaultPolicy returns a policy suited to market-data responses: short
// initial TTL that grows for hot keys, with a 2x stale window for fallback.
func DefaultPolicy() Policy {
	return Policy{
		InitialTTL:       time.Minute,
		MinTTL:           10 * time.Second,
		MaxTTL:           15 * time.Minute,
		MaxSize:          1000,
		Strategy:         StrategyAdaptive,
		EvictionFraction: 0.10,
		GrowthFactor:     1.5,
		ShrinkFactor:     0.5,
		StaleMultiplier:  2.0,
	}
}

func (p Policy) Validate() error {
	if p.MinTTL <= 0 {
		return errors.New("MinTTL must be positive")
	}
	if p.MaxTTL < p.MinTTL {
		return errors.New("MaxTTL must be >= MinTTL")
	}
	if p.InitialTTL < p.MinTTL || p.InitialTTL > p.MaxTTL {
		return errors.New("InitialTTL must be within [MinTTL, MaxTTL]")
	}
	if p.MaxSize <= 0 {
		return errors.New("MaxSize must be positive")
	}
	switch p.Strategy {
	case StrategyTTL, StrategyLRU, StrategyLFU, StrategyAdaptive:
	default:
		return errors.New("unknown eviction strategy: " + string(p.Strategy))
	}
	if p.EvictionFraction <= 0 || p.EvictionFraction > 1.0 {
		return errors.New("EvictionFraction must be in (0.0, 1.0]")
	}
	if p.GrowthFactor < 1.0 {
		return errors.New("GrowthFactor must be >= 1.0")
	}
	if p.ShrinkFactor <= 0 || p.ShrinkFactor > 1.0 {
		return errors.New("ShrinkFactor must be in (0.0, 1.0]")
	}
	if p.StaleMultiplier < 1.0 {
		return errors.New("StaleMultiplier must be >= 1.0")
	}
	return nil
}
