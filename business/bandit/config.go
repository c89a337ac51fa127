package bandit

import (
	"errors"
	"time"
)

type Config struct {
	// Beta prior every (user, action) belief starts from.
	PriorAlpha float64
	PriorBeta  float64

	// increments applied per converted / ignored outcome
	SuccessWeight float64
	FailureWeight float64

	// share of users (0-100) held out of optimized decisions
	HoldoutPercent int

	// sampler seed, 0 picks one from the clock
	Seed uint64

	// per user/channel/day contact cap, 0 disables it
	FrequencyCapPerDay int

	// bounded retry around repository writes
	PersistRetries   int
	PersistBaseDelay time.Duration
}

const (
	defaultPriorAlpha         = 1.0
	defaultPriorBeta          = 1.0
	defaultSuccessWeight      = 1.0
	defaultFailureWeight      = 1.0
	defaultHoldoutPercent     = 10
	defaultFrequencyCapPerDay = 3
	defaultPersistRetries     = 3
	defaultPersistBaseDelay   = 20 * time.Millisecond
)

func DefaultConfig() Config {
	return Config{
		PriorAlpha:         defaultPriorAlpha,
		PriorBeta:          defaultPriorBeta,
		SuccessWeight:      defaultSuccessWeight,
		FailureWeight:      defaultFailureWeight,
		HoldoutPercent:     defaultHoldoutPercent,
		FrequencyCapPerDay: defaultFrequencyCapPerDay,
		PersistRetries:     defaultPersistRetries,
		PersistBaseDelay:   defaultPersistBaseDelay,
	}
}

// normalize fills zero values with defaults and rejects values that would
// break α ≥ 1, β ≥ 1.
func (c Config) normalize() (Config, error) {
	if c.PriorAlpha == 0 {
		c.PriorAlpha = defaultPriorAlpha
	}
	if c.PriorBeta == 0 {
		c.PriorBeta = defaultPriorBeta
	}
	if c.SuccessWeight == 0 {
		c.SuccessWeight = defaultSuccessWeight
	}
	if c.FailureWeight == 0 {
		c.FailureWeight = defaultFailureWeight
	}
	if c.PersistBaseDelay <= 0 {
		c.PersistBaseDelay = defaultPersistBaseDelay
	}
	if c.PriorAlpha < 1 || c.PriorBeta < 1 {
		return c, errors.New("prior alpha and beta must be >= 1")
	}
	if c.SuccessWeight < 0 || c.FailureWeight < 0 {
		return c, errors.New("outcome weights must be positive")
	}
	if c.HoldoutPercent < 0 || c.HoldoutPercent > 100 {
		return c, errors.New("holdout percent must be within [0, 100]")
	}
	if c.PersistRetries < 0 {
		c.PersistRetries = 0
	}
	return c, nil
}
