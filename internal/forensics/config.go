package forensics

import (
	"fmt"
	"time"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// Config holds the detection thresholds. These are policy knobs, not derived
// statistics: changing one is a configuration change, not a behavior fix.
type Config struct {
	// SpikeMultiplier: a bucket is a spike when its count strictly exceeds
	// multiplier * max(prev, next, 1).
	SpikeMultiplier float64 `koanf:"spike_multiplier"`

	// FreshAge: actors younger than this at event time classify as
	// FreshAccount.
	FreshAge time.Duration `koanf:"fresh_age"`

	// SleeperAge: minimum account age for the sleeper pattern.
	SleeperAge time.Duration `koanf:"sleeper_age"`

	// LowActivityMax: lifetime event count below which an old account
	// qualifies as a sleeper.
	LowActivityMax int64 `koanf:"low_activity_max"`

	// MinAnomalyCount: absolute floor of fresh-actor events for a bucket to
	// appear in a global scan. An absolute floor, not a fraction, so
	// low-traffic subjects are not over-flagged.
	MinAnomalyCount int64 `koanf:"min_anomaly_count"`
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		SpikeMultiplier: 2.0,
		FreshAge:        24 * time.Hour,
		SleeperAge:      90 * 24 * time.Hour,
		LowActivityMax:  5,
		MinAnomalyCount: 10,
	}
}

// Validate rejects threshold combinations that would make classification
// meaningless. All violations wrap domain.ErrConfiguration.
func (c Config) Validate() error {
	if c.SpikeMultiplier <= 0 {
		return fmt.Errorf("%w: spike_multiplier must be positive, got %g", domain.ErrConfiguration, c.SpikeMultiplier)
	}
	if c.FreshAge <= 0 {
		return fmt.Errorf("%w: fresh_age must be positive, got %s", domain.ErrConfiguration, c.FreshAge)
	}
	if c.SleeperAge <= c.FreshAge {
		return fmt.Errorf("%w: sleeper_age (%s) must exceed fresh_age (%s)", domain.ErrConfiguration, c.SleeperAge, c.FreshAge)
	}
	if c.LowActivityMax < 0 {
		return fmt.Errorf("%w: low_activity_max must not be negative, got %d", domain.ErrConfiguration, c.LowActivityMax)
	}
	if c.MinAnomalyCount < 0 {
		return fmt.Errorf("%w: min_anomaly_count must not be negative, got %d", domain.ErrConfiguration, c.MinAnomalyCount)
	}
	return nil
}
