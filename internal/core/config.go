package core

import "time"

// RuntimeConfig contains configuration passed to a battle at initialization.
// The host uses it for deterministic simulation and timer pacing.
type RuntimeConfig struct {
	TickRate int   // Timer ticks per second on the host (default 20)
	Seed     int64 // RNG seed for map generation and first-player choice
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate: 20,
		Seed:     0, // 0 means use current time in the CLI layer
	}
}

// TickDuration returns the length of one host tick.
func (c RuntimeConfig) TickDuration() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = DefaultConfig().TickRate
	}
	return time.Second / time.Duration(rate)
}
