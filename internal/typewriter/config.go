package typewriter

import (
	"fmt"
	"time"
)

// Default timing and looping behavior.
const (
	DefaultTypeInterval   = 100 * time.Millisecond
	DefaultDeleteInterval = 50 * time.Millisecond
	DefaultHoldFor        = 1000 * time.Millisecond
	DefaultHoldEmptyFor   = 200 * time.Millisecond
)

// Config controls the engine's timing and termination policy.
//
// A zero Config is valid but not useful (no delays, no looping); start from
// DefaultConfig and override fields.
type Config struct {
	// TypeInterval is the delay between typed characters.
	TypeInterval time.Duration

	// DeleteInterval is the delay between deleted characters.
	DeleteInterval time.Duration

	// HoldFor is how long a fully typed string stays on screen.
	// Zero starts deleting immediately.
	HoldFor time.Duration

	// HoldEmptyFor is how long the empty text stays before the next string.
	// Zero starts typing immediately.
	HoldEmptyFor time.Duration

	// Loop restarts at the first string after the last one.
	Loop bool

	// Iterations bounds the number of passes when Loop is set.
	// Zero loops forever.
	Iterations int

	// StartEmpty starts with nothing on screen and types the first string.
	// Otherwise the first string starts fully typed.
	StartEmpty bool

	// StartPaused makes Start record a pause instead of scheduling.
	StartPaused bool

	// FinishEmpty selects the termination policy. When false the engine
	// completes with the last string fully typed; when true it deletes the
	// last string and completes with empty text.
	FinishEmpty bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		TypeInterval:   DefaultTypeInterval,
		DeleteInterval: DefaultDeleteInterval,
		HoldFor:        DefaultHoldFor,
		HoldEmptyFor:   DefaultHoldEmptyFor,
		Loop:           true,
	}
}

// Validate checks durations and iteration bounds.
func (c Config) Validate() error {
	durations := []struct {
		field string
		value time.Duration
	}{
		{"type_interval", c.TypeInterval},
		{"delete_interval", c.DeleteInterval},
		{"hold_for", c.HoldFor},
		{"hold_empty_for", c.HoldEmptyFor},
	}
	for _, d := range durations {
		if d.value < 0 {
			return &ValidationError{
				Field:   d.field,
				Message: fmt.Sprintf("must not be negative (got %s)", d.value),
			}
		}
	}
	if c.Iterations < 0 {
		return &ValidationError{
			Field:   "iterations",
			Message: fmt.Sprintf("must not be negative (got %d)", c.Iterations),
		}
	}
	return nil
}
