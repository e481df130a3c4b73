package game

import (
	"fmt"
	"math"
)

// RakeConfig controls the fee taken from each pot.
type RakeConfig struct {
	Percentage float64 `json:"percentage"`
	Cap        int     `json:"cap"`
	Threshold  int     `json:"threshold"`
}

// DefaultRakeConfig is 5% capped at 500 on pots of 100 or more.
func DefaultRakeConfig() RakeConfig {
	return RakeConfig{Percentage: 0.05, Cap: 500, Threshold: 100}
}

// NoRake disables rake collection.
func NoRake() RakeConfig {
	return RakeConfig{}
}

// Validate checks the percentage is a fraction and the limits are not
// negative.
func (r RakeConfig) Validate() error {
	if r.Percentage < 0 || r.Percentage > 1 || math.IsNaN(r.Percentage) {
		return fmt.Errorf("%w: rake percentage %v must be within [0, 1]", ErrValidation, r.Percentage)
	}
	if r.Cap < 0 || r.Threshold < 0 {
		return fmt.Errorf("%w: rake cap and threshold must not be negative", ErrValidation)
	}
	return nil
}

// Calculate returns the rake for a pot: floor(pot * percentage) capped at
// Cap, or zero when the pot is below Threshold.
func (r RakeConfig) Calculate(pot int) int {
	if pot <= 0 || pot < r.Threshold {
		return 0
	}
	// The epsilon absorbs binary float error such as 100*0.29.
	rake := int(math.Floor(float64(pot)*r.Percentage + 1e-9))
	return min(rake, r.Cap)
}
