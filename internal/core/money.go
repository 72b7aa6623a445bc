// Package core holds the domain types shared across the backend.
//
// Money is stored as integer cents to keep aggregation exact; the JSON
// surface converts to and from decimal numbers at the boundary.
package core

import "math"

type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the decimal value for serialization.
// Use cents for arithmetic to avoid floating-point drift.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// CentsFromFloat converts a decimal amount to cents with half-up rounding.
// Returns an error for non-positive, NaN, or out-of-range values.
func CentsFromFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	const maxSafe = float64(1<<63-1) / 100
	if v <= 0 || v >= maxSafe {
		return 0, ErrInvalidAmount
	}
	cents := int64(math.Floor(v*100 + 0.5))
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
