// Package orbit advances bodies along circular orbits around a single
// central mass.
package orbit

import (
	"errors"
	"fmt"
	"math"
)

const TwoPi = 2 * math.Pi

var (
	ErrInvalidRadius    = errors.New("orbit radius must be positive")
	ErrInvalidGravParam = errors.New("gravitational parameter must be positive")
	ErrInvalidTimestep  = errors.New("timestep must be non-negative")
)

// Period returns the time for one revolution at radius r around a central
// body with gravitational parameter gm: 2π·sqrt(r³/gm).
func Period(r, gm float64) (float64, error) {
	if !finitePositive(r) {
		return 0, fmt.Errorf("radius %v: %w", r, ErrInvalidRadius)
	}
	if !finitePositive(gm) {
		return 0, fmt.Errorf("gm %v: %w", gm, ErrInvalidGravParam)
	}
	return TwoPi * math.Sqrt(r*r*r/gm), nil
}

// AngularVelocity returns 2π/T in radians per second.
func AngularVelocity(r, gm float64) (float64, error) {
	t, err := Period(r, gm)
	if err != nil {
		return 0, err
	}
	return TwoPi / t, nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
