package orbit

import (
	"fmt"
	"math"

	"orrery/simulator/model"
)

// State is the mutable part of a body's orbit. Omega never changes after
// NewState and Phase is always in [0, 2π).
type State struct {
	Radius   float64
	Omega    float64
	Phase    float64
	Position model.Vec3
}

// NewState solves the angular velocity for spec and places the body at its
// normalized initial phase.
func NewState(spec model.BodySpec, gm float64) (State, error) {
	omega, err := AngularVelocity(spec.OrbitRadius, gm)
	if err != nil {
		return State{}, fmt.Errorf("body %q: %w", spec.Name, err)
	}
	if math.IsNaN(spec.Phase) || math.IsInf(spec.Phase, 0) {
		return State{}, fmt.Errorf("body %q: phase %v is not finite", spec.Name, spec.Phase)
	}
	phase := Wrap(spec.Phase)
	return State{
		Radius:   spec.OrbitRadius,
		Omega:    omega,
		Phase:    phase,
		Position: PositionAt(spec.OrbitRadius, phase),
	}, nil
}

// Period is the revolution time implied by Omega.
func (s State) Period() float64 {
	return TwoPi / s.Omega
}

// Advance moves s forward by dt seconds. The phase is integrated with a
// single Euler step, which is exact for a constant angular velocity.
func Advance(s State, dt float64) (State, error) {
	if !ValidTimestep(dt) {
		return s, fmt.Errorf("dt %v: %w", dt, ErrInvalidTimestep)
	}
	if dt == 0 {
		return s, nil
	}
	s.Phase = Wrap(s.Phase + s.Omega*dt)
	s.Position = PositionAt(s.Radius, s.Phase)
	return s, nil
}

// ValidTimestep reports whether dt is a finite, non-negative duration.
func ValidTimestep(dt float64) bool {
	return dt >= 0 && !math.IsInf(dt, 1)
}

// PositionAt is the point on the y = 0 circle of radius r at phase.
func PositionAt(r, phase float64) model.Vec3 {
	sin, cos := math.Sincos(phase)
	return model.Vec3{X: r * sin, Y: 0, Z: r * cos}
}

// Wrap maps any finite angle into [0, 2π).
func Wrap(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// Mod of a tiny negative angle can round up to exactly 2π.
	if a >= TwoPi {
		a = 0
	}
	return a
}
