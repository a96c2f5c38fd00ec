// Package trail keeps a bounded history of body positions and turns it
// into ribbon geometry.
package trail

import (
	"errors"
	"fmt"
	"math"

	"orrery/simulator/model"
)

var ErrCapacity = errors.New("trail capacity must be positive")

// Capacity sizes a trail so that it spans one orbit circumference at
// density samples per world unit.
func Capacity(radius, density float64) (int, error) {
	if !(radius > 0) || !(density > 0) || math.IsInf(radius*density, 0) {
		return 0, fmt.Errorf("radius %v, density %v: %w", radius, density, ErrCapacity)
	}
	c := math.Ceil(2 * math.Pi * radius * density)
	if c > maxCapacity {
		return 0, fmt.Errorf("radius %v, density %v needs %v samples: %w", radius, density, c, ErrCapacity)
	}
	return int(c), nil
}

const maxCapacity = 1 << 20

// Ring is a fixed-capacity FIFO of positions. Once full, each Push evicts
// the oldest sample.
type Ring struct {
	buf   []model.Vec3
	start int
	n     int
}

func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrCapacity)
	}
	return &Ring{buf: make([]model.Vec3, capacity)}, nil
}

func (r *Ring) Cap() int { return len(r.buf) }

func (r *Ring) Len() int { return r.n }

func (r *Ring) Push(p model.Vec3) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = p
		r.n++
		return
	}
	r.buf[r.start] = p
	r.start = (r.start + 1) % len(r.buf)
}

// At returns the i-th sample, 0 being the oldest.
func (r *Ring) At(i int) model.Vec3 {
	if i < 0 || i >= r.n {
		panic(fmt.Sprintf("trail: index %d out of range [0,%d)", i, r.n))
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

// Samples copies the ring contents, oldest first.
func (r *Ring) Samples() []model.Vec3 {
	out := make([]model.Vec3, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

func (r *Ring) Reset() {
	r.start, r.n = 0, 0
}
