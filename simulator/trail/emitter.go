package trail

import "orrery/simulator/model"

// Emitter feeds position updates into a Ring and keeps the ribbon in sync
// with it.
type Emitter struct {
	Width float64

	ring   *Ring
	ribbon Ribbon
}

func NewEmitter(capacity int, width float64) (*Emitter, error) {
	ring, err := NewRing(capacity)
	if err != nil {
		return nil, err
	}
	return &Emitter{Width: width, ring: ring}, nil
}

// Emit appends p and rebuilds the ribbon from the current ring contents.
func (e *Emitter) Emit(p model.Vec3) {
	e.ring.Push(p)
	e.ribbon.Build(e.ring, e.Width)
}

func (e *Emitter) Len() int { return e.ring.Len() }

func (e *Emitter) Cap() int { return e.ring.Cap() }

func (e *Emitter) Samples() []model.Vec3 { return e.ring.Samples() }

// Ribbon returns a copy of the current mesh.
func (e *Emitter) Ribbon() Ribbon {
	return Ribbon{
		Vertices: append([]model.Vec3(nil), e.ribbon.Vertices...),
		UVs:      append([][2]float64(nil), e.ribbon.UVs...),
		Indices:  append([]uint32(nil), e.ribbon.Indices...),
	}
}
