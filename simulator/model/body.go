package model

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
)

// Tag selects the texture variant the renderer uses for a body.
type Tag string

const (
	Rocky   Tag = "rocky"
	Gaseous Tag = "gaseous"
)

func (t Tag) Valid() bool {
	return t == Rocky || t == Gaseous
}

// Vec3 is a point in scene space. Orbits lie on the y = 0 plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// PlanarLength is the distance from the orbital axis, ignoring y.
func (v Vec3) PlanarLength() float64 { return math.Hypot(v.X, v.Z) }

// BodySpec is the static description of one orbiting body.
type BodySpec struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	OrbitRadius float64 `json:"radius"`
	Phase       float64 `json:"phase"`
	Scale       float64 `json:"scale"`
	Tag         Tag     `json:"tag"`
	Color       string  `json:"color,omitempty"`
}

func NewBody(name string, orbitRadius, phase, scale float64, tag Tag, color string) BodySpec {
	return BodySpec{ID: "body_" + hashID(name)[:5], Name: name, OrbitRadius: orbitRadius, Phase: phase, Scale: scale, Tag: tag, Color: color}
}

// Validate checks the fields the renderer relies on. Orbit radius is
// checked by the period solver, which owns that error.
func (b BodySpec) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("body has no name")
	}
	if !(b.Scale > 0) || math.IsInf(b.Scale, 0) {
		return fmt.Errorf("body %q: scale must be positive, got %v", b.Name, b.Scale)
	}
	if !b.Tag.Valid() {
		return fmt.Errorf("body %q: unknown tag %q", b.Name, b.Tag)
	}
	return nil
}

func hashID(s string) string {
	h := sha1.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
