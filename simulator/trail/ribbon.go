package trail

import (
	"math"

	"orrery/simulator/model"
)

// Ribbon is a flat strip laid along the trail in the orbital plane. Each
// sample contributes two vertices; V runs from 0 at the oldest sample to 1
// at the newest so a material can fade the tail.
type Ribbon struct {
	Vertices []model.Vec3 `json:"vertices"`
	UVs      [][2]float64 `json:"uvs"`
	Indices  []uint32     `json:"indices"`
}

// Build regenerates rb from ring, reusing its slices.
func (rb *Ribbon) Build(ring *Ring, width float64) {
	n := ring.Len()
	rb.Vertices = rb.Vertices[:0]
	rb.UVs = rb.UVs[:0]
	rb.Indices = rb.Indices[:0]
	if n < 2 {
		return
	}

	half := width / 2
	for i := range n {
		p := ring.At(i)
		var tan model.Vec3
		switch {
		case i == 0:
			tan = ring.At(1).Sub(p)
		case i == n-1:
			tan = p.Sub(ring.At(i - 1))
		default:
			tan = ring.At(i + 1).Sub(ring.At(i - 1))
		}
		off := planarNormal(tan).Scale(half)
		v := float64(i) / float64(n-1)
		rb.Vertices = append(rb.Vertices, p.Sub(off), p.Add(off))
		rb.UVs = append(rb.UVs, [2]float64{0, v}, [2]float64{1, v})
	}

	for i := range n - 1 {
		a := uint32(2 * i)
		rb.Indices = append(rb.Indices, a, a+1, a+2, a+1, a+3, a+2)
	}
}

// planarNormal is the unit vector perpendicular to t within the y = 0
// plane. Degenerate tangents yield the zero vector.
func planarNormal(t model.Vec3) model.Vec3 {
	l := math.Hypot(t.X, t.Z)
	if l == 0 {
		return model.Vec3{}
	}
	return model.Vec3{X: -t.Z / l, Z: t.X / l}
}
