package trail

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orrery/simulator/model"
)

func pt(x float64) model.Vec3 { return model.Vec3{X: x} }

func TestCapacity(t *testing.T) {
	c, err := Capacity(14, 1)
	require.NoError(t, err)
	assert.Equal(t, 88, c)

	c, err = Capacity(100, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 315, c)

	for _, tc := range [][2]float64{{0, 1}, {-1, 1}, {10, 0}, {10, -2}, {math.NaN(), 1}, {1e300, 1e300}} {
		_, err := Capacity(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrCapacity, "%v", tc)
	}
}

func TestNewRingRejectsNonPositive(t *testing.T) {
	for _, c := range []int{0, -1} {
		r, err := NewRing(c)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrCapacity)
	}
	_, err := NewEmitter(0, 0.1)
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestRingFIFO(t *testing.T) {
	r, err := NewRing(3)
	require.NoError(t, err)
	assert.Empty(t, r.Samples())

	r.Push(pt(1))
	r.Push(pt(2))
	assert.Equal(t, []model.Vec3{pt(1), pt(2)}, r.Samples())

	r.Push(pt(3))
	r.Push(pt(4))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []model.Vec3{pt(2), pt(3), pt(4)}, r.Samples())
	assert.Equal(t, pt(2), r.At(0))
	assert.Equal(t, pt(4), r.At(2))
	assert.Panics(t, func() { r.At(3) })

	r.Reset()
	assert.Equal(t, 0, r.Len())
	r.Push(pt(9))
	assert.Equal(t, []model.Vec3{pt(9)}, r.Samples())
}

func TestRingNeverExceedsCapacity(t *testing.T) {
	r, err := NewRing(7)
	require.NoError(t, err)
	for i := range 100 {
		r.Push(pt(float64(i)))
		assert.LessOrEqual(t, r.Len(), r.Cap())
		assert.Equal(t, pt(float64(i)), r.At(r.Len()-1))
	}
	assert.Equal(t, pt(93), r.At(0))
}

func TestSamplesIsACopy(t *testing.T) {
	r, err := NewRing(2)
	require.NoError(t, err)
	r.Push(pt(1))
	s := r.Samples()
	s[0] = pt(100)
	assert.Equal(t, pt(1), r.At(0))
}

func TestRibbon(t *testing.T) {
	e, err := NewEmitter(4, 0.2)
	require.NoError(t, err)

	e.Emit(pt(0))
	assert.Empty(t, e.Ribbon().Vertices, "one sample has no extent")

	e.Emit(pt(1))
	e.Emit(pt(2))
	rb := e.Ribbon()
	require.Len(t, rb.Vertices, 6)
	require.Len(t, rb.UVs, 6)
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2, 2, 3, 4, 3, 5, 4}, rb.Indices)

	// Path runs along +x, so the strip is offset along z.
	for i, v := range rb.Vertices {
		assert.Equal(t, float64(i/2), v.X)
		assert.Equal(t, 0.0, v.Y)
		assert.InDelta(t, 0.1, math.Abs(v.Z), 1e-12)
	}
	assert.Equal(t, [2]float64{0, 0}, rb.UVs[0])
	assert.Equal(t, [2]float64{1, 1}, rb.UVs[5])

	for i := 3; i < 10; i++ {
		e.Emit(pt(float64(i)))
	}
	rb = e.Ribbon()
	assert.Equal(t, 4, e.Len())
	assert.Len(t, rb.Vertices, 8)
	assert.Len(t, rb.Indices, 18)
	assert.Equal(t, 6.0, rb.Vertices[0].X)
	assert.Equal(t, 9.0, rb.Vertices[7].X)
}

func TestRibbonDegenerateTangent(t *testing.T) {
	e, err := NewEmitter(3, 1)
	require.NoError(t, err)
	e.Emit(pt(5))
	e.Emit(pt(5))
	for _, v := range e.Ribbon().Vertices {
		assert.Equal(t, pt(5), v)
	}
}
