// Package animation drives keyframed scalar properties, such as the
// rotation of the central star, on a fixed frame rate.
package animation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrInvalidTrack = errors.New("invalid keyframe track")

// Key is a value pinned to a frame index.
type Key struct {
	Frame float64 `json:"frame"`
	Value float64 `json:"value"`
}

// Track linearly interpolates a single property between keys. Property
// names the animated channel, e.g. "rotation.y".
type Track struct {
	Name     string
	Property string
	FPS      float64
	Keys     []Key
}

func NewTrack(name, property string, fps float64, keys ...Key) (*Track, error) {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("track %q: fps %v: %w", name, fps, ErrInvalidTrack)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("track %q: no keys: %w", name, ErrInvalidTrack)
	}
	ks := append([]Key(nil), keys...)
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].Frame < ks[j].Frame })
	return &Track{Name: name, Property: property, FPS: fps, Keys: ks}, nil
}

// NewSpin is a full turn, 0 to 2π, over frames frames of rotation.y.
func NewSpin(name string, fps, frames float64) (*Track, error) {
	if !(frames > 0) {
		return nil, fmt.Errorf("track %q: frames %v: %w", name, frames, ErrInvalidTrack)
	}
	return NewTrack(name, "rotation.y", fps,
		Key{Frame: 0, Value: 0},
		Key{Frame: frames, Value: 2 * math.Pi},
	)
}

func (t *Track) FirstFrame() float64 { return t.Keys[0].Frame }

func (t *Track) LastFrame() float64 { return t.Keys[len(t.Keys)-1].Frame }

// Value samples the track at frame, clamping outside the key range.
func (t *Track) Value(frame float64) float64 {
	ks := t.Keys
	if frame <= ks[0].Frame {
		return ks[0].Value
	}
	last := ks[len(ks)-1]
	if frame >= last.Frame {
		return last.Value
	}
	i := sort.Search(len(ks), func(i int) bool { return ks[i].Frame > frame })
	a, b := ks[i-1], ks[i]
	if b.Frame == a.Frame {
		return b.Value
	}
	u := (frame - a.Frame) / (b.Frame - a.Frame)
	return a.Value + (b.Value-a.Value)*u
}
