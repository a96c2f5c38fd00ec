package animation

import (
	"fmt"
	"math"
)

// Player runs a Track between two frames. Looping players wrap back to
// From when they pass To; others stop at To and report Done.
type Player struct {
	Track *Track
	From  float64
	To    float64
	Loop  bool

	frame float64
	done  bool
}

// Begin starts track at from. from must be before to.
func Begin(track *Track, from, to float64, loop bool) (*Player, error) {
	if !(to > from) {
		return nil, fmt.Errorf("track %q: range [%v, %v]: %w", track.Name, from, to, ErrInvalidTrack)
	}
	return &Player{Track: track, From: from, To: to, Loop: loop, frame: from}, nil
}

// Advance moves the player dt seconds forward and returns the new value.
// Negative steps are ignored.
func (p *Player) Advance(dt float64) float64 {
	if p.done || !(dt > 0) {
		return p.Value()
	}
	p.frame += dt * p.Track.FPS
	if p.frame >= p.To {
		if p.Loop {
			span := p.To - p.From
			p.frame = p.From + math.Mod(p.frame-p.From, span)
		} else {
			p.frame = p.To
			p.done = true
		}
	}
	return p.Value()
}

func (p *Player) Frame() float64 { return p.frame }

func (p *Player) Value() float64 { return p.Track.Value(p.frame) }

func (p *Player) Done() bool { return p.done }

// Restart rewinds to From.
func (p *Player) Restart() {
	p.frame = p.From
	p.done = false
}
