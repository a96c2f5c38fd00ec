package simulation

import (
	"context"
	"time"
)

// Loop is the render loop: it steps the system on every tick by the wall
// time since the previous tick, scaled by TimeScale.
type Loop struct {
	System    *System
	Tick      time.Duration
	TimeScale float64

	// OnFrame runs after every step with the step's cost and error.
	OnFrame func(took time.Duration, err error)
}

// Run blocks until ctx is done. Nothing keeps running after it returns.
func (l *Loop) Run(ctx context.Context) {
	t := time.NewTicker(l.Tick)
	defer t.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			dt := now.Sub(last).Seconds() * l.TimeScale
			last = now
			if dt < 0 {
				dt = 0
			}
			start := time.Now()
			err := l.System.Step(dt)
			if l.OnFrame != nil {
				l.OnFrame(time.Since(start), err)
			}
		}
	}
}
