package simulation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orrery/simulator/model"
)

func TestLoopRunsUntilCancelled(t *testing.T) {
	sys := newSystem()
	_, err := sys.Attach(model.NewBody("hg", 14, 0, 2, model.Rocky, ""), nil)
	require.NoError(t, err)

	var frames atomic.Int64
	l := &Loop{
		System:    sys,
		Tick:      time.Millisecond,
		TimeScale: 60,
		OnFrame: func(_ time.Duration, err error) {
			assert.NoError(t, err)
			frames.Add(1)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	start := time.Now()
	go func() {
		l.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return frames.Load() >= 5 }, 2*time.Second, time.Millisecond)
	cancel()
	<-done
	wall := time.Since(start).Seconds()

	snap := sys.Snapshot()
	assert.Equal(t, uint64(frames.Load()), snap.Frame)
	assert.Greater(t, snap.Elapsed, 0.0)
	assert.LessOrEqual(t, snap.Elapsed, wall*60)

	// No frames after Run returns.
	n := frames.Load()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, n, frames.Load())
}
