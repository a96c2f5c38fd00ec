package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRegistry struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRegistry) Register(context.Context, string, string, string) error { return nil }
func (r *countingRegistry) Deregister(context.Context, string, string) error       { return nil }
func (r *countingRegistry) ServiceAddresses(context.Context, string) ([]string, error) {
	return nil, ErrNotFound
}

func (r *countingRegistry) ReportHealthyState(string, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestGenerateInstanceID(t *testing.T) {
	a := GenerateInstanceID("simulator")
	b := GenerateInstanceID("simulator")
	assert.True(t, strings.HasPrefix(a, "simulator-"))
	assert.NotEqual(t, a, b)
}

func TestHeartbeatStopsOnCancel(t *testing.T) {
	r := &countingRegistry{err: errors.New("agent down")}
	ctx, cancel := context.WithCancel(context.Background())

	var errs int
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		Heartbeat(ctx, r, "id", "svc", time.Millisecond, func(error) {
			mu.Lock()
			errs++
			mu.Unlock()
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.count() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop")
	}
	mu.Lock()
	assert.Equal(t, r.count(), errs)
	mu.Unlock()
}
