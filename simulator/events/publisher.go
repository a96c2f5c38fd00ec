// Package events publishes frame snapshots to Redis subscribers.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"orrery/simulator/simulation"
)

// StepChannel carries one JSON simulation.Snapshot per published frame.
const StepChannel = "simulation.step"

// Client is the subset of the Redis client used to publish.
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Outcome of a Publish call, used as a metric label.
const (
	Sent    = "sent"
	Dropped = "dropped"
	Failed  = "failed"
)

// Publisher throttles frame events so subscribers are not flooded at the
// render rate.
type Publisher struct {
	client  Client
	limiter *rate.Limiter
}

// NewPublisher allows perSecond events with no burst. A zero rate
// publishes every frame.
func NewPublisher(client Client, perSecond float64) *Publisher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Publisher{client: client, limiter: rate.NewLimiter(limit, 1)}
}

// Publish sends snap unless the rate limit drops it.
func (p *Publisher) Publish(ctx context.Context, snap simulation.Snapshot) (string, error) {
	if !p.limiter.Allow() {
		return Dropped, nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return Failed, err
	}
	if err := p.client.Publish(ctx, StepChannel, payload).Err(); err != nil {
		return Failed, err
	}
	return Sent, nil
}
