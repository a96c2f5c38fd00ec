// Package discovery defines the service registry used by every service.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var ErrNotFound = errors.New("no registry record found")

// Registry is a service registry.
type Registry interface {
	// Register creates a service instance record in the registry.
	Register(ctx context.Context, instanceID, serviceName, hostPort string) error
	// Deregister removes a service instance record from the registry.
	Deregister(ctx context.Context, instanceID, serviceName string) error
	// ServiceAddresses returns the list of healthy addresses of a service.
	ServiceAddresses(ctx context.Context, serviceName string) ([]string, error)
	// ReportHealthyState pushes a push-based health check for an instance.
	ReportHealthyState(instanceID, serviceName string) error
}

// GenerateInstanceID returns a random instance ID for a service.
func GenerateInstanceID(serviceName string) string {
	return fmt.Sprintf("%s-%d", serviceName, rand.Int64())
}

// HeartbeatInterval is how often services refresh their TTL check.
const HeartbeatInterval = 2 * time.Second

// Heartbeat reports the instance healthy every interval until ctx is done.
// Failures go to onErr and do not stop the loop.
func Heartbeat(ctx context.Context, r Registry, instanceID, serviceName string, interval time.Duration, onErr func(error)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := r.ReportHealthyState(instanceID, serviceName); err != nil && onErr != nil {
			onErr(err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
