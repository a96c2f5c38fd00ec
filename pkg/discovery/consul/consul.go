// Package consul implements the service registry on a Consul agent.
package consul

import (
	"context"
	"fmt"
	"net"
	"strconv"

	consul "github.com/hashicorp/consul/api"

	discovery "orrery/pkg/registry"
)

// Registry defines a Consul-based service registry.
type Registry struct {
	client *consul.Client
}

var _ discovery.Registry = (*Registry)(nil)

// NewRegistry creates a new Consul-based service registry instance.
func NewRegistry(addr string) (*Registry, error) {
	config := consul.DefaultConfig()
	config.Address = addr
	client, err := consul.NewClient(config)
	if err != nil {
		return nil, err
	}
	return &Registry{client: client}, nil
}

// Register creates a service record in the registry with a TTL check the
// instance must keep alive through ReportHealthyState.
func (r *Registry) Register(ctx context.Context, instanceID, serviceName, hostPort string) error {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return fmt.Errorf("hostPort %q: %w", hostPort, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("hostPort %q: %w", hostPort, err)
	}
	return r.client.Agent().ServiceRegisterOpts(&consul.AgentServiceRegistration{
		ID:      instanceID,
		Name:    serviceName,
		Address: host,
		Port:    port,
		Check: &consul.AgentServiceCheck{
			CheckID:                        checkID(instanceID),
			TTL:                            "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}, consul.ServiceRegisterOpts{}.WithContext(ctx))
}

// Deregister removes a service record from the registry.
func (r *Registry) Deregister(ctx context.Context, instanceID, _ string) error {
	return r.client.Agent().ServiceDeregisterOpts(instanceID, (&consul.QueryOptions{}).WithContext(ctx))
}

// ServiceAddresses returns the host:port of every passing instance.
func (r *Registry) ServiceAddresses(ctx context.Context, serviceName string) ([]string, error) {
	entries, _, err := r.client.Health().Service(serviceName, "", true, (&consul.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", serviceName, discovery.ErrNotFound)
	}
	addrs := make([]string, 0, len(entries))
	for _, e := range entries {
		addrs = append(addrs, net.JoinHostPort(e.Service.Address, strconv.Itoa(e.Service.Port)))
	}
	return addrs, nil
}

// ReportHealthyState passes the instance's TTL check.
func (r *Registry) ReportHealthyState(instanceID, _ string) error {
	return r.client.Agent().UpdateTTL(checkID(instanceID), "", consul.HealthPassing)
}

func checkID(instanceID string) string {
	return "service:" + instanceID
}
