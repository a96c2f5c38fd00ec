// Package resolver turns service names into base URLs, checking an
// in-process LRU, then Redis, then the registry.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"

	discovery "orrery/pkg/registry"
)

// Cache is the subset of the Redis client the resolver uses.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type entry struct {
	url     string
	expires time.Time
}

type Resolver struct {
	registry discovery.Registry
	cache    Cache
	local    *lru.Cache
	ttl      time.Duration
	logger   hclog.Logger
	now      func() time.Time
}

// New builds a resolver. cache may be nil to skip Redis.
func New(registry discovery.Registry, cache Cache, ttl time.Duration, logger hclog.Logger) (*Resolver, error) {
	local, err := lru.New(64)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{
		registry: registry,
		cache:    cache,
		local:    local,
		ttl:      ttl,
		logger:   logger.Named("resolver"),
		now:      time.Now,
	}, nil
}

// CacheKey is the Redis key holding a service's URL.
func CacheKey(service string) string {
	return service + "_url"
}

// URL returns "http://host:port" for a healthy instance of service.
func (r *Resolver) URL(ctx context.Context, service string) (string, error) {
	if v, ok := r.local.Get(service); ok {
		e := v.(entry)
		if r.now().Before(e.expires) {
			return e.url, nil
		}
		r.local.Remove(service)
	}

	if r.cache != nil {
		if url, err := r.cache.Get(ctx, CacheKey(service)).Result(); err == nil && url != "" {
			r.remember(service, url)
			return url, nil
		}
	}

	addrs, err := r.registry.ServiceAddresses(ctx, service)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", service, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("lookup %s: %w", service, discovery.ErrNotFound)
	}
	url := "http://" + addrs[0]
	r.remember(service, url)

	if r.cache != nil {
		if err := r.cache.Set(ctx, CacheKey(service), url, r.ttl).Err(); err != nil {
			r.logger.Warn("failed to cache service URL", "service", service, "error", err)
		}
	}
	return url, nil
}

// Forget drops the cached URL of service from both cache tiers, e.g. after
// a failed request, so the next URL call asks the registry again.
func (r *Resolver) Forget(ctx context.Context, service string) {
	r.local.Remove(service)
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, CacheKey(service)).Err(); err != nil {
		r.logger.Warn("failed to drop cached service URL", "service", service, "error", err)
	}
}

func (r *Resolver) remember(service, url string) {
	r.local.Add(service, entry{url: url, expires: r.now().Add(r.ttl)})
}
