package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"orrery/pkg/discovery/consul"
	"orrery/pkg/discovery/resolver"
	"orrery/pkg/logging"
	discovery "orrery/pkg/registry"
)

const serviceName = "controller"

func main() {
	var (
		port       int
		redisAddr  string
		consulAddr string
		logLevel   string
	)
	flag.IntVar(&port, "port", 8080, "Controller port")
	flag.StringVar(&redisAddr, "redis", "localhost:6379", "Redis address")
	flag.StringVar(&consulAddr, "consul", "localhost:8500", "Consul agent address")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.Parse()

	logger := logging.New(serviceName, logLevel)
	logger.Info("starting controller", "port", port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Connect to Redis ---
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// --- Register service with Consul ---
	registry, err := consul.NewRegistry(consulAddr)
	if err != nil {
		logger.Error("failed to connect to Consul", "error", err)
		os.Exit(1)
	}
	hostname, _ := os.Hostname()
	instanceID := discovery.GenerateInstanceID(serviceName)
	if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("%s:%d", hostname, port)); err != nil {
		logger.Error("failed to register in Consul", "error", err)
		os.Exit(1)
	}
	defer registry.Deregister(context.Background(), instanceID, serviceName)

	go discovery.Heartbeat(ctx, registry, instanceID, serviceName, discovery.HeartbeatInterval, func(err error) {
		logger.Warn("failed to report healthy state", "error", err)
	})

	res, err := resolver.New(registry, redisClient, 30*time.Second, logger)
	if err != nil {
		logger.Error("failed to build resolver", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	newGateway(res, logger).register(mux)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	logger.Info("controller listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
	}
}

// URLResolver finds the base URL of a service.
type URLResolver interface {
	URL(ctx context.Context, service string) (string, error)
	Forget(ctx context.Context, service string)
}

type gateway struct {
	resolver URLResolver
	client   *http.Client
	logger   hclog.Logger
}

func newGateway(res URLResolver, logger hclog.Logger) *gateway {
	return &gateway{resolver: res, client: cleanhttp.DefaultPooledClient(), logger: logger.Named("proxy")}
}

func (g *gateway) register(mux *http.ServeMux) {
	mux.Handle("/", http.FileServer(http.Dir("./static")))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/simulator-url", func(w http.ResponseWriter, r *http.Request) {
		url, err := g.resolver.URL(r.Context(), "simulator")
		if err != nil {
			http.Error(w, "Simulator service not found", http.StatusServiceUnavailable)
			g.logger.Warn("lookup failed", "service", "simulator", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"url": %q}`, url)
	})

	for _, path := range []string{"/positions", "/trails", "/ribbon", "/sun"} {
		mux.HandleFunc(path, g.proxyToService("simulator", path))
	}
	mux.HandleFunc("/bodies", g.proxyToService("body-catalog", "/bodies"))
}

// --------------------
// Proxy helpers
// --------------------
func (g *gateway) proxyToService(service, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL, err := g.resolver.URL(r.Context(), service)
		if err != nil {
			http.Error(w, "Failed to locate service", http.StatusServiceUnavailable)
			g.logger.Warn("lookup failed", "service", service, "error", err)
			return
		}

		target := baseURL + path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
		if err != nil {
			http.Error(w, "Failed to build request", http.StatusInternalServerError)
			return
		}
		req.Header = r.Header.Clone()

		resp, err := g.client.Do(req)
		if err != nil {
			g.resolver.Forget(r.Context(), service)
			http.Error(w, "Failed to reach service", http.StatusBadGateway)
			g.logger.Warn("proxy failed", "service", service, "error", err)
			return
		}
		defer resp.Body.Close()

		for k, v := range resp.Header {
			w.Header()[k] = v
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			g.logger.Warn("failed to forward response", "service", service, "error", err)
		}
	}
}
