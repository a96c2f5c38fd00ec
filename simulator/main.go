package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"orrery/pkg/discovery/consul"
	"orrery/pkg/discovery/resolver"
	"orrery/pkg/logging"
	discovery "orrery/pkg/registry"
	"orrery/simulator/config"
	"orrery/simulator/events"
	"orrery/simulator/handler"
	"orrery/simulator/internal/httpclient"
	"orrery/simulator/metrics"
	"orrery/simulator/simulation"
)

const serviceName = "simulator"

func main() {
	var (
		port        int
		configPath  string
		redisAddr   string
		consulAddr  string
		fromCatalog bool
		logLevel    string
	)
	flag.IntVar(&port, "port", 8081, "API handler port")
	flag.StringVar(&configPath, "config", "", "Scene config file (YAML)")
	flag.StringVar(&redisAddr, "redis", "", "Redis address (overrides config)")
	flag.StringVar(&consulAddr, "consul", "", "Consul address (overrides config)")
	flag.BoolVar(&fromCatalog, "catalog", false, "Load bodies from the body catalog service")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.Parse()

	logger := logging.New(serviceName, logLevel)
	if err := run(port, configPath, redisAddr, consulAddr, fromCatalog, logger); err != nil {
		logger.Error("simulator stopped", "error", err)
		os.Exit(1)
	}
}

func run(port int, configPath, redisAddr, consulAddr string, fromCatalog bool, logger hclog.Logger) (err error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	if consulAddr != "" {
		cfg.ConsulAddr = consulAddr
	}
	logger.Info("starting simulator", "port", port, "bodies", len(cfg.Bodies), "tick", cfg.Tick, "time_scale", cfg.TimeScale)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Redis (retry until ready)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	for {
		if err := redisClient.Ping(ctx).Err(); err == nil {
			break
		}
		logger.Warn("redis not ready, retrying", "addr", cfg.RedisAddr, "in", "2s")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	registry, err := consul.NewRegistry(cfg.ConsulAddr)
	if err != nil {
		return fmt.Errorf("connect to Consul: %w", err)
	}

	specs := cfg.Specs()
	if fromCatalog {
		res, err := resolver.New(registry, redisClient, 5*time.Minute, logger)
		if err != nil {
			return err
		}
		specs, err = httpclient.New(res).FetchBodies(ctx)
		if err != nil {
			return err
		}
	}

	// Initialize simulation state
	sys := simulation.New(cfg.NewStar(), simulation.TrailOptions{Density: cfg.Trail.Density, Width: cfg.Trail.Width}, logger)
	if err := sys.BuildScene(specs, simulation.SpinOptions{FPS: cfg.Star.SpinFPS, Frames: cfg.Star.SpinFrames}); err != nil {
		logger.Warn("scene built with errors", "error", err)
	}
	logScene(logger, sys)

	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("get hostname: %w", err)
	}
	instanceID := discovery.GenerateInstanceID(serviceName)
	if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("%s:%d", hostname, port)); err != nil {
		return fmt.Errorf("register in Consul: %w", err)
	}
	defer func() {
		if derr := registry.Deregister(context.Background(), instanceID, serviceName); derr != nil {
			err = multierror.Append(err, derr).ErrorOrNil()
		}
	}()
	go discovery.Heartbeat(ctx, registry, instanceID, serviceName, discovery.HeartbeatInterval, func(err error) {
		logger.Warn("failed to report healthy state", "error", err)
	})

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	publisher := events.NewPublisher(redisClient, cfg.PublishRate)

	loop := &simulation.Loop{
		System:    sys,
		Tick:      cfg.Tick,
		TimeScale: cfg.TimeScale,
		OnFrame: func(took time.Duration, err error) {
			collector.RecordStep(took, err)
			if err != nil {
				logger.Error("frame failed", "error", err)
				return
			}
			snap := sys.Snapshot()
			collector.Observe(snap)
			outcome, err := publisher.Publish(ctx, snap)
			collector.RecordEvent(outcome)
			if err != nil {
				logger.Warn("failed to publish frame", "channel", events.StepChannel, "error", err)
			}
		},
	}
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(ctx)
	}()

	mux := http.NewServeMux()
	handler.New(sys, logger).Register(mux)
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("simulator HTTP server listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			stop()
			<-loopDone
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var result *multierror.Error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, err)
	}
	<-loopDone
	return result.ErrorOrNil()
}

func logScene(logger hclog.Logger, sys *simulation.System) {
	for _, b := range sys.Snapshot().Bodies {
		logger.Info("body in orbit", "name", b.Name, "tag", b.Tag, "radius", b.Radius,
			"period", b.Period, "phase", b.Phase)
	}
	if len(sys.Handles()) == 0 {
		logger.Warn("scene has no bodies")
	}
}
