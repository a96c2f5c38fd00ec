package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"orrery/database/store"
	"orrery/pkg/discovery/consul"
	"orrery/pkg/logging"
	discovery "orrery/pkg/registry"
	"orrery/simulator/model"
)

const serviceName = "body-catalog"

func main() {
	var (
		port       int
		dsn        string
		consulAddr string
		logLevel   string
	)
	flag.IntVar(&port, "port", 8084, "Body catalog service port")
	flag.StringVar(&dsn, "db", "./database/bodies.db", "SQLite database path")
	flag.StringVar(&consulAddr, "consul", "localhost:8500", "Consul agent address")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.Parse()

	logger := logging.New(serviceName, logLevel)
	logger.Info("starting body catalog", "port", port, "db", dsn)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	registry, err := consul.NewRegistry(consulAddr)
	if err != nil {
		logger.Error("failed to connect to Consul", "error", err)
		os.Exit(1)
	}
	instanceID := discovery.GenerateInstanceID(serviceName)
	hostname, _ := os.Hostname()
	if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("%s:%d", hostname, port)); err != nil {
		logger.Error("failed to register in Consul", "error", err)
		os.Exit(1)
	}
	defer registry.Deregister(context.Background(), instanceID, serviceName)

	go discovery.Heartbeat(ctx, registry, instanceID, serviceName, discovery.HeartbeatInterval, func(err error) {
		logger.Warn("failed to report healthy state", "error", err)
	})

	mux := http.NewServeMux()
	newAPI(st, logger).register(mux)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	logger.Info("body catalog listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
	}
}

type api struct {
	store  *store.Store
	logger hclog.Logger
}

func newAPI(st *store.Store, logger hclog.Logger) *api {
	return &api{store: st, logger: logger.Named("http")}
}

func (a *api) register(mux *http.ServeMux) {
	mux.HandleFunc("/bodies", a.handleBodies)
	mux.HandleFunc("/bodies/", a.handleBodyByName)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (a *api) handleBodies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bodies, err := a.store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		a.writeJSON(w, http.StatusOK, bodies)

	case http.MethodPost:
		var b model.BodySpec
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		created, err := a.store.Create(r.Context(), b)
		switch {
		case errors.Is(err, store.ErrExists):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.logger.Info("body created", "name", created.Name, "radius", created.OrbitRadius)
		a.writeJSON(w, http.StatusCreated, created)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *api) handleBodyByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/bodies/")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "Invalid name", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		b, err := a.store.Get(r.Context(), name)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		a.writeJSON(w, http.StatusOK, b)

	case http.MethodDelete:
		err := a.store.Delete(r.Context(), name)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("failed to encode response", "error", err)
	}
}
