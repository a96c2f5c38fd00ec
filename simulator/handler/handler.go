package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"orrery/simulator/model"
	"orrery/simulator/orbit"
	"orrery/simulator/simulation"
)

type Handler struct {
	System *simulation.System
	// StreamInterval is the period between websocket snapshots.
	StreamInterval time.Duration

	logger   hclog.Logger
	upgrader websocket.Upgrader
}

func New(sys *simulation.System, logger hclog.Logger) *Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Handler{
		System:         sys,
		StreamInterval: 100 * time.Millisecond,
		logger:         logger.Named("http"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts the handlers on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/positions", h.GetPositionsHandler)
	mux.HandleFunc("/trails", h.GetTrailsHandler)
	mux.HandleFunc("/ribbon", h.GetRibbonHandler)
	mux.HandleFunc("/sun", h.GetSunHandler)
	mux.HandleFunc("/step", h.StepHandler)
	mux.HandleFunc("/stream", h.StreamHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (h *Handler) GetPositionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	h.writeJSON(w, h.System.Snapshot())
}

type trailResponse struct {
	Name    string       `json:"name"`
	Samples []model.Vec3 `json:"samples"`
}

// GetTrailsHandler returns the trail of ?body=name, or of every body.
func (h *Handler) GetTrailsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	name := r.URL.Query().Get("body")

	var out []trailResponse
	for _, b := range h.System.Snapshot().Bodies {
		if name != "" && b.Name != name {
			continue
		}
		hd, ok := h.System.Lookup(b.Name)
		if !ok {
			continue
		}
		samples, err := h.System.Trail(hd)
		if err != nil {
			continue
		}
		out = append(out, trailResponse{Name: b.Name, Samples: samples})
	}
	if name != "" && len(out) == 0 {
		http.Error(w, "Unknown body", http.StatusNotFound)
		return
	}
	h.writeJSON(w, out)
}

func (h *Handler) GetRibbonHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	hd, ok := h.System.Lookup(r.URL.Query().Get("body"))
	if !ok {
		http.Error(w, "Unknown body", http.StatusNotFound)
		return
	}
	rb, err := h.System.Ribbon(hd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, rb)
}

func (h *Handler) GetSunHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	h.writeJSON(w, h.System.Snapshot().Star)
}

// StepHandler advances the whole scene by ?dt seconds (default one 60 Hz
// frame).
func (h *Handler) StepHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)
		return
	}
	dt := 1.0 / 60
	if s := r.URL.Query().Get("dt"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			http.Error(w, "Invalid dt", http.StatusBadRequest)
			return
		}
		dt = v
	}
	if err := h.System.Step(dt); err != nil {
		if errors.Is(err, orbit.ErrInvalidTimestep) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write([]byte("OK"))
}

// StreamHandler pushes a snapshot every StreamInterval until the client
// goes away.
func (h *Handler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t := time.NewTicker(h.StreamInterval)
	defer t.Stop()
	for {
		if err := conn.WriteJSON(h.System.Snapshot()); err != nil {
			h.logger.Debug("stream closed", "error", err)
			return
		}
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-t.C:
		}
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}
