package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orrery/simulator/model"
	"orrery/simulator/simulation"
	"orrery/simulator/trail"
)

func newServer(t *testing.T) (*httptest.Server, *simulation.System) {
	t.Helper()
	sys := simulation.New(model.NewStar("sun", 16, 6672.59*0.07), simulation.TrailOptions{Density: 1, Width: 0.1}, nil)
	require.NoError(t, sys.BuildScene([]model.BodySpec{
		model.NewBody("hg", 14, 0, 2, model.Rocky, "#73542e"),
		model.NewBody("zeus", 140, 1, 6, model.Gaseous, ""),
	}, simulation.SpinOptions{FPS: 30, Frames: 60}))

	h := New(sys, nil)
	h.StreamInterval = 5 * time.Millisecond
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, sys
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestStepAndPositions(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/step?dt=2", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap simulation.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/positions", &snap))
	assert.Equal(t, uint64(1), snap.Frame)
	require.Len(t, snap.Bodies, 2)
	assert.Equal(t, "hg", snap.Bodies[0].Name)
	assert.Equal(t, 1, snap.Bodies[0].TrailLen)
	assert.InDelta(t, 14, snap.Bodies[0].Position.PlanarLength(), 1e-9)
}

func TestStepRejectsBadInput(t *testing.T) {
	srv, _ := newServer(t)
	for _, q := range []string{"?dt=-1", "?dt=abc"} {
		resp, err := http.Post(srv.URL+"/step"+q, "", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
	resp, err := http.Get(srv.URL + "/step")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestTrailsAndRibbon(t *testing.T) {
	srv, sys := newServer(t)
	for range 3 {
		require.NoError(t, sys.Step(0.5))
	}

	var all []trailResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/trails", &all))
	assert.Len(t, all, 2)

	var one []trailResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/trails?body=zeus", &one))
	require.Len(t, one, 1)
	assert.Len(t, one[0].Samples, 3)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/trails?body=pluto", &one))

	var rb trail.Ribbon
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ribbon?body=hg", &rb))
	assert.Len(t, rb.Vertices, 6)
	assert.Len(t, rb.Indices, 12)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/ribbon?body=pluto", &rb))
}

func TestSun(t *testing.T) {
	srv, sys := newServer(t)
	require.NoError(t, sys.Step(0.5))
	var star simulation.StarSnapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sun", &star))
	assert.Equal(t, "sun", star.Name)
	assert.Greater(t, star.Rotation, 0.0)
}

func TestStream(t *testing.T) {
	srv, sys := newServer(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", nil)
	require.NoError(t, err)
	defer conn.Close()

	var first simulation.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Len(t, first.Bodies, 2)

	require.NoError(t, sys.Step(1))
	require.Eventually(t, func() bool {
		var snap simulation.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			return false
		}
		return snap.Frame >= 1
	}, time.Second, time.Millisecond)
}
