package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orrery/simulator/simulation"
)

func TestCollector(t *testing.T) {
	m := NewCollector(prometheus.NewRegistry())

	m.RecordStep(time.Millisecond, nil)
	m.RecordStep(time.Millisecond, nil)
	m.RecordStep(time.Millisecond, errors.New("bad dt"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepErrors))

	m.RecordEvent("sent")
	m.RecordEvent("dropped")
	m.RecordEvent("dropped")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.published.WithLabelValues("dropped")))

	m.Observe(simulation.Snapshot{Bodies: []simulation.BodySnapshot{{Name: "hg", Phase: 1.5, TrailLen: 12}}})
	assert.Equal(t, 1.5, testutil.ToFloat64(m.phase.WithLabelValues("hg")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.trailSamples.WithLabelValues("hg")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "orrery_frames_total 2")
}
