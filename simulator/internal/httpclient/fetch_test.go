package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orrery/simulator/model"
)

type staticResolver struct {
	url    string
	forgot []string
}

func (s *staticResolver) URL(context.Context, string) (string, error) { return s.url, nil }
func (s *staticResolver) Forget(_ context.Context, service string)    { s.forgot = append(s.forgot, service) }

func TestFetchBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bodies" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]model.BodySpec{model.NewBody("hg", 14, 0, 2, model.Rocky, "")})
	}))
	defer srv.Close()

	res := &staticResolver{url: srv.URL}
	bodies, err := New(res).FetchBodies(context.Background())
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	assert.Equal(t, "hg", bodies[0].Name)
	assert.Equal(t, 14.0, bodies[0].OrbitRadius)
	assert.Empty(t, res.forgot)
}

func TestFetchBodiesForgetsOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := &staticResolver{url: srv.URL}
	_, err := New(res).FetchBodies(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{CatalogService}, res.forgot)
}
