package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"

	"orrery/simulator/model"
)

// CatalogService is the registry name of the body catalog.
const CatalogService = "body-catalog"

// URLResolver finds the base URL of a service.
type URLResolver interface {
	URL(ctx context.Context, service string) (string, error)
	Forget(ctx context.Context, service string)
}

type Client struct {
	resolver URLResolver
	http     *http.Client
}

func New(resolver URLResolver) *Client {
	return &Client{resolver: resolver, http: cleanhttp.DefaultPooledClient()}
}

func (c *Client) fetchJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// FetchBodies returns every body spec stored in the catalog.
func (c *Client) FetchBodies(ctx context.Context) ([]model.BodySpec, error) {
	baseURL, err := c.resolver.URL(ctx, CatalogService)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", CatalogService, err)
	}
	var bodies []model.BodySpec
	if err := c.fetchJSON(ctx, baseURL+"/bodies", &bodies); err != nil {
		c.resolver.Forget(ctx, CatalogService)
		return nil, fmt.Errorf("fetch bodies: %w", err)
	}
	return bodies, nil
}
