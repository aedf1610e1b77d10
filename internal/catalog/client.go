// Package catalog fetches the product list from the public catalog endpoint
// and optionally caches it in Redis.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hongminglow/storefront/internal/models"
)

var (
	// ErrNotFound is returned for an unknown product id.
	ErrNotFound = errors.New("product not found")
	// ErrUpstream wraps transport failures and unexpected catalog responses.
	ErrUpstream = errors.New("catalog unavailable")
)

// Client talks to a fakestoreapi-compatible endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client rooted at baseURL (without trailing slash).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// List returns every product.
func (c *Client) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns one product. The public endpoint answers unknown ids with an
// empty 200 body, which is reported as ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (models.Product, error) {
	var product *models.Product
	if err := c.getJSON(ctx, "/products/"+strconv.FormatInt(id, 10), &product); err != nil {
		return models.Product{}, err
	}
	if product == nil {
		return models.Product{}, ErrNotFound
	}
	return *product, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s returned %d", ErrUpstream, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if len(body) == 0 {
		body = []byte("null")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return nil
}
