package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/catalog"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
)

type fakeProducts struct {
	list []models.Product
	err  error
}

func (f fakeProducts) Products(context.Context) ([]models.Product, error) {
	return f.list, f.err
}

func (f fakeProducts) Product(_ context.Context, id int64) (models.Product, error) {
	if f.err != nil {
		return models.Product{}, f.err
	}
	for _, p := range f.list {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, catalog.ErrNotFound
}

func serveCatalog(t *testing.T, svc ProductService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewCatalogHandler(svc, logging.Nop()).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func getEnvelope(t *testing.T, url string) (int, envelope) {
	t.Helper()
	return getWithToken(t, url, "")
}

func TestCatalog_List(t *testing.T) {
	ts := serveCatalog(t, fakeProducts{list: []models.Product{{ID: 1, Title: "Backpack", Price: 109.95}}})

	status, env := getEnvelope(t, ts.URL+"/products")
	require.Equal(t, http.StatusOK, status)
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Backpack", products[0].Title)
}

func TestCatalog_Get(t *testing.T) {
	ts := serveCatalog(t, fakeProducts{list: []models.Product{{ID: 1, Title: "Backpack"}}})

	status, _ := getEnvelope(t, ts.URL+"/products/1")
	assert.Equal(t, http.StatusOK, status)

	status, _ = getEnvelope(t, ts.URL+"/products/2")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = getEnvelope(t, ts.URL+"/products/abc")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCatalog_UpstreamFailure(t *testing.T) {
	ts := serveCatalog(t, fakeProducts{err: errors.Join(catalog.ErrUpstream, errors.New("503"))})

	status, env := getEnvelope(t, ts.URL+"/products")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "catalog unavailable", env.Message)
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), nil).Register(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	status, env := getEnvelope(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"ok"`)

	mux = http.NewServeMux()
	NewHealthHandler(time.Now(), failingPinger{}).Register(mux)
	ts2 := httptest.NewServer(mux)
	defer ts2.Close()

	status, _ = getEnvelope(t, ts2.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }
