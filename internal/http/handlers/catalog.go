package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/hongminglow/storefront/internal/catalog"
	"github.com/hongminglow/storefront/internal/http/respond"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
)

// ProductService lists catalog products.
type ProductService interface {
	Products(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id int64) (models.Product, error)
}

// CatalogHandler serves the product list and product details.
type CatalogHandler struct {
	products ProductService
	log      logging.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(products ProductService, log logging.Logger) *CatalogHandler {
	return &CatalogHandler{products: products, log: log}
}

// Register attaches catalog routes to the mux.
func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/products", h.handleList)
	mux.HandleFunc("/products/{id}", h.handleGet)
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	products, err := h.products.Products(r.Context())
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, "ok", products)
}

func (h *CatalogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := h.products.Product(r.Context(), id)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, "ok", product)
}

func (h *CatalogHandler) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		respond.Error(w, r, http.StatusNotFound, "product not found")
		return
	}
	h.log.Error(r.Context(), "catalog request failed", "error", err)
	respond.Error(w, r, http.StatusBadGateway, "catalog unavailable")
}
