package catalog

import (
	"context"

	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
)

// Source is where products come from.
type Source interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (models.Product, error)
}

// Service reads products through an optional cache.
type Service struct {
	src   Source
	cache *Cache
	log   logging.Logger
}

// NewService builds a Service. cache may be nil.
func NewService(src Source, cache *Cache, log logging.Logger) *Service {
	return &Service{src: src, cache: cache, log: log}
}

// Products returns the full catalog.
func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		products, ok, err := s.cache.Products(ctx)
		if err != nil {
			s.log.Warn(ctx, "catalog cache read failed", "error", err)
		} else if ok {
			return products, nil
		}
	}

	products, err := s.src.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.StoreProducts(ctx, products); err != nil {
			s.log.Warn(ctx, "catalog cache write failed", "error", err)
		}
	}
	return products, nil
}

// Product returns one product, served from the cached list when present.
func (s *Service) Product(ctx context.Context, id int64) (models.Product, error) {
	if s.cache != nil {
		products, ok, err := s.cache.Products(ctx)
		if err != nil {
			s.log.Warn(ctx, "catalog cache read failed", "error", err)
		}
		if ok {
			for _, p := range products {
				if p.ID == id {
					return p, nil
				}
			}
		}
	}
	return s.src.Get(ctx, id)
}
