package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/commerce-platform/internal/cache"
	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/repository"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// Cache keys. "all" and "instock" are list snapshots; the id key holds one
// product. Every write invalidates the keys whose result could include the
// written product before the write reports success.
const (
	cacheKeyAll     = "products:all"
	cacheKeyInStock = "products:instock"
)

func cacheKeyProduct(id string) string {
	return "product:" + id
}

// ProductService exposes cached product reads and the stock decrement
// contract over the repository.
type ProductService struct {
	repo   repository.ProductRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewProductService builds the service.
func NewProductService(repo repository.ProductRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, cache: c, ttl: ttl, logger: logger}
}

// GetByID returns one product, reading through the cache on miss.
func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	key := cacheKeyProduct(id)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var product domain.Product
		if err := json.Unmarshal(cached, &product); err == nil {
			return &product, nil
		}
	}

	// singleflight collapses concurrent misses into one store read.
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		product, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cachePut(ctx, key, product)
		return product, nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}
	return value.(*domain.Product), nil
}

// GetAll returns every product, reading through the cache on miss.
func (s *ProductService) GetAll(ctx context.Context) ([]domain.Product, error) {
	return s.listThrough(ctx, cacheKeyAll, s.repo.GetAll)
}

// GetInStock returns products with remaining stock, reading through the
// cache on miss.
func (s *ProductService) GetInStock(ctx context.Context) ([]domain.Product, error) {
	return s.listThrough(ctx, cacheKeyInStock, s.repo.GetInStock)
}

// Search queries by name. Search bypasses the cache; its result space is
// unbounded and would defeat the keyed invalidation rules.
func (s *ProductService) Search(ctx context.Context, name string) ([]domain.Product, error) {
	return s.repo.SearchByName(ctx, name)
}

// Create persists a new product and evicts the list snapshots.
func (s *ProductService) Create(ctx context.Context, product *domain.Product) error {
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	s.logger.Info("product created", zap.String("id", product.ID), zap.String("name", product.Name))
	return s.cache.Invalidate(ctx, cacheKeyAll, cacheKeyInStock)
}

// Update applies new attributes and refreshes the id-keyed cache entry while
// evicting the list snapshots, so a read immediately after never sees the
// pre-update state.
func (s *ProductService) Update(ctx context.Context, id string, input *domain.Product) (*domain.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.StockQuantity = input.StockQuantity
	existing.Category = input.Category
	existing.ImageURL = input.ImageURL

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.cachePut(ctx, cacheKeyProduct(id), existing)
	if err := s.cache.Invalidate(ctx, cacheKeyAll, cacheKeyInStock); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes the product and evicts every key that could include it.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return err
	}
	s.logger.Info("product deleted", zap.String("id", id))
	return s.cache.Invalidate(ctx, cacheKeyProduct(id), cacheKeyAll, cacheKeyInStock)
}

// DecreaseStock applies the conditional decrement. It returns false without
// mutating when stock does not cover the quantity; the check and the write
// are one atomic repository operation, so concurrent calls on the same id
// never drive stock negative.
func (s *ProductService) DecreaseStock(ctx context.Context, id string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, apperrors.NewValidationError("quantity must be positive", map[string]any{"quantity": quantity})
	}

	applied, err := s.repo.DecreaseStock(ctx, id, quantity)
	if err != nil {
		return false, err
	}
	if !applied {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, apperrors.NewNotFound("product", map[string]any{"id": id})
			}
			return false, err
		}
		s.logger.Warn("stock decrement rejected", zap.String("id", id), zap.Int("quantity", quantity))
		return false, nil
	}

	// The stock count appears in all three snapshots.
	if err := s.cache.Invalidate(ctx, cacheKeyProduct(id), cacheKeyAll, cacheKeyInStock); err != nil {
		return true, err
	}
	s.logger.Info("stock decreased", zap.String("id", id), zap.Int("quantity", quantity))
	return true, nil
}

func (s *ProductService) listThrough(ctx context.Context, key string, fetch func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	if cached, ok := s.cacheGet(ctx, key); ok {
		var products []domain.Product
		if err := json.Unmarshal(cached, &products); err == nil {
			return products, nil
		}
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		products, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.cachePut(ctx, key, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.Product), nil
}

// cacheGet treats cache failures as misses; the store remains the source of
// truth for reads.
func (s *ProductService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if ok {
		s.logger.Debug("cache hit", zap.String("key", key))
	}
	return value, ok
}

func (s *ProductService) cachePut(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Put(ctx, key, payload, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
