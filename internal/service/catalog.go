package service

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// CatalogService is the read-only view of the product catalog. Single-product
// reads go through a Redis cache with the database as fallback; the cache is
// never authoritative for stock checks, which happen only inside the checkout
// transaction.
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// GetProduct retrieves a single product by ID
func (cs *CatalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	cached, err := cs.redis.GetProduct(ctx, productID)
	if err != nil {
		cs.logger.Warn("Product cache read failed, falling back to DB",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	if cached != nil {
		util.CatalogCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	util.CatalogCacheHits.WithLabelValues("miss").Inc()

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.SetProduct(ctx, product); err != nil {
		cs.logger.Warn("Product cache write failed",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}

	return product, nil
}

// ListProducts retrieves all products
func (cs *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	return cs.store.GetProducts(ctx)
}

// SearchProducts returns products matching the query case-insensitively over
// title, description and category. No match is an empty list, not an error.
func (cs *CatalogService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SearchProducts")
	defer span.End()

	return cs.store.SearchProducts(ctx, query)
}
