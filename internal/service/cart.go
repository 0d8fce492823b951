package service

import (
	"context"
	"errors"

	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartService owns the per-user cart. Stock is deliberately not checked when
// adding or updating items; it is only enforced at checkout.
type CartService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store, redis *redisclient.Client) *CartService {
	return &CartService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// AddItem adds one unit of a product to the user's cart, incrementing the
// existing row on a repeat add.
func (cs *CartService) AddItem(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	item, err := cs.store.AddCartItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	util.CartItemsAddedTotal.Inc()
	cs.invalidateCount(ctx, userID)
	return item, nil
}

// SetQuantity overwrites the quantity of a cart item the user owns. A
// quantity below 1 is rejected; callers remove the item instead.
func (cs *CartService) SetQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.SetQuantity")
	defer span.End()

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	return cs.store.UpdateCartItemQuantity(ctx, userID, itemID, quantity)
}

// Remove deletes a cart item the user owns
func (cs *CartService) Remove(ctx context.Context, userID, itemID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.Remove")
	defer span.End()

	if err := cs.store.DeleteCartItem(ctx, userID, itemID); err != nil {
		return err
	}

	util.CartItemsRemovedTotal.Inc()
	cs.invalidateCount(ctx, userID)
	return nil
}

// List returns the user's cart entries joined with the current catalog state
func (cs *CartService) List(ctx context.Context, userID int64) ([]models.CartLine, error) {
	ctx, span := util.StartSpan(ctx, "CartService.List")
	defer span.End()

	return cs.store.GetCartLines(ctx, userID)
}

// Count returns the number of cart entries, served from cache when warm
func (cs *CartService) Count(ctx context.Context, userID int64) (int, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Count")
	defer span.End()

	cached, err := cs.redis.GetCartCount(ctx, userID)
	if err != nil {
		cs.logger.Warn("Cart count cache read failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
	if cached >= 0 {
		return cached, nil
	}

	count, err := cs.store.CountCartItems(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := cs.redis.SetCartCount(ctx, userID, count); err != nil {
		cs.logger.Warn("Cart count cache write failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
	return count, nil
}

func (cs *CartService) invalidateCount(ctx context.Context, userID int64) {
	if err := cs.redis.InvalidateCartCount(ctx, userID); err != nil {
		cs.logger.Warn("Cart count cache invalidation failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}
