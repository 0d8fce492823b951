package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	productCacheTTL   = 5 * time.Minute
	cartCountCacheTTL = time.Minute
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetProduct returns a cached product, or (nil, nil) on a cache miss.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	key := fmt.Sprintf("product:%d", productID)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("decode cached product: %w", err)
	}
	return &product, nil
}

// SetProduct caches a product with a short TTL
func (c *Client) SetProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	key := fmt.Sprintf("product:%d", product.ID)
	return c.rdb.Set(ctx, key, data, productCacheTTL).Err()
}

// InvalidateProducts drops cached products, typically after a checkout
// decrements their stock.
func (c *Client) InvalidateProducts(ctx context.Context, productIDs ...int64) error {
	if len(productIDs) == 0 {
		return nil
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = fmt.Sprintf("product:%d", id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// GetCartCount returns the cached cart count, or (-1, nil) on a cache miss.
func (c *Client) GetCartCount(ctx context.Context, userID int64) (int, error) {
	key := fmt.Sprintf("cartcount:%d", userID)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return -1, fmt.Errorf("decode cached cart count: %w", err)
	}
	return count, nil
}

// SetCartCount caches the user's cart count
func (c *Client) SetCartCount(ctx context.Context, userID int64, count int) error {
	key := fmt.Sprintf("cartcount:%d", userID)
	return c.rdb.Set(ctx, key, count, cartCountCacheTTL).Err()
}

// InvalidateCartCount drops the cached cart count after any cart mutation
func (c *Client) InvalidateCartCount(ctx context.Context, userID int64) error {
	key := fmt.Sprintf("cartcount:%d", userID)
	return c.rdb.Del(ctx, key).Err()
}
