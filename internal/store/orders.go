package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"storefront/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// PlaceOrderItem is a requested order line. Only the product ID and quantity
// are trusted; price, title and image are re-read from the locked product
// rows inside the transaction.
type PlaceOrderItem struct {
	ProductID int64
	Quantity  int
}

// PlaceOrder converts the request into a committed order in one transaction:
// lock and validate every product, decrement stock, insert the order and its
// item snapshots, clear the user's whole cart. Any failure rolls the entire
// thing back; no partial effects ever persist.
func (s *Store) PlaceOrder(ctx context.Context, userID int64, items []PlaceOrderItem) (*models.Order, error) {
	// Lock rows in product-id order so two concurrent checkouts over the
	// same products cannot deadlock.
	sorted := make([]PlaceOrderItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	var order *models.Order

	err := s.WithTx(ctx, sql.LevelReadCommitted, func(tx *sqlx.Tx) error {
		type lockedProduct struct {
			Price decimal.Decimal
			Title string
			Image string
		}
		snapshots := make(map[int64]lockedProduct, len(sorted))
		totalAmount := decimal.Zero

		// Validation phase: every product is locked and checked before any
		// mutation, so the first violation aborts with nothing changed.
		for _, item := range sorted {
			var (
				price decimal.Decimal
				title string
				image string
				stock int
			)
			err := tx.QueryRowxContext(ctx,
				`SELECT price, title, image, quantity
				 FROM products
				 WHERE id = $1
				 FOR UPDATE`,
				item.ProductID).Scan(&price, &title, &image, &stock)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
			}
			if err != nil {
				return fmt.Errorf("lock product %d: %w", item.ProductID, err)
			}

			if stock < item.Quantity {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrInsufficientStock)
			}

			snapshots[item.ProductID] = lockedProduct{Price: price, Title: title, Image: image}
			totalAmount = totalAmount.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		// Mutation phase. The guard enforces non-negative stock in the
		// statement itself and catches a request listing the same product
		// twice, which passes per-line validation above.
		for _, item := range sorted {
			result, err := tx.ExecContext(ctx,
				`UPDATE products
				 SET quantity = quantity - $1
				 WHERE id = $2 AND quantity >= $1`,
				item.Quantity, item.ProductID)
			if err != nil {
				return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrInsufficientStock)
			}
		}

		var created models.Order
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO orders (user_id, total_amount, status)
			 VALUES ($1, $2, $3)
			 RETURNING id, user_id, total_amount, status, created_at`,
			userID, totalAmount, models.OrderStatusPlaced).StructScan(&created)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		created.Items = make([]models.OrderItem, 0, len(sorted))
		for _, item := range sorted {
			snap := snapshots[item.ProductID]
			var orderItem models.OrderItem
			err := tx.QueryRowxContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, price, title, image)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 RETURNING *`,
				created.ID, item.ProductID, item.Quantity, snap.Price, snap.Title, snap.Image).StructScan(&orderItem)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			created.Items = append(created.Items, orderItem)
		}

		// Checkout clears the whole cart, not just the ordered products.
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order = &created
		return nil
	})

	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByID retrieves an order with its items, scoped to the owner.
func (s *Store) GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND user_id = $2", orderID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &order.Items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves the user's orders newest first, items attached.
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]int64, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for i := range orders {
		orderIDs[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	query, args, err := sqlx.In("SELECT * FROM order_items WHERE order_id IN (?) ORDER BY id", orderIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	for _, item := range items {
		o := byID[item.OrderID]
		o.Items = append(o.Items, item)
	}
	return orders, nil
}
