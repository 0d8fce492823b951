package store

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/models"
)

// AddCartItem adds one unit of a product to the user's cart. A repeat add
// increments the existing row instead of creating a second one.
func (s *Store) AddCartItem(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	var item models.CartItem
	err = s.db.GetContext(ctx, &item,
		`INSERT INTO cart_items (user_id, product_id, quantity)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + 1, updated_at = NOW()
		 RETURNING *`,
		userID, productID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItemQuantity overwrites the quantity of a cart item owned by the
// user. The caller must reject quantities below 1 before getting here.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		`UPDATE cart_items
		 SET quantity = $1, updated_at = NOW()
		 WHERE id = $2 AND user_id = $3
		 RETURNING *`,
		quantity, itemID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCartItem removes a cart item owned by the user. A row that is absent
// or owned by someone else reports not found either way.
func (s *Store) DeleteCartItem(ctx context.Context, userID, itemID int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// GetCartLines returns the user's cart joined with the current product
// state. Price, title and image are live catalog values.
func (s *Store) GetCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		        p.id, p.title, p.description, p.category, p.image, p.price, p.quantity, p.created_at
		 FROM cart_items c
		 JOIN products p ON p.id = c.product_id
		 WHERE c.user_id = $1
		 ORDER BY c.created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		err := rows.Scan(
			&line.ID, &line.UserID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
			&line.Product.ID, &line.Product.Title, &line.Product.Description, &line.Product.Category,
			&line.Product.Image, &line.Product.Price, &line.Product.Quantity, &line.Product.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// CountCartItems returns the number of cart rows for the user.
func (s *Store) CountCartItems(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM cart_items WHERE user_id = $1", userID)
	return count, err
}
