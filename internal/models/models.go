package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Quantity is the available stock;
// it is only ever decremented inside the checkout transaction.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Category    string          `db:"category" json:"category"`
	Image       string          `db:"image" json:"image"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// CartItem binds a user, a product and a desired quantity prior to purchase.
// (user_id, product_id) is unique; quantity is always >= 1.
type CartItem struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CartLine is a cart item joined with the current product state. Price,
// title and image reflect the live catalog, not a frozen copy; snapshotting
// happens only when an order is placed.
type CartLine struct {
	CartItem
	Product Product `json:"product"`
}

// Order represents a placed order.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Items       []OrderItem     `db:"-" json:"items,omitempty"`
}

// OrderItem is an immutable snapshot of a purchased line. Price, title and
// image are copied at purchase time so later catalog edits never change
// historical orders.
type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Title     string          `db:"title" json:"title"`
	Image     string          `db:"image" json:"image"`
}

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPlaced = "placed"
)
