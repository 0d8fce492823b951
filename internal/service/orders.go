package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrEmptyOrder = errors.New("order must contain at least one item")

// OrderService handles checkout. The actual transaction lives in the store;
// this layer validates the request, records metrics and publishes the
// OrderPlaced event after commit.
type OrderService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, redis *redisclient.Client, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// PlaceOrderRequest is the checkout payload. Price, title, image and
// totalAmount are accepted for wire compatibility but only productId and
// quantity are trusted; the engine snapshots authoritative values from the
// catalog inside the transaction.
type PlaceOrderRequest struct {
	Items       []PlaceOrderItemRequest `json:"items" binding:"required,min=1"`
	TotalAmount decimal.Decimal         `json:"totalAmount"`
}

// PlaceOrderItemRequest is one requested order line
type PlaceOrderItemRequest struct {
	ProductID int64           `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
}

// ValidateRequest checks the request shape before touching the database
func ValidateRequest(req *PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("product %d: %w", item.ProductID, ErrInvalidQuantity)
		}
	}
	return nil
}

// PlaceOrder commits the user's checkout atomically: stock validated and
// decremented, order and item snapshots created, cart cleared, all or
// nothing. Exactly one failure is surfaced per call; there are no retries.
func (os *OrderService) PlaceOrder(ctx context.Context, userID int64, req *PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	items := make([]store.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = store.PlaceOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	start := time.Now()
	order, err := os.store.PlaceOrder(ctx, userID, items)
	util.CheckoutLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			util.OrdersFailedTotal.WithLabelValues("product_not_found").Inc()
		case errors.Is(err, store.ErrInsufficientStock):
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		default:
			util.OrdersFailedTotal.WithLabelValues("internal").Inc()
		}
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	os.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("total_amount", order.TotalAmount.String()))

	if !req.TotalAmount.IsZero() && !req.TotalAmount.Equal(order.TotalAmount) {
		os.logger.Warn("Client-supplied total ignored",
			zap.Int64("order_id", order.ID),
			zap.String("client_total", req.TotalAmount.String()),
			zap.String("server_total", order.TotalAmount.String()))
	}

	os.afterCommit(ctx, userID, order)

	return order, nil
}

// afterCommit handles the non-transactional follow-ups. Failures here are
// logged and never surfaced: the order already stands.
func (os *OrderService) afterCommit(ctx context.Context, userID int64, order *models.Order) {
	productIDs := make([]int64, len(order.Items))
	eventItems := make([]models.OrderItemData, len(order.Items))
	for i, item := range order.Items {
		productIDs[i] = item.ProductID
		eventItems[i] = models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := os.redis.InvalidateProducts(ctx, productIDs...); err != nil {
		os.logger.Warn("Product cache invalidation failed",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	if err := os.redis.InvalidateCartCount(ctx, userID); err != nil {
		os.logger.Warn("Cart count cache invalidation failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       eventItems,
	}
	if err := os.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		os.logger.Error("Failed to publish OrderPlaced event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}

// ListOrders retrieves the user's orders newest first
func (os *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	return os.store.GetOrdersByUserID(ctx, userID)
}

// GetOrder retrieves one of the user's orders with its items
func (os *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	return os.store.GetOrderByID(ctx, userID, orderID)
}
