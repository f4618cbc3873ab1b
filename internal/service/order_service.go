package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-platform/internal/client"
	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/events"
	"github.com/spec-kit/commerce-platform/internal/repository"
	apperrors "github.com/spec-kit/commerce-platform/pkg/util"
)

// OrderService orchestrates order placement against the product subsystem.
type OrderService struct {
	orders     repository.OrderRepository
	products   client.ProductGateway
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// OrderDependencies encapsulates collaborator requirements.
type OrderDependencies struct {
	OrderRepo      repository.OrderRepository
	ProductGateway client.ProductGateway
	Dispatcher     events.Dispatcher
}

// NewOrderService builds the service.
func NewOrderService(deps OrderDependencies, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:     deps.OrderRepo,
		products:   deps.ProductGateway,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateOrder runs the placement workflow: product lookup, stock check,
// exact price computation, durable persistence, then a best-effort stock
// decrement. Once the order row is written it exists regardless of what the
// decrement does; the system favors order durability over strict inventory
// accuracy.
func (s *OrderService) CreateOrder(ctx context.Context, productID string, quantity int, customerName string) (*domain.Order, error) {
	s.logger.Info("creating order",
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.StockQuantity < quantity {
		return nil, apperrors.NewInsufficientStock(product.Name, product.StockQuantity, quantity)
	}

	totalPrice := product.Price.Mul(decimal.NewFromInt(int64(quantity)))

	order := &domain.Order{
		ProductID:    productID,
		ProductName:  product.Name,
		Quantity:     quantity,
		TotalPrice:   totalPrice,
		CustomerName: customerName,
		Status:       domain.OrderStatusConfirmed,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("order created", zap.String("id", order.ID))

	s.publish(ctx, events.EventOrderCreated, order.ID, events.OrderCreatedPayload{
		ProductID:    order.ProductID,
		ProductName:  order.ProductName,
		Quantity:     order.Quantity,
		TotalPrice:   order.TotalPrice,
		CustomerName: order.CustomerName,
	})

	// Best-effort: a failed decrement is recorded, never propagated, and the
	// already-durable order is not rolled back.
	if err := s.products.DecreaseStock(ctx, productID, quantity); err != nil {
		s.logger.Warn("failed to decrease stock",
			zap.String("product_id", productID),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		s.publish(ctx, events.EventStockDecrementFailed, order.ID, events.StockDecrementFailedPayload{
			ProductID: productID,
			Quantity:  quantity,
			Reason:    err.Error(),
		})
	}

	return order, nil
}

// GetByID returns one order.
func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
		}
		return nil, err
	}
	return order, nil
}

// GetAll returns every order.
func (s *OrderService) GetAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.GetAll(ctx)
}

// GetByStatus returns orders in the given status.
func (s *OrderService) GetByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, apperrors.NewValidationError("unknown order status", map[string]any{"status": status})
	}
	return s.orders.GetByStatus(ctx, status)
}

// UpdateStatus moves an order to a new status.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, apperrors.NewValidationError("unknown order status", map[string]any{"status": status})
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
		}
		return nil, err
	}
	order.Status = status
	s.logger.Info("order status updated",
		zap.String("id", id),
		zap.String("status", string(status)),
	)

	s.publish(ctx, events.EventOrderStatusChanged, id, events.OrderStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
	})
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType events.EventType, orderID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
