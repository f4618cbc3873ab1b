package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-platform/internal/api/dto"
	"github.com/spec-kit/commerce-platform/internal/domain"
	"github.com/spec-kit/commerce-platform/internal/service"
)

// OrdersHandler exposes the order workflow endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ProductID == "" || req.Quantity <= 0 || req.CustomerName == "" {
		return fiber.NewError(http.StatusBadRequest, "productId, positive quantity and customerName required")
	}

	order, err := h.orders.CreateOrder(c.UserContext(), req.ProductID, req.Quantity, req.CustomerName)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(order)
}

// List handles GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	orders, err := h.orders.GetAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// Get handles GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// ListByStatus handles GET /orders/status/:status.
func (h *OrdersHandler) ListByStatus(c *fiber.Ctx) error {
	orders, err := h.orders.GetByStatus(c.UserContext(), domain.OrderStatus(c.Params("status")))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// UpdateStatus handles PATCH /orders/:id/status?status=X.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	status := c.Query("status")
	if status == "" {
		return fiber.NewError(http.StatusBadRequest, "status query parameter required")
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), domain.OrderStatus(status))
	if err != nil {
		return err
	}
	return c.JSON(order)
}
