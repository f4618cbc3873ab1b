package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-platform/internal/api/dto"
	"github.com/spec-kit/commerce-platform/internal/service"
)

// ProductsHandler exposes inventory CRUD and the stock decrement endpoint.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// List handles GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.products.GetAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// Get handles GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// ListInStock handles GET /products/in-stock.
func (h *ProductsHandler) ListInStock(c *fiber.Ctx) error {
	products, err := h.products.GetInStock(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// Search handles GET /products/search?name=.
func (h *ProductsHandler) Search(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return fiber.NewError(http.StatusBadRequest, "name query parameter required")
	}
	products, err := h.products.Search(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// Create handles POST /products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Price.IsZero() || req.StockQuantity < 0 {
		return fiber.NewError(http.StatusBadRequest, "name, positive price and non-negative stock required")
	}

	product := req.ToDomain()
	if err := h.products.Create(c.UserContext(), product); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(product)
}

// Update handles PUT /products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	product, err := h.products.Update(c.UserContext(), c.Params("id"), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// Delete handles DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "product " + id + " deleted successfully"})
}

// DecreaseStock handles PATCH /products/:id/stock?quantity=N, the internal
// endpoint the order workflow calls.
func (h *ProductsHandler) DecreaseStock(c *fiber.Ctx) error {
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "quantity query parameter required")
	}

	applied, err := h.products.DecreaseStock(c.UserContext(), c.Params("id"), quantity)
	if err != nil {
		return err
	}
	if !applied {
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Insufficient stock",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Stock updated",
	})
}
