package dto

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/commerce-platform/internal/domain"
)

// ProductRequest is the body of POST /products and PUT /products/:id.
type ProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image"`
}

// ToDomain maps the request to a domain product.
func (r ProductRequest) ToDomain() *domain.Product {
	return &domain.Product{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		Category:      r.Category,
		ImageURL:      r.ImageURL,
	}
}
