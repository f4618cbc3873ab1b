package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the inventory aggregate. StockQuantity never goes negative as
// observed by any committed read; decrements are conditional on sufficient
// stock.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InStock reports whether any units remain.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}
