package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSummary exposes the fields returned by catalog listings.
type ProductSummary struct {
	ID              uuid.UUID        `json:"id"`
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	StockQty        int              `json:"stock_qty"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
