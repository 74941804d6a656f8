package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a standalone catalog entry a merchant can sell directly
// or compose into packages. Stock is tracked per product and may never
// drop below zero.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID      uuid.UUID        `gorm:"column:merchant_id;type:uuid;not null;index"`
	SKU             string           `gorm:"column:sku;not null;uniqueIndex"`
	Name            string           `gorm:"column:name;not null"`
	Description     *string          `gorm:"column:description"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountedPrice *decimal.Decimal `gorm:"column:discounted_price;type:numeric(10,2)"`
	StockQty        int              `gorm:"column:stock_qty;not null;default:0"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	IsPlaceholder   bool             `gorm:"column:is_placeholder;not null;default:false"`
	UpsellEnabled   bool             `gorm:"column:upsell_enabled;not null;default:false"`
	LastSyncedAt    *time.Time       `gorm:"column:last_synced_at"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the discounted price when one is set.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.Price
}
