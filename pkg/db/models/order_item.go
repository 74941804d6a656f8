package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	"github.com/chatcartlabs/chatcart-backend/pkg/types"
)

// OrderItem is a single line on a sale. For package orders the action
// marks whether the line ships with the base bundle, was added on top,
// or was removed from the defaults. Removed lines keep a RemovePrice
// credit and never count toward the sale amount.
type OrderItem struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID            uuid.UUID        `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID         uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	InternalProductID *uuid.UUID       `gorm:"column:internal_product_id;type:uuid"`
	ProductName       string           `gorm:"column:product_name;not null"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Qty               int              `gorm:"column:qty;not null;default:1"`
	Action            enums.LineAction `gorm:"column:action;type:line_action;not null;default:'base'"`
	RemovePrice       *decimal.Decimal `gorm:"column:remove_price;type:numeric(10,2)"`
	ExternalProductID *string          `gorm:"column:external_product_id"`
	ExternalVariantID *string          `gorm:"column:external_variant_id"`
	RawProductData    types.JSONMap    `gorm:"column:raw_product_data;type:jsonb;serializer:json"`
	Product           *Product         `gorm:"foreignKey:ProductID"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is the line's contribution to the sale amount. Removed
// lines contribute nothing.
func (i *OrderItem) LineTotal() decimal.Decimal {
	if i.Action == enums.LineActionRemoved {
		return decimal.Zero
	}
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}
