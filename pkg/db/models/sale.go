package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// Sale is an order ledger row. Internal sales are built up in draft via
// the conversational flow; external sales arrive pre-built from channel
// syncs. Amount always equals the sum over non-removed line items of
// price times quantity.
type Sale struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OID             string               `gorm:"column:oid;not null;uniqueIndex"`
	MerchantID      uuid.UUID            `gorm:"column:merchant_id;type:uuid;not null;index"`
	ConversationID  *uuid.UUID           `gorm:"column:conversation_id;type:uuid"`
	PackageID       *uuid.UUID           `gorm:"column:package_id;type:uuid"`
	Source          enums.OrderSource    `gorm:"column:source;type:order_source;not null;default:'internal'"`
	CustomerID      string               `gorm:"column:customer_id;not null;index"`
	CustomerName    *string              `gorm:"column:customer_name"`
	Phone           *string              `gorm:"column:phone"`
	Address         *string              `gorm:"column:address"`
	DeliveryZone    *enums.DeliveryZone  `gorm:"column:delivery_zone;type:delivery_zone"`
	Amount          decimal.Decimal      `gorm:"column:amount;type:numeric(10,2);not null;default:0"`
	Status          enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'draft'"`
	ExternalOrderID *string              `gorm:"column:external_order_id"`
	UpdatedToWeb    *enums.WebSyncStatus `gorm:"column:updated_to_web;type:web_sync_status"`
	Items           []OrderItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
