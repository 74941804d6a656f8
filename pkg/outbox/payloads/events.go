package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// OrderConfirmedEvent is emitted when a draft or ingested order reaches
// confirmation and its amount is frozen.
type OrderConfirmedEvent struct {
	SaleID         uuid.UUID         `json:"sale_id"`
	OID            string            `json:"oid"`
	MerchantID     uuid.UUID         `json:"merchant_id"`
	ConversationID *uuid.UUID        `json:"conversation_id,omitempty"`
	CustomerID     string            `json:"customer_id"`
	Source         enums.OrderSource `json:"source"`
	Amount         decimal.Decimal   `json:"amount"`
	ItemCount      int               `json:"item_count"`
	ConfirmedAt    time.Time         `json:"confirmed_at"`
}

// OrderStatusChangedEvent reports an admin-driven status transition.
type OrderStatusChangedEvent struct {
	SaleID     uuid.UUID         `json:"sale_id"`
	OID        string            `json:"oid"`
	MerchantID uuid.UUID         `json:"merchant_id"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
}

// ExternalOrderSyncedEvent is emitted after an external channel order is
// ingested, replaced or merged.
type ExternalOrderSyncedEvent struct {
	SaleID          uuid.UUID       `json:"sale_id"`
	OID             string          `json:"oid"`
	MerchantID      uuid.UUID       `json:"merchant_id"`
	ExternalOrderID string          `json:"external_order_id"`
	Operation       string          `json:"operation"`
	Amount          decimal.Decimal `json:"amount"`
	ItemCount       int             `json:"item_count"`
}

// WebPushRequestedEvent asks the dispatcher to push a confirmed order to
// the merchant's web channel webhook.
type WebPushRequestedEvent struct {
	SaleID          uuid.UUID       `json:"sale_id"`
	OID             string          `json:"oid"`
	MerchantID      uuid.UUID       `json:"merchant_id"`
	ExternalOrderID *string         `json:"external_order_id,omitempty"`
	Platform        enums.Platform  `json:"platform"`
	Amount          decimal.Decimal `json:"amount"`
}

// StockAdjustedEvent records a stock level change outside normal order flow.
type StockAdjustedEvent struct {
	ProductID  uuid.UUID `json:"product_id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Delta      int       `json:"delta"`
	StockQty   int       `json:"stock_qty"`
	Reason     string    `json:"reason,omitempty"`
}
