package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// StartDraftInput opens (or resumes) a draft cart for a customer.
type StartDraftInput struct {
	MerchantID     uuid.UUID
	CustomerID     string
	ConversationID *uuid.UUID
}

// ProductRef identifies a catalog product either by id or by public sku.
// Exactly one field must be set.
type ProductRef struct {
	ProductID *uuid.UUID
	SKU       string
}

// AddItemInput adds a priced line to a draft order.
type AddItemInput struct {
	MerchantID uuid.UUID
	OrderID    uuid.UUID
	Product    ProductRef
	Quantity   int
}

// UpdateItemQuantityInput changes the quantity on an existing line.
type UpdateItemQuantityInput struct {
	MerchantID  uuid.UUID
	OrderID     uuid.UUID
	Product     ProductRef
	NewQuantity int
}

// RemoveItemInput drops a line and restores its stock.
type RemoveItemInput struct {
	MerchantID uuid.UUID
	OrderID    uuid.UUID
	Product    ProductRef
}

// ConfirmInput freezes a draft into a pending order.
type ConfirmInput struct {
	MerchantID      uuid.UUID
	OrderID         uuid.UUID
	CustomerName    *string
	CustomerAddress *string
	CustomerPhone   *string
	DeliveryZone    *enums.DeliveryZone
}

// CreateOrderInput creates a one-shot order for either a single product
// or a customized package. Exactly one target may be supplied.
type CreateOrderInput struct {
	MerchantID     uuid.UUID
	CustomerID     string
	ConversationID *uuid.UUID

	ProductID *uuid.UUID
	PackageID *uuid.UUID

	AddProductIDs    []uuid.UUID
	RemoveProductIDs []uuid.UUID

	CustomerName    *string
	CustomerAddress *string
	CustomerPhone   *string
	DeliveryZone    *enums.DeliveryZone
}

// ListFilter narrows the dashboard order listing.
type ListFilter struct {
	Status *enums.OrderStatus
	Source *enums.OrderSource
}

// SaleSummary is one row in the dashboard listing.
type SaleSummary struct {
	ID           uuid.UUID         `json:"id"`
	OID          string            `json:"oid"`
	CustomerID   string            `json:"customer_id"`
	CustomerName *string           `json:"customer_name,omitempty"`
	Source       enums.OrderSource `json:"source"`
	Status       enums.OrderStatus `json:"status"`
	Amount       decimal.Decimal   `json:"amount"`
	ItemCount    int               `json:"item_count"`
	CreatedAt    time.Time         `json:"created_at"`
}

// SaleList wraps the paginated sales plus the next page cursor.
type SaleList struct {
	Sales      []SaleSummary `json:"sales"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
