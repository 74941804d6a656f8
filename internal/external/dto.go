package external

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	"github.com/chatcartlabs/chatcart-backend/pkg/types"
)

// ExternalItem is one incoming line from a third-party channel. Prices
// and identifiers are supplied by the channel, not the catalog.
type ExternalItem struct {
	ExternalProductID *string
	ExternalVariantID *string
	Name              string
	Price             decimal.Decimal
	Quantity          int
	RawData           types.JSONMap
}

// IngestInput creates a sale from an external channel order.
type IngestInput struct {
	MerchantID      uuid.UUID
	CustomerID      string
	ExternalOrderID *string
	Status          enums.OrderStatus
	Items           []ExternalItem
}

// ReplaceInput swaps an external sale's entire line set.
type ReplaceInput struct {
	MerchantID uuid.UUID
	OrderID    uuid.UUID
	CustomerID string
	Items      []ExternalItem
}

// MergeInput patches individual lines on an external sale, matched by
// the channel's product/variant identifiers.
type MergeInput struct {
	MerchantID uuid.UUID
	OrderID    uuid.UUID
	Items      []ExternalItem
}

// RecordWebPushInput records the outcome of the latest push to the
// merchant's web channel, along with any confirmed metadata it returned.
type RecordWebPushInput struct {
	MerchantID  uuid.UUID
	OrderID     uuid.UUID
	Succeeded   bool
	ProductName string
	Price       *decimal.Decimal
	RawPayload  types.JSONMap
}
