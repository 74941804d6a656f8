package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
)

// Repository persists sales and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	FindSaleByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	FindSaleByOID(ctx context.Context, merchantID uuid.UUID, oid string) (*models.Sale, error)
	FindSaleByExternalOrderID(ctx context.Context, merchantID uuid.UUID, externalOrderID string) (*models.Sale, error)
	FindDraftByCustomer(ctx context.Context, merchantID uuid.UUID, customerID string) (*models.Sale, error)
	UpdateSale(ctx context.Context, sale *models.Sale) error
	ListSales(ctx context.Context, merchantID uuid.UUID, filter ListFilter, params pagination.Params) (*SaleList, error)

	CreateOrderItems(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error)
	FindItemsBySale(ctx context.Context, saleID uuid.UUID) ([]models.OrderItem, error)
	FindItemBySaleAndProduct(ctx context.Context, saleID, productID uuid.UUID) (*models.OrderItem, error)
	FindItemByExternalIDs(ctx context.Context, saleID uuid.UUID, externalProductID, externalVariantID *string) (*models.OrderItem, error)
	UpdateOrderItem(ctx context.Context, item *models.OrderItem) error
	DeleteOrderItem(ctx context.Context, id uuid.UUID) error
	DeleteItemsBySale(ctx context.Context, saleID uuid.UUID) error
}

// ProductLoader is the slice of the catalog the ledger consults when
// pricing lines. Satisfied by catalog.Repository.
type ProductLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*models.Product, error)
	FindPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error)
	FindPackageByCode(ctx context.Context, merchantID uuid.UUID, code string) (*models.Package, error)
}

// StockAdjuster mirrors catalog.StockAdjuster so the ledger does not
// depend on the catalog package for one method.
type StockAdjuster interface {
	Adjust(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the order ledger.
type Service interface {
	StartDraft(ctx context.Context, input StartDraftInput) (*models.Sale, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, input UpdateItemQuantityInput) (*models.OrderItem, error)
	RemoveItem(ctx context.Context, input RemoveItemInput) error
	Confirm(ctx context.Context, input ConfirmInput) (*models.Sale, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Sale, error)
	UpdateStatus(ctx context.Context, merchantID, orderID uuid.UUID, status enums.OrderStatus) (*models.Sale, error)
	GetOrder(ctx context.Context, merchantID, orderID uuid.UUID) (*models.Sale, error)
	GetOrderByOID(ctx context.Context, merchantID uuid.UUID, oid string) (*models.Sale, error)
	ListOrders(ctx context.Context, merchantID uuid.UUID, filter ListFilter, params pagination.Params) (*SaleList, error)
}
