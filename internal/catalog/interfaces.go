package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
)

// Repository defines persistence operations for catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*ProductList, error)
	FindPlaceholder(ctx context.Context, merchantID uuid.UUID) (*models.Product, error)
	FindPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error)
	FindPackageByCode(ctx context.Context, merchantID uuid.UUID, code string) (*models.Package, error)
}

// StockAdjuster mutates product stock with the non-negative guard applied
// at the storage layer. Callers pass the transaction the rest of their
// mutation runs in so stock and line changes commit together.
type StockAdjuster interface {
	Adjust(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error
}
