package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/chatcartlabs/chatcart-backend/pkg/db"
	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox/payloads"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
	"github.com/chatcartlabs/chatcart-backend/pkg/shortid"
)

// placeholderName is the display name carried by the per-merchant
// placeholder product backing external order lines.
const placeholderName = "External channel item"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes catalog reads plus the stock operations the order flow
// depends on.
type Service interface {
	GetProduct(ctx context.Context, merchantID, productID uuid.UUID) (*models.Product, error)
	GetProductBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*ProductList, error)
	GetPackage(ctx context.Context, merchantID, packageID uuid.UUID) (*models.Package, error)
	Restock(ctx context.Context, input RestockInput) (*models.Product, error)
	EnsurePlaceholder(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*models.Product, error)
}

// RestockInput carries a manual stock adjustment from the dashboard.
type RestockInput struct {
	MerchantID uuid.UUID
	ProductID  uuid.UUID
	Delta      int
	Reason     string
}

type service struct {
	repo   Repository
	tx     txRunner
	stock  StockAdjuster
	outbox outboxPublisher
}

// NewService builds the catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, stock StockAdjuster, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, stock: stock, outbox: outboxSvc}, nil
}

func (s *service) GetProduct(ctx context.Context, merchantID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) GetProductBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*models.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	product, err := s.repo.FindProductBySKU(ctx, merchantID, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*ProductList, error) {
	list, err := s.repo.ListProducts(ctx, merchantID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) GetPackage(ctx context.Context, merchantID, packageID uuid.UUID) (*models.Package, error) {
	pkg, err := s.repo.FindPackageByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load package")
	}
	if pkg.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
	}
	return pkg, nil
}

func (s *service) Restock(ctx context.Context, input RestockInput) (*models.Product, error) {
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProductByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.MerchantID != input.MerchantID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		if err := s.stock.Adjust(ctx, tx, product.ID, input.Delta); err != nil {
			return err
		}

		product, err = repo.FindProductByID(ctx, input.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		updated = product

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Version:       1,
			Data: payloads.StockAdjustedEvent{
				ProductID:  product.ID,
				MerchantID: product.MerchantID,
				Delta:      input.Delta,
				StockQty:   product.StockQty,
				Reason:     input.Reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EnsurePlaceholder returns the merchant's placeholder product, creating it
// when missing. Runs inside the caller's transaction so the first external
// ingest and the placeholder insert commit together.
func (s *service) EnsurePlaceholder(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for placeholder lookup")
	}
	repo := s.repo.WithTx(tx)

	product, err := repo.FindPlaceholder(ctx, merchantID)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load placeholder product")
	}

	created, err := repo.CreateProduct(ctx, &models.Product{
		MerchantID:    merchantID,
		SKU:           shortid.NewProductSKU(),
		Name:          placeholderName,
		Price:         decimal.Zero,
		StockQty:      0,
		IsActive:      false,
		IsPlaceholder: true,
	})
	if err != nil {
		// Concurrent ingest may have created it first.
		if dbpkg.IsUniqueViolation(err, "ux_products_merchant_placeholder") {
			return repo.FindPlaceholder(ctx, merchantID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create placeholder product")
	}
	return created, nil
}

type stockAdjusterImpl struct{}

// NewStockAdjuster exposes the default stock adjustment implementation.
func NewStockAdjuster() StockAdjuster {
	return stockAdjusterImpl{}
}

// Adjust applies the delta with the non-negative check and the mutation in
// one statement so concurrent order writes cannot oversell.
func (stockAdjusterImpl) Adjust(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_qty = stock_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_qty + ? >= 0
	`, delta, productID, delta)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product exists")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": productID.String(),
			"requested":  -delta,
		})
}
