package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySKU(ctx context.Context, merchantID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND sku = ?", merchantID, sku).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, merchantID uuid.UUID, params pagination.Params) (*ProductList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("merchant_id = ? AND is_placeholder = ?", merchantID, false)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}

	list := &ProductList{}
	if len(products) > normalized {
		products = products[:normalized]
		last := products[len(products)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for _, product := range products {
		list.Products = append(list.Products, ProductSummary{
			ID:              product.ID,
			SKU:             product.SKU,
			Name:            product.Name,
			Price:           product.Price,
			DiscountedPrice: product.DiscountedPrice,
			StockQty:        product.StockQty,
			IsActive:        product.IsActive,
			CreatedAt:       product.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) FindPlaceholder(ctx context.Context, merchantID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND is_placeholder = ?", merchantID, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	var pkg models.Package
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("id = ?", id).
		First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *repository) FindPackageByCode(ctx context.Context, merchantID uuid.UUID, code string) (*models.Package, error) {
	var pkg models.Package
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("merchant_id = ? AND code = ?", merchantID, code).
		First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
