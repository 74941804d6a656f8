package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
	"github.com/chatcartlabs/chatcart-backend/pkg/shortid"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  discounted_price NUMERIC,
  stock_qty INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_placeholder INTEGER NOT NULL DEFAULT 0,
  upsell_enabled INTEGER NOT NULL DEFAULT 0,
  last_synced_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	packages := `
CREATE TABLE IF NOT EXISTS packages (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  discounted_price NUMERIC,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	packageItems := `
CREATE TABLE IF NOT EXISTS package_items (
  id TEXT PRIMARY KEY,
  package_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 1,
  is_optional INTEGER NOT NULL DEFAULT 0,
  add_price NUMERIC,
  remove_price NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(packages).Error)
	require.NoError(t, db.Exec(packageItems).Error)
	return db
}

func createProduct(t *testing.T, db *gorm.DB, merchantID uuid.UUID, name string, price string, stock int, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		MerchantID: merchantID,
		SKU:        shortid.NewProductSKU(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		StockQty:   stock,
		IsActive:   true,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createPackage(t *testing.T, db *gorm.DB, merchantID uuid.UUID, name, price string) *models.Package {
	t.Helper()

	pkg := &models.Package{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Code:       shortid.NewPackageCode(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		IsActive:   true,
	}
	require.NoError(t, db.Create(pkg).Error)
	return pkg
}

func createPackageItem(t *testing.T, db *gorm.DB, pkg *models.Package, product *models.Product, isDefault bool, addPrice, removePrice *decimal.Decimal) *models.PackageItem {
	t.Helper()

	item := &models.PackageItem{
		ID:          uuid.New(),
		PackageID:   pkg.ID,
		ProductID:   product.ID,
		IsDefault:   isDefault,
		IsOptional:  !isDefault,
		AddPrice:    addPrice,
		RemovePrice: removePrice,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestRepositoryListProducts_pagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		createProduct(t, db, merchantID, "Item", "10.00", 5, base.Add(time.Duration(i)*time.Minute))
	}

	firstPage, err := repo.ListProducts(ctx, merchantID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage.Products, 2)
	require.NotEmpty(t, firstPage.NextCursor)
	assert.True(t, firstPage.Products[0].CreatedAt.After(firstPage.Products[1].CreatedAt))

	secondPage, err := repo.ListProducts(ctx, merchantID, pagination.Params{Limit: 2, Cursor: firstPage.NextCursor})
	require.NoError(t, err)
	require.Len(t, secondPage.Products, 1)
	assert.Empty(t, secondPage.NextCursor)

	seen := map[uuid.UUID]struct{}{}
	for _, p := range firstPage.Products {
		seen[p.ID] = struct{}{}
	}
	for _, p := range secondPage.Products {
		_, dup := seen[p.ID]
		assert.False(t, dup, "pages must not overlap")
	}
}

func TestRepositoryListProducts_excludesPlaceholder(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	createProduct(t, db, merchantID, "Visible", "10.00", 5, time.Now())

	placeholder := &models.Product{
		ID:            uuid.New(),
		MerchantID:    merchantID,
		SKU:           shortid.NewProductSKU(),
		Name:          "External channel item",
		Price:         decimal.Zero,
		IsPlaceholder: true,
	}
	require.NoError(t, db.Create(placeholder).Error)

	list, err := repo.ListProducts(ctx, merchantID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Visible", list.Products[0].Name)

	found, err := repo.FindPlaceholder(ctx, merchantID)
	require.NoError(t, err)
	assert.Equal(t, placeholder.ID, found.ID)
}

func TestRepositoryFindProductBySKU(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	product := createProduct(t, db, merchantID, "Lookup", "25.50", 3, time.Now())

	found, err := repo.FindProductBySKU(ctx, merchantID, product.SKU)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = repo.FindProductBySKU(ctx, uuid.New(), product.SKU)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindPackage_preloadsItems(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	base := createProduct(t, db, merchantID, "Base Item", "40.00", 10, time.Now())
	optional := createProduct(t, db, merchantID, "Optional Item", "30.00", 10, time.Now())

	pkg := createPackage(t, db, merchantID, "Starter Bundle", "100.00")
	createPackageItem(t, db, pkg, base, true, nil, decimalPtr("20.00"))
	createPackageItem(t, db, pkg, optional, false, decimalPtr("30.00"), nil)

	found, err := repo.FindPackageByID(ctx, pkg.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	for _, item := range found.Items {
		require.NotNil(t, item.Product)
	}

	byCode, err := repo.FindPackageByCode(ctx, merchantID, pkg.Code)
	require.NoError(t, err)
	assert.Equal(t, pkg.ID, byCode.ID)
}
