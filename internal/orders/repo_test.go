package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
	"github.com/chatcartlabs/chatcart-backend/pkg/shortid"
	"github.com/chatcartlabs/chatcart-backend/pkg/types"
)

func createSale(t *testing.T, db *gorm.DB, merchantID uuid.UUID, customerID string, status enums.OrderStatus, source enums.OrderSource, created time.Time) *models.Sale {
	t.Helper()

	sale := &models.Sale{
		ID:         uuid.New(),
		OID:        shortid.NewOrderID(),
		MerchantID: merchantID,
		CustomerID: customerID,
		Source:     source,
		Status:     status,
		Amount:     decimal.Zero,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

func TestRepositoryListSales_paginationAndFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		createSale(t, db, merchantID, "cust-list", enums.OrderStatusPending, enums.OrderSourceInternal, base.Add(time.Duration(i)*time.Minute))
	}
	createSale(t, db, merchantID, "cust-list", enums.OrderStatusCompleted, enums.OrderSourceExternal, base.Add(10*time.Minute))

	firstPage, err := repo.ListSales(ctx, merchantID, ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage.Sales, 2)
	require.NotEmpty(t, firstPage.NextCursor)
	assert.True(t, firstPage.Sales[0].CreatedAt.After(firstPage.Sales[1].CreatedAt))

	secondPage, err := repo.ListSales(ctx, merchantID, ListFilter{}, pagination.Params{Limit: 2, Cursor: firstPage.NextCursor})
	require.NoError(t, err)
	require.Len(t, secondPage.Sales, 2)
	assert.Empty(t, secondPage.NextCursor)

	pending := enums.OrderStatusPending
	filtered, err := repo.ListSales(ctx, merchantID, ListFilter{Status: &pending}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, filtered.Sales, 3)

	external := enums.OrderSourceExternal
	bySource, err := repo.ListSales(ctx, merchantID, ListFilter{Source: &external}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, bySource.Sales, 1)
	assert.Equal(t, enums.OrderStatusCompleted, bySource.Sales[0].Status)
}

func TestRepositoryFindDraftByCustomer(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	draft := createSale(t, db, merchantID, "cust-draft", enums.OrderStatusDraft, enums.OrderSourceInternal, time.Now())
	createSale(t, db, merchantID, "cust-draft", enums.OrderStatusPending, enums.OrderSourceInternal, time.Now())

	found, err := repo.FindDraftByCustomer(ctx, merchantID, "cust-draft")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	_, err = repo.FindDraftByCustomer(ctx, merchantID, "cust-unknown")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateOrderItem_persistsRawProductData(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	sale := createSale(t, db, merchantID, "cust-upd", enums.OrderStatusDraft, enums.OrderSourceInternal, time.Now())

	items, err := repo.CreateOrderItems(ctx, []models.OrderItem{{
		SaleID:      sale.ID,
		ProductID:   uuid.New(),
		ProductName: "Original",
		Price:       decimal.RequireFromString("5.00"),
		Qty:         3,
	}})
	require.NoError(t, err)
	item := items[0]

	item.ProductName = "Renamed"
	item.Price = decimal.RequireFromString("7.50")
	item.Qty = 1
	item.RawProductData = types.JSONMap{"title": "Renamed", "variant": "large"}
	require.NoError(t, repo.UpdateOrderItem(ctx, &item))

	var reloaded models.OrderItem
	require.NoError(t, db.First(&reloaded, "id = ?", item.ID).Error)
	assert.Equal(t, "Renamed", reloaded.ProductName)
	assert.True(t, reloaded.Price.Equal(decimal.RequireFromString("7.50")))
	assert.Equal(t, 1, reloaded.Qty)
	require.NotNil(t, reloaded.RawProductData)
	assert.Equal(t, "large", reloaded.RawProductData["variant"])
}

func TestRepositoryExternalLookups(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := uuid.New()
	sale := createSale(t, db, merchantID, "cust-ext", enums.OrderStatusDraft, enums.OrderSourceExternal, time.Now())
	externalOrderID := "web-9001"
	sale.ExternalOrderID = &externalOrderID
	require.NoError(t, repo.UpdateSale(ctx, sale))

	found, err := repo.FindSaleByExternalOrderID(ctx, merchantID, externalOrderID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, found.ID)

	extProduct := "prod-77"
	extVariant := "var-3"
	_, err = repo.CreateOrderItems(ctx, []models.OrderItem{{
		SaleID:            sale.ID,
		ProductID:         uuid.New(),
		ProductName:       "Channel Item",
		Price:             decimal.RequireFromString("19.99"),
		Qty:               2,
		ExternalProductID: &extProduct,
		ExternalVariantID: &extVariant,
	}})
	require.NoError(t, err)

	item, err := repo.FindItemByExternalIDs(ctx, sale.ID, &extProduct, &extVariant)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Qty)

	_, err = repo.FindItemByExternalIDs(ctx, sale.ID, &extProduct, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
