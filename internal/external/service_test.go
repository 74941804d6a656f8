package external

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/internal/catalog"
	"github.com/chatcartlabs/chatcart-backend/internal/conversations"
	"github.com/chatcartlabs/chatcart-backend/internal/orders"
	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox"
	"github.com/chatcartlabs/chatcart-backend/pkg/types"
)

func setupExternalTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
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
);`, `
CREATE TABLE IF NOT EXISTS conversations (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  platform TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  customer_name TEXT,
  is_ai_enabled INTEGER NOT NULL DEFAULT 1,
  ai_disabled_at DATETIME,
  ai_enable_delay_secs INTEGER NOT NULL DEFAULT 0,
  chat_summary TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  oid TEXT NOT NULL UNIQUE,
  merchant_id TEXT NOT NULL,
  conversation_id TEXT,
  package_id TEXT,
  source TEXT NOT NULL DEFAULT 'internal',
  customer_id TEXT NOT NULL,
  customer_name TEXT,
  phone TEXT,
  address TEXT,
  delivery_zone TEXT,
  amount NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'draft',
  external_order_id TEXT,
  updated_to_web TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  internal_product_id TEXT,
  product_name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  qty INTEGER NOT NULL DEFAULT 1,
  action TEXT NOT NULL DEFAULT 'base',
  remove_price NUMERIC,
  external_product_id TEXT,
  external_variant_id TEXT,
  raw_product_data TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	for _, existing := range r.events {
		if existing.EventType == event.EventType && existing.AggregateID == event.AggregateID {
			return nil
		}
	}
	return r.Emit(ctx, tx, event)
}

type externalTestEnv struct {
	db     *gorm.DB
	svc    Service
	repo   orders.Repository
	outbox *recordingOutbox
}

func newExternalTestEnv(t *testing.T) *externalTestEnv {
	t.Helper()

	db := setupExternalTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	outboxStub := &recordingOutbox{}
	txr := sqliteTxRunner{db: db}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(db), txr, catalog.NewStockAdjuster(), outboxStub)
	require.NoError(t, err)
	directory, err := conversations.NewService(conversations.NewRepository(db))
	require.NoError(t, err)
	ordersRepo := orders.NewRepository(db)

	svc, err := NewService(ordersRepo, directory, catalogSvc, txr, outboxStub, logg)
	require.NoError(t, err)
	return &externalTestEnv{db: db, svc: svc, repo: ordersRepo, outbox: outboxStub}
}

func (e *externalTestEnv) createConversation(t *testing.T, merchantID uuid.UUID, customerID string) *models.Conversation {
	t.Helper()

	conversation := &models.Conversation{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Platform:   enums.PlatformWhatsApp,
		CustomerID: customerID,
	}
	require.NoError(t, e.db.Create(conversation).Error)
	return conversation
}

func strPtr(v string) *string { return &v }

func externalItem(name, price string, qty int, extProduct, extVariant string) ExternalItem {
	item := ExternalItem{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
	if extProduct != "" {
		item.ExternalProductID = strPtr(extProduct)
	}
	if extVariant != "" {
		item.ExternalVariantID = strPtr(extVariant)
	}
	return item
}

func TestIngest_requiresConversation(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()

	_, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "stranger",
		Items:      []ExternalItem{externalItem("Widget", "10.00", 1, "p1", "")},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	var count int64
	require.NoError(t, env.db.Model(&models.Sale{}).Where("merchant_id = ?", merchantID).Count(&count).Error)
	assert.Zero(t, count, "failed ingest must not leave a sale behind")
}

func TestIngest_createsSaleWithPlaceholder(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()
	env.createConversation(t, merchantID, "cust-ext-1")

	sale, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID:      merchantID,
		CustomerID:      "cust-ext-1",
		ExternalOrderID: strPtr("web-100"),
		Items: []ExternalItem{
			externalItem("Widget", "10.00", 2, "p1", "v1"),
			externalItem("Gadget", "5.50", 1, "p2", ""),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderSourceExternal, sale.Source)
	assert.Equal(t, enums.OrderStatusDraft, sale.Status)
	assert.True(t, sale.Amount.Equal(decimal.RequireFromString("25.50")))
	require.NotNil(t, sale.ConversationID)

	items, err := env.repo.FindItemsBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var placeholder models.Product
	require.NoError(t, env.db.Where("merchant_id = ? AND is_placeholder = ?", merchantID, true).First(&placeholder).Error)
	for _, item := range items {
		assert.Equal(t, placeholder.ID, item.ProductID)
		assert.Nil(t, item.InternalProductID)
	}

	require.Len(t, env.outbox.events, 1)
	assert.Equal(t, enums.EventExternalOrderSynced, env.outbox.events[0].EventType)

	// A second ingest reuses the same placeholder product.
	_, err = env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "cust-ext-1",
		Items:      []ExternalItem{externalItem("More", "1.00", 1, "p3", "")},
	})
	require.NoError(t, err)
	var placeholderCount int64
	require.NoError(t, env.db.Model(&models.Product{}).Where("merchant_id = ? AND is_placeholder = ?", merchantID, true).Count(&placeholderCount).Error)
	assert.EqualValues(t, 1, placeholderCount)
}

func TestReplace_swapsItemsAndResetsStatus(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()
	env.createConversation(t, merchantID, "cust-ext-2")

	sale, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "cust-ext-2",
		Status:     enums.OrderStatusPending,
		Items:      []ExternalItem{externalItem("Old", "10.00", 1, "p1", "")},
	})
	require.NoError(t, err)

	replaced, err := env.svc.Replace(ctx, ReplaceInput{
		MerchantID: merchantID,
		OrderID:    sale.ID,
		Items: []ExternalItem{
			externalItem("New A", "7.00", 2, "p2", ""),
			externalItem("New B", "3.00", 1, "p3", ""),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDraft, replaced.Status)
	assert.True(t, replaced.Amount.Equal(decimal.RequireFromString("17.00")))

	items, err := env.repo.FindItemsBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotEqual(t, "Old", item.ProductName)
	}
}

func TestMerge_netsAmountPerItem(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()
	env.createConversation(t, merchantID, "cust-ext-3")

	sale, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "cust-ext-3",
		Items: []ExternalItem{
			externalItem("Widget", "10.00", 2, "p1", "v1"),
			externalItem("Gadget", "5.00", 1, "p2", ""),
		},
	})
	require.NoError(t, err)
	assert.True(t, sale.Amount.Equal(decimal.RequireFromString("25.00")))

	merged, err := env.svc.Merge(ctx, MergeInput{
		MerchantID: merchantID,
		OrderID:    sale.ID,
		Items: []ExternalItem{
			// Existing line: 10x2 becomes 12x3.
			{ExternalProductID: strPtr("p1"), ExternalVariantID: strPtr("v1"), Name: "Widget XL", Price: decimal.RequireFromString("12.00"), Quantity: 3, RawData: types.JSONMap{"color": "red"}},
			// Brand new line.
			externalItem("Doohickey", "4.00", 2, "p9", ""),
		},
	})
	require.NoError(t, err)
	// 25 - 20 + 36 + 8 = 49
	assert.True(t, merged.Amount.Equal(decimal.RequireFromString("49.00")), "got %s", merged.Amount)

	items, err := env.repo.FindItemsBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	updated, err := env.repo.FindItemByExternalIDs(ctx, sale.ID, strPtr("p1"), strPtr("v1"))
	require.NoError(t, err)
	assert.Equal(t, "Widget XL", updated.ProductName)
	assert.Equal(t, 3, updated.Qty)
	assert.Equal(t, "red", updated.RawProductData["color"])
}

func TestConfirm_externalOrder(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()
	env.createConversation(t, merchantID, "cust-ext-4")

	sale, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "cust-ext-4",
		Items:      []ExternalItem{externalItem("Widget", "10.00", 2, "p1", "")},
	})
	require.NoError(t, err)
	env.outbox.events = nil

	confirmed, err := env.svc.Confirm(ctx, merchantID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, confirmed.Status)
	assert.True(t, confirmed.Amount.Equal(decimal.RequireFromString("20.00")))

	require.Len(t, env.outbox.events, 2)
	assert.Equal(t, enums.EventOrderConfirmed, env.outbox.events[0].EventType)
	assert.Equal(t, enums.EventWebPushRequested, env.outbox.events[1].EventType)

	_, err = env.svc.Confirm(ctx, merchantID, sale.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestConfirm_emptyExternalOrder(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()
	env.createConversation(t, merchantID, "cust-ext-5")

	sale, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "cust-ext-5",
		Items:      []ExternalItem{externalItem("Widget", "10.00", 1, "p1", "")},
	})
	require.NoError(t, err)
	require.NoError(t, env.repo.DeleteItemsBySale(ctx, sale.ID))

	_, err = env.svc.Confirm(ctx, merchantID, sale.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestRecordWebPush(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()
	env.createConversation(t, merchantID, "cust-ext-6")

	sale, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "cust-ext-6",
		Items:      []ExternalItem{externalItem("Widget", "10.00", 1, "p1", "")},
	})
	require.NoError(t, err)

	price := decimal.RequireFromString("11.00")
	recorded, err := env.svc.RecordWebPush(ctx, RecordWebPushInput{
		MerchantID:  merchantID,
		OrderID:     sale.ID,
		Succeeded:   true,
		ProductName: "Widget Confirmed",
		Price:       &price,
		RawPayload:  types.JSONMap{"web_id": "w-1"},
	})
	require.NoError(t, err)
	require.NotNil(t, recorded.UpdatedToWeb)
	assert.Equal(t, enums.WebSyncUpdated, *recorded.UpdatedToWeb)

	items, err := env.repo.FindItemsBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget Confirmed", items[0].ProductName)
	assert.True(t, items[0].Price.Equal(price))

	failed, err := env.svc.RecordWebPush(ctx, RecordWebPushInput{
		MerchantID: merchantID,
		OrderID:    sale.ID,
		Succeeded:  false,
	})
	require.NoError(t, err)
	require.NotNil(t, failed.UpdatedToWeb)
	assert.Equal(t, enums.WebSyncFailed, *failed.UpdatedToWeb)
}

func TestRecordWebPush_terminalOrder(t *testing.T) {
	env := newExternalTestEnv(t)
	ctx := context.Background()
	merchantID := uuid.New()
	env.createConversation(t, merchantID, "cust-ext-7")

	sale, err := env.svc.Ingest(ctx, IngestInput{
		MerchantID: merchantID,
		CustomerID: "cust-ext-7",
		Items:      []ExternalItem{externalItem("Widget", "10.00", 1, "p1", "")},
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.Sale{}).
		Where("id = ?", sale.ID).
		Update("status", enums.OrderStatusCompleted).Error)

	price := decimal.RequireFromString("11.00")
	_, err = env.svc.RecordWebPush(ctx, RecordWebPushInput{
		MerchantID:  merchantID,
		OrderID:     sale.ID,
		Succeeded:   true,
		ProductName: "Widget Rewritten",
		Price:       &price,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	items, err := env.repo.FindItemsBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].ProductName)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("10.00")))
}
