package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the GORM-backed sales repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *repository) FindSaleByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindSaleByOID(ctx context.Context, merchantID uuid.UUID, oid string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("merchant_id = ? AND oid = ?", merchantID, oid).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindSaleByExternalOrderID(ctx context.Context, merchantID uuid.UUID, externalOrderID string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("merchant_id = ? AND external_order_id = ?", merchantID, externalOrderID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindDraftByCustomer(ctx context.Context, merchantID uuid.UUID, customerID string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("merchant_id = ? AND customer_id = ? AND status = ?", merchantID, customerID, enums.OrderStatusDraft).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) UpdateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"conversation_id":   sale.ConversationID,
			"customer_name":     sale.CustomerName,
			"phone":             sale.Phone,
			"address":           sale.Address,
			"delivery_zone":     sale.DeliveryZone,
			"amount":            sale.Amount,
			"status":            sale.Status,
			"external_order_id": sale.ExternalOrderID,
			"updated_to_web":    sale.UpdatedToWeb,
		}).Error
}

func (r *repository) ListSales(ctx context.Context, merchantID uuid.UUID, filter ListFilter, params pagination.Params) (*SaleList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Sale{}).
		Preload("Items").
		Where("merchant_id = ?", merchantID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var sales []models.Sale
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&sales).Error; err != nil {
		return nil, err
	}

	list := &SaleList{}
	if len(sales) > normalized {
		sales = sales[:normalized]
		last := sales[len(sales)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for _, sale := range sales {
		list.Sales = append(list.Sales, SaleSummary{
			ID:           sale.ID,
			OID:          sale.OID,
			CustomerID:   sale.CustomerID,
			CustomerName: sale.CustomerName,
			Source:       sale.Source,
			Status:       sale.Status,
			Amount:       sale.Amount,
			ItemCount:    len(sale.Items),
			CreatedAt:    sale.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return items, nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItemsBySale(ctx context.Context, saleID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItemBySaleAndProduct(ctx context.Context, saleID, productID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("sale_id = ? AND product_id = ?", saleID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByExternalIDs(ctx context.Context, saleID uuid.UUID, externalProductID, externalVariantID *string) (*models.OrderItem, error) {
	query := r.db.WithContext(ctx).Where("sale_id = ?", saleID)
	if externalProductID != nil {
		query = query.Where("external_product_id = ?", *externalProductID)
	} else {
		query = query.Where("external_product_id IS NULL")
	}
	if externalVariantID != nil {
		query = query.Where("external_variant_id = ?", *externalVariantID)
	} else {
		query = query.Where("external_variant_id IS NULL")
	}

	var item models.OrderItem
	if err := query.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	// Struct-based update so the raw_product_data json serializer applies;
	// Select forces zero values (qty back to 1, cleared name) through.
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", item.ID).
		Select("product_name", "price", "qty", "internal_product_id", "raw_product_data").
		Updates(item).Error
}

func (r *repository) DeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.OrderItem{}).Error
}

func (r *repository) DeleteItemsBySale(ctx context.Context, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Delete(&models.OrderItem{}).Error
}
