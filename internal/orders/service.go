package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/pkg/config"
	dbpkg "github.com/chatcartlabs/chatcart-backend/pkg/db"
	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox/payloads"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
	"github.com/chatcartlabs/chatcart-backend/pkg/shortid"
)

type service struct {
	repo    Repository
	catalog ProductLoader
	stock   StockAdjuster
	tx      txRunner
	outbox  outboxPublisher
	cfg     config.OrdersConfig
	logg    *logger.Logger
}

// NewService builds the order ledger with the required dependencies.
func NewService(repo Repository, catalog ProductLoader, stock StockAdjuster, tx txRunner, outboxSvc outboxPublisher, cfg config.OrdersConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, catalog: catalog, stock: stock, tx: tx, outbox: outboxSvc, cfg: cfg, logg: logg}, nil
}

func (s *service) StartDraft(ctx context.Context, input StartDraftInput) (*models.Sale, error) {
	input.CustomerID = strings.TrimSpace(input.CustomerID)
	if input.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	existing, err := s.repo.FindDraftByCustomer(ctx, input.MerchantID, input.CustomerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}

	sale, err := s.repo.CreateSale(ctx, &models.Sale{
		OID:            shortid.NewOrderID(),
		MerchantID:     input.MerchantID,
		ConversationID: input.ConversationID,
		Source:         enums.OrderSourceInternal,
		CustomerID:     input.CustomerID,
		Status:         enums.OrderStatusDraft,
	})
	if err != nil {
		// A concurrent StartDraft may have won the partial unique index.
		if dbpkg.IsUniqueViolation(err, "ux_sales_merchant_customer_draft") {
			return s.repo.FindDraftByCustomer(ctx, input.MerchantID, input.CustomerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft")
	}
	s.logg.Info(s.logg.WithOrderID(ctx, sale.OID), "draft started")
	return sale, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.OrderItem, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var created *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadEditableSale(ctx, repo, input.MerchantID, input.OrderID)
		if err != nil {
			return err
		}
		product, err := s.resolveProduct(ctx, input.MerchantID, input.Product)
		if err != nil {
			return err
		}

		if _, err := repo.FindItemBySaleAndProduct(ctx, sale.ID, product.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "product already on order, update its quantity instead").
				WithDetails(map[string]any{"product_id": product.ID.String()})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing line")
		}

		if err := s.stock.Adjust(ctx, tx, product.ID, -input.Quantity); err != nil {
			return err
		}

		items, err := repo.CreateOrderItems(ctx, []models.OrderItem{{
			SaleID:            sale.ID,
			ProductID:         product.ID,
			InternalProductID: &product.ID,
			ProductName:       product.Name,
			Price:             product.EffectivePrice(),
			Qty:               input.Quantity,
			Action:            enums.LineActionBase,
		}})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order item")
		}
		created = &items[0]

		return s.refreshAmount(ctx, repo, sale)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, input UpdateItemQuantityInput) (*models.OrderItem, error) {
	if input.NewQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var updated *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadEditableSale(ctx, repo, input.MerchantID, input.OrderID)
		if err != nil {
			return err
		}
		product, err := s.resolveProduct(ctx, input.MerchantID, input.Product)
		if err != nil {
			return err
		}
		item, err := repo.FindItemBySaleAndProduct(ctx, sale.ID, product.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product is not on the order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		diff := input.NewQuantity - item.Qty
		if diff != 0 {
			if err := s.stock.Adjust(ctx, tx, product.ID, -diff); err != nil {
				return err
			}
		}

		item.Qty = input.NewQuantity
		if err := repo.UpdateOrderItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
		}
		updated = item

		return s.refreshAmount(ctx, repo, sale)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) RemoveItem(ctx context.Context, input RemoveItemInput) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadEditableSale(ctx, repo, input.MerchantID, input.OrderID)
		if err != nil {
			return err
		}
		product, err := s.resolveProduct(ctx, input.MerchantID, input.Product)
		if err != nil {
			return err
		}
		item, err := repo.FindItemBySaleAndProduct(ctx, sale.ID, product.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product is not on the order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		if err := s.stock.Adjust(ctx, tx, product.ID, item.Qty); err != nil {
			return err
		}
		if err := repo.DeleteOrderItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order item")
		}

		return s.refreshAmount(ctx, repo, sale)
	})
}

func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*models.Sale, error) {
	var confirmed *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadSale(ctx, repo, input.MerchantID, input.OrderID)
		if err != nil {
			return err
		}
		if sale.Status != enums.OrderStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft orders can be confirmed").
				WithDetails(map[string]any{"status": string(sale.Status)})
		}

		items, err := repo.FindItemsBySale(ctx, sale.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		amount, billable := sumLines(items)
		if billable == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no items")
		}

		sale.Amount = amount
		sale.Status = enums.OrderStatusPending
		if input.CustomerName != nil {
			sale.CustomerName = input.CustomerName
		}
		if input.CustomerAddress != nil {
			sale.Address = input.CustomerAddress
		}
		if input.CustomerPhone != nil {
			sale.Phone = input.CustomerPhone
		}
		if input.DeliveryZone != nil {
			sale.DeliveryZone = input.DeliveryZone
		}
		if err := repo.UpdateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
		}
		confirmed = sale

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Actor:         &outbox.ActorRef{MerchantID: sale.MerchantID, CustomerID: sale.CustomerID},
			Version:       1,
			Data: payloads.OrderConfirmedEvent{
				SaleID:         sale.ID,
				OID:            sale.OID,
				MerchantID:     sale.MerchantID,
				ConversationID: sale.ConversationID,
				CustomerID:     sale.CustomerID,
				Source:         sale.Source,
				Amount:         sale.Amount,
				ItemCount:      len(items),
				ConfirmedAt:    time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, confirmed.OID), "order confirmed")
	return confirmed, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Sale, error) {
	input.CustomerID = strings.TrimSpace(input.CustomerID)
	if input.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	target, err := ResolveTarget(input)
	if err != nil {
		return nil, err
	}

	var created *models.Sale
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		switch target.Kind {
		case TargetProduct:
			created, err = s.createProductOrder(ctx, tx, input, target.ProductID)
		case TargetPackage:
			created, err = s.createPackageOrder(ctx, tx, input, target.PackageID)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "unknown order target")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, created.OID), "order created")
	return created, nil
}

func (s *service) createProductOrder(ctx context.Context, tx *gorm.DB, input CreateOrderInput, productID uuid.UUID) (*models.Sale, error) {
	repo := s.repo.WithTx(tx)
	product, err := s.resolveProduct(ctx, input.MerchantID, ProductRef{ProductID: &productID})
	if err != nil {
		return nil, err
	}
	if err := s.stock.Adjust(ctx, tx, product.ID, -1); err != nil {
		return nil, err
	}

	price := product.EffectivePrice()
	sale, err := repo.CreateSale(ctx, &models.Sale{
		OID:            shortid.NewOrderID(),
		MerchantID:     input.MerchantID,
		ConversationID: input.ConversationID,
		Source:         enums.OrderSourceInternal,
		CustomerID:     input.CustomerID,
		CustomerName:   input.CustomerName,
		Address:        input.CustomerAddress,
		Phone:          input.CustomerPhone,
		DeliveryZone:   input.DeliveryZone,
		Amount:         price,
		Status:         enums.OrderStatusPending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}

	items, err := repo.CreateOrderItems(ctx, []models.OrderItem{{
		SaleID:            sale.ID,
		ProductID:         product.ID,
		InternalProductID: &product.ID,
		ProductName:       product.Name,
		Price:             price,
		Qty:               1,
		Action:            enums.LineActionBase,
	}})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order item")
	}
	sale.Items = items

	if err := s.emitConfirmed(ctx, tx, sale, len(items)); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) createPackageOrder(ctx context.Context, tx *gorm.DB, input CreateOrderInput, packageID uuid.UUID) (*models.Sale, error) {
	repo := s.repo.WithTx(tx)

	pkg, err := s.catalog.FindPackageByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load package")
	}
	if pkg.MerchantID != input.MerchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
	}

	addProducts := make([]*models.Product, 0, len(input.AddProductIDs))
	for _, id := range input.AddProductIDs {
		product, err := s.resolveProduct(ctx, input.MerchantID, ProductRef{ProductID: &id})
		if err != nil {
			return nil, err
		}
		addProducts = append(addProducts, product)
	}

	composition, err := ResolvePackageComposition(pkg, addProducts, input.RemoveProductIDs)
	if err != nil {
		return nil, err
	}

	// Package orders skip stock tracking unless the policy flag says
	// otherwise; see config.OrdersConfig.
	if s.cfg.DeductPackageStock {
		for i := range composition.Items {
			if composition.Items[i].Action == enums.LineActionRemoved {
				continue
			}
			if err := s.stock.Adjust(ctx, tx, composition.Items[i].ProductID, -composition.Items[i].Qty); err != nil {
				return nil, err
			}
		}
	}

	sale, err := repo.CreateSale(ctx, &models.Sale{
		OID:            shortid.NewOrderID(),
		MerchantID:     input.MerchantID,
		ConversationID: input.ConversationID,
		PackageID:      &pkg.ID,
		Source:         enums.OrderSourceInternal,
		CustomerID:     input.CustomerID,
		CustomerName:   input.CustomerName,
		Address:        input.CustomerAddress,
		Phone:          input.CustomerPhone,
		DeliveryZone:   input.DeliveryZone,
		Amount:         composition.Total,
		Status:         enums.OrderStatusPending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}

	for i := range composition.Items {
		composition.Items[i].SaleID = sale.ID
	}
	items, err := repo.CreateOrderItems(ctx, composition.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
	}
	sale.Items = items

	if err := s.emitConfirmed(ctx, tx, sale, len(items)); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) UpdateStatus(ctx context.Context, merchantID, orderID uuid.UUID, status enums.OrderStatus) (*models.Sale, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	var updated *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadSale(ctx, repo, merchantID, orderID)
		if err != nil {
			return err
		}
		from := sale.Status
		if !from.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition disallowed").
				WithDetails(map[string]any{"from": string(from), "to": string(status)})
		}

		sale.Status = status
		if err := repo.UpdateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		updated = sale

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Version:       1,
			Data: payloads.OrderStatusChangedEvent{
				SaleID:     sale.ID,
				OID:        sale.OID,
				MerchantID: sale.MerchantID,
				FromStatus: from,
				ToStatus:   status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) GetOrder(ctx context.Context, merchantID, orderID uuid.UUID) (*models.Sale, error) {
	return s.loadSale(ctx, s.repo, merchantID, orderID)
}

func (s *service) GetOrderByOID(ctx context.Context, merchantID uuid.UUID, oid string) (*models.Sale, error) {
	sale, err := s.repo.FindSaleByOID(ctx, merchantID, oid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return sale, nil
}

func (s *service) ListOrders(ctx context.Context, merchantID uuid.UUID, filter ListFilter, params pagination.Params) (*SaleList, error) {
	list, err := s.repo.ListSales(ctx, merchantID, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) loadSale(ctx context.Context, repo Repository, merchantID, orderID uuid.UUID) (*models.Sale, error) {
	sale, err := repo.FindSaleByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if sale.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return sale, nil
}

func (s *service) loadEditableSale(ctx context.Context, repo Repository, merchantID, orderID uuid.UUID) (*models.Sale, error) {
	sale, err := s.loadSale(ctx, repo, merchantID, orderID)
	if err != nil {
		return nil, err
	}
	if !sale.Status.IsEditable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order items are frozen").
			WithDetails(map[string]any{"status": string(sale.Status)})
	}
	// Package orders carry a composed total; per-line edits would silently
	// replace it with a sum of catalog prices.
	if sale.PackageID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "package order items are fixed").
			WithDetails(map[string]any{"package_id": sale.PackageID.String()})
	}
	return sale, nil
}

func (s *service) resolveProduct(ctx context.Context, merchantID uuid.UUID, ref ProductRef) (*models.Product, error) {
	var (
		product *models.Product
		err     error
	)
	switch {
	case ref.ProductID != nil && ref.SKU != "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supply a product id or a sku, not both")
	case ref.ProductID != nil:
		product, err = s.catalog.FindProductByID(ctx, *ref.ProductID)
	case ref.SKU != "":
		product, err = s.catalog.FindProductBySKU(ctx, merchantID, ref.SKU)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product reference required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.MerchantID != merchantID || product.IsPlaceholder {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// refreshAmount keeps the draft amount in step with its lines so the cart
// total is presentable before confirmation freezes it.
func (s *service) refreshAmount(ctx context.Context, repo Repository, sale *models.Sale) error {
	items, err := repo.FindItemsBySale(ctx, sale.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	amount, _ := sumLines(items)
	sale.Amount = amount
	if err := repo.UpdateSale(ctx, sale); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order amount")
	}
	return nil
}

func (s *service) emitConfirmed(ctx context.Context, tx *gorm.DB, sale *models.Sale, itemCount int) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderConfirmed,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Actor:         &outbox.ActorRef{MerchantID: sale.MerchantID, CustomerID: sale.CustomerID},
		Version:       1,
		Data: payloads.OrderConfirmedEvent{
			SaleID:         sale.ID,
			OID:            sale.OID,
			MerchantID:     sale.MerchantID,
			ConversationID: sale.ConversationID,
			CustomerID:     sale.CustomerID,
			Source:         sale.Source,
			Amount:         sale.Amount,
			ItemCount:      itemCount,
			ConfirmedAt:    time.Now().UTC(),
		},
	})
}

func sumLines(items []models.OrderItem) (amount decimal.Decimal, billable int) {
	amount = decimal.Zero
	for i := range items {
		if items[i].Action == enums.LineActionRemoved {
			continue
		}
		amount = amount.Add(items[i].LineTotal())
		billable++
	}
	return amount, billable
}
