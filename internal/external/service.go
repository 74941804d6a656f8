package external

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chatcartlabs/chatcart-backend/internal/orders"
	"github.com/chatcartlabs/chatcart-backend/pkg/db/models"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox"
	"github.com/chatcartlabs/chatcart-backend/pkg/outbox/payloads"
	"github.com/chatcartlabs/chatcart-backend/pkg/shortid"
)

type service struct {
	repo          orders.Repository
	conversations ConversationFinder
	placeholders  PlaceholderProvider
	tx            txRunner
	outbox        outboxPublisher
	logg          *logger.Logger
}

// NewService builds the external order synchronizer.
func NewService(repo orders.Repository, conversations ConversationFinder, placeholders PlaceholderProvider, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if conversations == nil {
		return nil, fmt.Errorf("conversation finder required")
	}
	if placeholders == nil {
		return nil, fmt.Errorf("placeholder provider required")
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
	return &service{
		repo:          repo,
		conversations: conversations,
		placeholders:  placeholders,
		tx:            tx,
		outbox:        outboxSvc,
		logg:          logg,
	}, nil
}

func (s *service) Ingest(ctx context.Context, input IngestInput) (*models.Sale, error) {
	input.CustomerID = strings.TrimSpace(input.CustomerID)
	if input.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = enums.OrderStatusDraft
	}
	if status != enums.OrderStatusDraft && status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external orders start as draft or pending")
	}

	conversation, err := s.conversations.FindConversation(ctx, input.MerchantID, input.CustomerID)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no conversation for customer").
				WithDetails(map[string]any{"customer_id": input.CustomerID})
		}
		return nil, err
	}

	var created *models.Sale
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		placeholder, err := s.placeholders.EnsurePlaceholder(ctx, tx, input.MerchantID)
		if err != nil {
			return err
		}

		sale, err := repo.CreateSale(ctx, &models.Sale{
			OID:             shortid.NewOrderID(),
			MerchantID:      input.MerchantID,
			ConversationID:  &conversation.ID,
			Source:          enums.OrderSourceExternal,
			CustomerID:      input.CustomerID,
			ExternalOrderID: input.ExternalOrderID,
			Amount:          sumExternalItems(input.Items),
			Status:          status,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create external sale")
		}

		if _, err := repo.CreateOrderItems(ctx, buildExternalItems(sale.ID, placeholder.ID, input.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create external order items")
		}
		created = sale

		return s.emitSynced(ctx, tx, sale, "ingest", len(input.Items))
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, created.OID), "external order ingested")
	return created, nil
}

func (s *service) Replace(ctx context.Context, input ReplaceInput) (*models.Sale, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	var replaced *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadExternalSale(ctx, repo, input.MerchantID, input.OrderID)
		if err != nil {
			return err
		}
		if sale.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order items are frozen").
				WithDetails(map[string]any{"status": string(sale.Status)})
		}

		if customerID := strings.TrimSpace(input.CustomerID); customerID != "" && customerID != sale.CustomerID {
			conversation, err := s.conversations.FindConversation(ctx, input.MerchantID, customerID)
			if err != nil {
				if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "no conversation for customer").
						WithDetails(map[string]any{"customer_id": customerID})
				}
				return err
			}
			sale.CustomerID = customerID
			sale.ConversationID = &conversation.ID
		}

		placeholder, err := s.placeholders.EnsurePlaceholder(ctx, tx, input.MerchantID)
		if err != nil {
			return err
		}

		if err := repo.DeleteItemsBySale(ctx, sale.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear order items")
		}
		if _, err := repo.CreateOrderItems(ctx, buildExternalItems(sale.ID, placeholder.ID, input.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recreate order items")
		}

		sale.Amount = sumExternalItems(input.Items)
		sale.Status = enums.OrderStatusDraft
		if err := repo.UpdateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
		}
		replaced = sale

		return s.emitSynced(ctx, tx, sale, "replace", len(input.Items))
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

func (s *service) Merge(ctx context.Context, input MergeInput) (*models.Sale, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	var merged *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadExternalSale(ctx, repo, input.MerchantID, input.OrderID)
		if err != nil {
			return err
		}
		if sale.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order items are frozen").
				WithDetails(map[string]any{"status": string(sale.Status)})
		}

		placeholder, err := s.placeholders.EnsurePlaceholder(ctx, tx, input.MerchantID)
		if err != nil {
			return err
		}

		amount := sale.Amount
		for _, incoming := range input.Items {
			line := incoming.Price.Mul(decimal.NewFromInt(int64(incoming.Quantity)))

			existing, err := repo.FindItemByExternalIDs(ctx, sale.ID, incoming.ExternalProductID, incoming.ExternalVariantID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match order item")
				}
				items := buildExternalItems(sale.ID, placeholder.ID, []ExternalItem{incoming})
				if _, err := repo.CreateOrderItems(ctx, items); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create merged item")
				}
				amount = amount.Add(line)
				continue
			}

			// Net out the old contribution before applying the new one so
			// repeated merges never drift the total.
			amount = amount.Sub(existing.Price.Mul(decimal.NewFromInt(int64(existing.Qty)))).Add(line)
			existing.Price = incoming.Price
			existing.Qty = incoming.Quantity
			if incoming.Name != "" {
				existing.ProductName = incoming.Name
			}
			if incoming.RawData != nil {
				existing.RawProductData = incoming.RawData
			}
			if err := repo.UpdateOrderItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update merged item")
			}
		}

		sale.Amount = amount
		if err := repo.UpdateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
		}
		merged = sale

		return s.emitSynced(ctx, tx, sale, "merge", len(input.Items))
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *service) Confirm(ctx context.Context, merchantID, orderID uuid.UUID) (*models.Sale, error) {
	var confirmed *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadExternalSale(ctx, repo, merchantID, orderID)
		if err != nil {
			return err
		}
		if sale.Status == enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already confirmed")
		}
		if sale.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order items are frozen").
				WithDetails(map[string]any{"status": string(sale.Status)})
		}

		items, err := repo.FindItemsBySale(ctx, sale.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no items")
		}

		amount := decimal.Zero
		for i := range items {
			amount = amount.Add(items[i].LineTotal())
		}
		sale.Amount = amount
		sale.Status = enums.OrderStatusPending
		if err := repo.UpdateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm sale")
		}
		confirmed = sale

		platform := enums.PlatformMessenger
		if conversation, err := s.conversations.FindConversation(ctx, sale.MerchantID, sale.CustomerID); err == nil {
			platform = conversation.Platform
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
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
			},
		}); err != nil {
			return err
		}

		// Re-confirming before the dispatcher picked up the previous
		// intent coalesces into the already-pending row.
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWebPushRequested,
			AggregateType: enums.AggregateSale,
			AggregateID:   sale.ID,
			Version:       1,
			Data: payloads.WebPushRequestedEvent{
				SaleID:          sale.ID,
				OID:             sale.OID,
				MerchantID:      sale.MerchantID,
				ExternalOrderID: sale.ExternalOrderID,
				Platform:        platform,
				Amount:          sale.Amount,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, confirmed.OID), "external order confirmed")
	return confirmed, nil
}

func (s *service) RecordWebPush(ctx context.Context, input RecordWebPushInput) (*models.Sale, error) {
	var recorded *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := s.loadExternalSale(ctx, repo, input.MerchantID, input.OrderID)
		if err != nil {
			return err
		}
		if sale.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order items are frozen").
				WithDetails(map[string]any{"status": string(sale.Status)})
		}

		outcome := enums.WebSyncFailed
		if input.Succeeded {
			outcome = enums.WebSyncUpdated
			if err := s.applyPushMetadata(ctx, repo, sale, input); err != nil {
				// Metadata trouble downgrades the outcome but never blocks
				// recording the attempt.
				s.logg.Error(ctx, "applying web push metadata", err)
				outcome = enums.WebSyncFailed
			}
		}

		sale.UpdatedToWeb = &outcome
		if err := repo.UpdateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record web push")
		}
		recorded = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

func (s *service) applyPushMetadata(ctx context.Context, repo orders.Repository, sale *models.Sale, input RecordWebPushInput) error {
	if input.ProductName == "" && input.Price == nil && input.RawPayload == nil {
		return nil
	}
	items, err := repo.FindItemsBySale(ctx, sale.ID)
	if err != nil {
		return err
	}
	for i := range items {
		item := &items[i]
		if input.ProductName != "" {
			item.ProductName = input.ProductName
		}
		if input.Price != nil {
			item.Price = *input.Price
		}
		if input.RawPayload != nil {
			item.RawProductData = input.RawPayload
		}
		if err := repo.UpdateOrderItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) loadExternalSale(ctx context.Context, repo orders.Repository, merchantID, orderID uuid.UUID) (*models.Sale, error) {
	sale, err := repo.FindSaleByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if sale.MerchantID != merchantID || sale.Source != enums.OrderSourceExternal {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return sale, nil
}

func (s *service) emitSynced(ctx context.Context, tx *gorm.DB, sale *models.Sale, operation string, itemCount int) error {
	externalOrderID := ""
	if sale.ExternalOrderID != nil {
		externalOrderID = *sale.ExternalOrderID
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventExternalOrderSynced,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Version:       1,
		Data: payloads.ExternalOrderSyncedEvent{
			SaleID:          sale.ID,
			OID:             sale.OID,
			MerchantID:      sale.MerchantID,
			ExternalOrderID: externalOrderID,
			Operation:       operation,
			Amount:          sale.Amount,
			ItemCount:       itemCount,
		},
	})
}

func validateItems(items []ExternalItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: name required", i))
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: price must not be negative", i))
		}
	}
	return nil
}

func sumExternalItems(items []ExternalItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func buildExternalItems(saleID, placeholderID uuid.UUID, items []ExternalItem) []models.OrderItem {
	built := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		built = append(built, models.OrderItem{
			SaleID:            saleID,
			ProductID:         placeholderID,
			ProductName:       item.Name,
			Price:             item.Price,
			Qty:               item.Quantity,
			Action:            enums.LineActionBase,
			ExternalProductID: item.ExternalProductID,
			ExternalVariantID: item.ExternalVariantID,
			RawProductData:    item.RawData,
		})
	}
	return built
}
