package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/api/middleware"
	"github.com/chatcartlabs/chatcart-backend/api/responses"
	"github.com/chatcartlabs/chatcart-backend/api/validators"
	internalorders "github.com/chatcartlabs/chatcart-backend/internal/orders"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
)

type startDraftRequest struct {
	CustomerID     string     `json:"customer_id" validate:"required,max=128"`
	ConversationID *uuid.UUID `json:"conversation_id"`
}

type lineItemRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	SKU       string     `json:"sku" validate:"omitempty,max=64"`
	Quantity  int        `json:"quantity" validate:"omitempty,min=1"`
}

type confirmRequest struct {
	CustomerName    *string `json:"customer_name" validate:"omitempty,max=256"`
	CustomerAddress *string `json:"customer_address" validate:"omitempty,max=512"`
	CustomerPhone   *string `json:"customer_phone" validate:"omitempty,max=32"`
	DeliveryZone    *string `json:"delivery_zone"`
}

type createOrderRequest struct {
	CustomerID     string     `json:"customer_id" validate:"required,max=128"`
	ConversationID *uuid.UUID `json:"conversation_id"`

	ProductID *uuid.UUID `json:"product_id"`
	PackageID *uuid.UUID `json:"package_id"`

	AddProductIDs    []uuid.UUID `json:"add_product_ids"`
	RemoveProductIDs []uuid.UUID `json:"remove_product_ids"`

	CustomerName    *string `json:"customer_name" validate:"omitempty,max=256"`
	CustomerAddress *string `json:"customer_address" validate:"omitempty,max=512"`
	CustomerPhone   *string `json:"customer_phone" validate:"omitempty,max=32"`
	DeliveryZone    *string `json:"delivery_zone"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// StartDraft opens (or resumes) the customer's draft order.
func StartDraft(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		var req startDraftRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.StartDraft(r.Context(), internalorders.StartDraftInput{
			MerchantID:     merchantID,
			CustomerID:     validators.SanitizeString(req.CustomerID, 128),
			ConversationID: req.ConversationID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// AddItem appends a priced line to a draft order.
func AddItem(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req lineItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), internalorders.AddItemInput{
			MerchantID: merchantID,
			OrderID:    orderID,
			Product:    productRef(req),
			Quantity:   req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// UpdateItemQuantity sets the quantity on an existing draft line.
func UpdateItemQuantity(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req lineItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItemQuantity(r.Context(), internalorders.UpdateItemQuantityInput{
			MerchantID:  merchantID,
			OrderID:     orderID,
			Product:     productRef(req),
			NewQuantity: req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// RemoveItem drops a draft line and restores its stock.
func RemoveItem(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req lineItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), internalorders.RemoveItemInput{
			MerchantID: merchantID,
			OrderID:    orderID,
			Product:    productRef(req),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// Confirm freezes a draft into a pending order.
func Confirm(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req confirmRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		zone, err := parseDeliveryZone(req.DeliveryZone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Confirm(r.Context(), internalorders.ConfirmInput{
			MerchantID:      merchantID,
			OrderID:         orderID,
			CustomerName:    req.CustomerName,
			CustomerAddress: req.CustomerAddress,
			CustomerPhone:   req.CustomerPhone,
			DeliveryZone:    zone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// Create builds a one-shot order for a single product or a customized package.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		zone, err := parseDeliveryZone(req.DeliveryZone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.CreateOrder(r.Context(), internalorders.CreateOrderInput{
			MerchantID:       merchantID,
			CustomerID:       validators.SanitizeString(req.CustomerID, 128),
			ConversationID:   req.ConversationID,
			ProductID:        req.ProductID,
			PackageID:        req.PackageID,
			AddProductIDs:    req.AddProductIDs,
			RemoveProductIDs: req.RemoveProductIDs,
			CustomerName:     req.CustomerName,
			CustomerAddress:  req.CustomerAddress,
			CustomerPhone:    req.CustomerPhone,
			DeliveryZone:     zone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// UpdateStatus applies an admin-driven status transition.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		sale, err := svc.UpdateStatus(r.Context(), merchantID, orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// Detail returns a single order with its items.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.GetOrder(r.Context(), merchantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// DetailByCode resolves an order by its public short code.
func DetailByCode(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		oid := validators.SanitizeString(chi.URLParam(r, "oid"), 32)
		if oid == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order code is required"))
			return
		}

		sale, err := svc.GetOrderByOID(r.Context(), merchantID, oid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// List returns the merchant's paginated order dashboard.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filter, err := buildListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), merchantID, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func buildListFilter(r *http.Request) (internalorders.ListFilter, error) {
	var filter internalorders.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("source")); raw != "" {
		source, err := enums.ParseOrderSource(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source filter")
		}
		filter.Source = &source
	}
	return filter, nil
}

func productRef(req lineItemRequest) internalorders.ProductRef {
	return internalorders.ProductRef{
		ProductID: req.ProductID,
		SKU:       validators.SanitizeString(req.SKU, 64),
	}
}

func parseDeliveryZone(raw *string) (*enums.DeliveryZone, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	zone, err := enums.ParseDeliveryZone(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery zone")
	}
	return &zone, nil
}
