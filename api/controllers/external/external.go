package external

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chatcartlabs/chatcart-backend/api/middleware"
	"github.com/chatcartlabs/chatcart-backend/api/responses"
	"github.com/chatcartlabs/chatcart-backend/api/validators"
	internalexternal "github.com/chatcartlabs/chatcart-backend/internal/external"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/types"
)

type itemRequest struct {
	ExternalProductID *string         `json:"external_product_id" validate:"omitempty,max=128"`
	ExternalVariantID *string         `json:"external_variant_id" validate:"omitempty,max=128"`
	Name              string          `json:"name" validate:"required,max=256"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity" validate:"required,min=1"`
	RawData           types.JSONMap   `json:"raw_data"`
}

type ingestRequest struct {
	CustomerID      string        `json:"customer_id" validate:"required,max=128"`
	ExternalOrderID *string       `json:"external_order_id" validate:"omitempty,max=128"`
	Status          string        `json:"status" validate:"omitempty,oneof=draft pending"`
	Items           []itemRequest `json:"items" validate:"required,min=1,dive"`
}

type replaceRequest struct {
	CustomerID string        `json:"customer_id" validate:"omitempty,max=128"`
	Items      []itemRequest `json:"items" validate:"required,min=1,dive"`
}

type mergeRequest struct {
	Items []itemRequest `json:"items" validate:"required,min=1,dive"`
}

type webPushRequest struct {
	Succeeded   bool             `json:"succeeded"`
	ProductName string           `json:"product_name" validate:"omitempty,max=256"`
	Price       *decimal.Decimal `json:"price"`
	RawPayload  types.JSONMap    `json:"raw_payload"`
}

// Ingest creates a sale from an external channel order.
func Ingest(svc internalexternal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		var req ingestRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Ingest(r.Context(), internalexternal.IngestInput{
			MerchantID:      merchantID,
			CustomerID:      validators.SanitizeString(req.CustomerID, 128),
			ExternalOrderID: req.ExternalOrderID,
			Status:          enums.OrderStatus(strings.TrimSpace(req.Status)),
			Items:           toExternalItems(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// Replace swaps the order's entire line set with the channel's snapshot.
func Replace(svc internalexternal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req replaceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Replace(r.Context(), internalexternal.ReplaceInput{
			MerchantID: merchantID,
			OrderID:    orderID,
			CustomerID: validators.SanitizeString(req.CustomerID, 128),
			Items:      toExternalItems(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// Merge patches individual lines matched by the channel's identifiers.
func Merge(svc internalexternal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req mergeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Merge(r.Context(), internalexternal.MergeInput{
			MerchantID: merchantID,
			OrderID:    orderID,
			Items:      toExternalItems(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// Confirm promotes an ingested order to pending and queues the web push.
func Confirm(svc internalexternal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Confirm(r.Context(), merchantID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// RecordWebPush records the outcome of the latest web channel push.
func RecordWebPush(svc internalexternal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req webPushRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.RecordWebPush(r.Context(), internalexternal.RecordWebPushInput{
			MerchantID:  merchantID,
			OrderID:     orderID,
			Succeeded:   req.Succeeded,
			ProductName: validators.SanitizeString(req.ProductName, 256),
			Price:       req.Price,
			RawPayload:  req.RawPayload,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func toExternalItems(items []itemRequest) []internalexternal.ExternalItem {
	out := make([]internalexternal.ExternalItem, 0, len(items))
	for _, item := range items {
		out = append(out, internalexternal.ExternalItem{
			ExternalProductID: item.ExternalProductID,
			ExternalVariantID: item.ExternalVariantID,
			Name:              validators.SanitizeString(item.Name, 256),
			Price:             item.Price,
			Quantity:          item.Quantity,
			RawData:           item.RawData,
		})
	}
	return out
}
