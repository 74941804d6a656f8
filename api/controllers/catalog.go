package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chatcartlabs/chatcart-backend/api/middleware"
	"github.com/chatcartlabs/chatcart-backend/api/responses"
	"github.com/chatcartlabs/chatcart-backend/api/validators"
	"github.com/chatcartlabs/chatcart-backend/internal/catalog"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/pagination"
)

type restockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=256"`
}

// ListProducts returns the merchant's catalog page by page, newest first.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListProducts(r.Context(), merchantID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), merchantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func GetProductBySKU(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		sku := validators.SanitizeString(chi.URLParam(r, "sku"), 64)
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		product, err := svc.GetProductBySKU(r.Context(), merchantID, sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func GetPackage(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		packageID, err := validators.ParseURLUUID(r, "packageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pkg, err := svc.GetPackage(r.Context(), merchantID, packageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pkg)
	}
}

// RestockProduct applies a manual stock adjustment from the dashboard.
func RestockProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req restockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Restock(r.Context(), catalog.RestockInput{
			MerchantID: merchantID,
			ProductID:  productID,
			Delta:      req.Delta,
			Reason:     validators.SanitizeString(req.Reason, 256),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
