package controllers

import (
	"net/http"

	"github.com/chatcartlabs/chatcart-backend/api/middleware"
	"github.com/chatcartlabs/chatcart-backend/api/responses"
	"github.com/chatcartlabs/chatcart-backend/api/validators"
	"github.com/chatcartlabs/chatcart-backend/internal/conversations"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
	pkgerrors "github.com/chatcartlabs/chatcart-backend/pkg/errors"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
)

type startConversationRequest struct {
	Platform   string `json:"platform" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required,max=128"`
}

// StartConversation registers (or resumes) a chat thread for a customer.
func StartConversation(svc conversations.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		var req startConversationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		platform, err := enums.ParsePlatform(req.Platform)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platform"))
			return
		}

		conversation, err := svc.StartConversation(r.Context(), conversations.StartConversationInput{
			MerchantID: merchantID,
			Platform:   platform,
			CustomerID: validators.SanitizeString(req.CustomerID, 128),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, conversation)
	}
}

func GetConversation(svc conversations.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		conversationID, err := validators.ParseURLUUID(r, "conversationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversation, err := svc.GetConversation(r.Context(), merchantID, conversationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, conversation)
	}
}

// FindConversation resolves the latest chat thread for a customer id.
func FindConversation(svc conversations.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.MerchantIDFromContext(r.Context())

		customerID := validators.SanitizeString(r.URL.Query().Get("customer_id"), 128)
		if customerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required"))
			return
		}

		conversation, err := svc.FindConversation(r.Context(), merchantID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, conversation)
	}
}
