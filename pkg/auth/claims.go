package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	MerchantID uuid.UUID
	Plan       enums.MerchantPlan
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to merchant clients.
type AccessTokenClaims struct {
	MerchantID uuid.UUID          `json:"merchant_id"`
	Plan       enums.MerchantPlan `json:"plan"`
	jwt.RegisteredClaims
}
