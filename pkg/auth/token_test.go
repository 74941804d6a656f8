package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/pkg/config"
	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "chatcart",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	merchantID := uuid.New()

	payload := AccessTokenPayload{
		MerchantID: merchantID,
		Plan:       enums.MerchantPlanPro,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.MerchantID != merchantID {
		t.Fatalf("expected merchant_id %s, got %s", merchantID, claims.MerchantID)
	}
	if claims.Plan != enums.MerchantPlanPro {
		t.Fatalf("unexpected plan %s", claims.Plan)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestMintAccessTokenRejectsMissingMerchant(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "chatcart",
		ExpirationMinutes: 30,
	}

	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Plan: enums.MerchantPlanFree,
	})
	if err == nil || !strings.Contains(err.Error(), "merchant id") {
		t.Fatalf("expected merchant id error, got %v", err)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "chatcart",
		ExpirationMinutes: 30,
	}

	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		MerchantID: uuid.New(),
		Plan:       enums.MerchantPlanFree,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	cfg.Secret = "other"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected signature validation to fail")
	}
}
