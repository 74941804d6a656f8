package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

type contextKey string

const (
	ctxMerchantID contextKey = "merchant_id"
	ctxPlan       contextKey = "merchant_plan"
)

// MerchantIDFromContext returns the authenticated merchant, or uuid.Nil
// when the request was not authenticated.
func MerchantIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxMerchantID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func PlanFromContext(ctx context.Context) enums.MerchantPlan {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxPlan).(enums.MerchantPlan); ok {
		return v
	}
	return ""
}

// WithMerchantID injects the merchant identifier into the context.
func WithMerchantID(ctx context.Context, merchantID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxMerchantID, merchantID)
}

// WithPlan injects the merchant plan into the context.
func WithPlan(ctx context.Context, plan enums.MerchantPlan) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPlan, plan)
}
