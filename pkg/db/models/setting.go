package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// Setting holds per-platform channel configuration for a merchant,
// including the webhook used for best-effort order notifications.
type Setting struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID      uuid.UUID      `gorm:"column:merchant_id;type:uuid;not null;uniqueIndex:uq_settings_merchant_platform"`
	Platform        enums.Platform `gorm:"column:platform;type:platform;not null;uniqueIndex:uq_settings_merchant_platform"`
	WebhookURL      *string        `gorm:"column:webhook_url"`
	AccessToken     *string        `gorm:"column:access_token"`
	FallbackMessage *string        `gorm:"column:fallback_message"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
