package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// Conversation is a chat thread between a merchant and a platform
// customer. External order ingestion requires a matching conversation
// so every sale stays attached to its originating thread.
type Conversation struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID        uuid.UUID      `gorm:"column:merchant_id;type:uuid;not null;index:idx_conversations_merchant_customer"`
	Platform          enums.Platform `gorm:"column:platform;type:platform;not null"`
	CustomerID        string         `gorm:"column:customer_id;not null;index:idx_conversations_merchant_customer"`
	CustomerName      *string        `gorm:"column:customer_name"`
	IsAIEnabled       bool           `gorm:"column:is_ai_enabled;not null;default:true"`
	AIDisabledAt      *time.Time     `gorm:"column:ai_disabled_at"`
	AIEnableDelaySecs int            `gorm:"column:ai_enable_delay_secs;not null;default:0"`
	ChatSummary       *string        `gorm:"column:chat_summary"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
