package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chatcartlabs/chatcart-backend/pkg/enums"
)

// Merchant is the tenant owning catalog entries, conversations and sales.
type Merchant struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string             `gorm:"column:email;not null;uniqueIndex"`
	Name      string             `gorm:"column:name;not null"`
	Plan      enums.MerchantPlan `gorm:"column:plan;type:merchant_plan;not null;default:'free'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
