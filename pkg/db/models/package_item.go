package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PackageItem links a product into a package. Default items ship with
// the base bundle; optional items can be added for AddPrice. Removing a
// default item credits RemovePrice back to the customer.
type PackageItem struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PackageID   uuid.UUID        `gorm:"column:package_id;type:uuid;not null;index"`
	ProductID   uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	IsDefault   bool             `gorm:"column:is_default;not null;default:true"`
	IsOptional  bool             `gorm:"column:is_optional;not null;default:false"`
	AddPrice    *decimal.Decimal `gorm:"column:add_price;type:numeric(10,2)"`
	RemovePrice *decimal.Decimal `gorm:"column:remove_price;type:numeric(10,2)"`
	Product     *Product         `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
