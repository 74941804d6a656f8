package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Package is a curated bundle of products sold at a bundle price.
// Customers customize a package by adding optional items or removing
// default ones; the price deltas live on the membership rows.
type Package struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID      uuid.UUID        `gorm:"column:merchant_id;type:uuid;not null;index"`
	Code            string           `gorm:"column:code;not null;uniqueIndex"`
	Name            string           `gorm:"column:name;not null"`
	Description     *string          `gorm:"column:description"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	DiscountedPrice *decimal.Decimal `gorm:"column:discounted_price;type:numeric(10,2)"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	Items           []PackageItem    `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the discounted price when one is set.
func (p *Package) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.Price
}
