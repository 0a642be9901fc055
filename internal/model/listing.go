package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductListing pairs a product template with a store and carries the
// store-specific stock level and price band. Stock never goes below zero:
// the decrement path is guarded at commit time, not merely at request time.
type ProductListing struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_template_store"`
	StoreID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_template_store"`
	Stock      int       `gorm:"not null;default:0"`
	// BuyPrice is the cost basis; copied onto sale items at commit time so
	// later cost edits never rewrite historical profit.
	BuyPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MinSellPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MaxSellPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Active=false means the store no longer carries the template. Listings
	// referenced by sale history are deactivated, never deleted.
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Template *ProductTemplate `gorm:"foreignKey:TemplateID"`
	Store    *Store           `gorm:"foreignKey:StoreID"`
}
