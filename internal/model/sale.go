package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immutable transaction header. Status machine: "active" → "undone"
// (one way, terminal). Totals and items never change after commit; only the
// status flips when a sale is undone, so the audit trail survives reversal.
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Profit     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'active'"` // "active" | "undone"
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items  []SaleItem `gorm:"foreignKey:SaleID"`
	Store  *Store     `gorm:"foreignKey:StoreID"`
	Worker *User      `gorm:"foreignKey:WorkerID"`
}

// SaleItem is one line of a sale. UnitPrice is what was actually charged
// (validated against the listing's band at commit), BuyPriceSnapshot is the
// cost basis frozen at that moment. Line profit = Quantity * (UnitPrice -
// BuyPriceSnapshot).
type SaleItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ListingID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity         int             `gorm:"not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	BuyPriceSnapshot decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Listing *ProductListing `gorm:"foreignKey:ListingID"`
}
