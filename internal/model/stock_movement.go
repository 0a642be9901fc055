package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records every stock change on a listing. Written inside the
// same transaction as the change itself, so the movement ledger always
// reconciles with the listing's current stock.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"not null"` // "sale" | "undo_restore" | "manual_adjust" | "restock"
	Quantity  int       `gorm:"not null"` // positive = in, negative = out
	StockBefore int     `gorm:"not null"`
	StockAfter  int     `gorm:"not null"`
	Reason      string
	// ReferenceID carries the sale id for sale/undo movements
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Listing *ProductListing `gorm:"foreignKey:ListingID"`
}
