package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductTemplate is the store-independent identity of a product.
// Per-store stock and pricing live on ProductListing.
type ProductTemplate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"index;not null"`
	Barcode  string    `gorm:"uniqueIndex;not null"`
	Category string    `gorm:"not null;default:'general'"`
	// ImageURL points into external object storage; the backend never
	// touches image bytes.
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
