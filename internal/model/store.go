package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is one physical branch. Listings, sales and workers hang off a store.
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Address   *string
	Phone     *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
