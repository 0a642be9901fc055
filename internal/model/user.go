package model

import (
	"time"

	"github.com/google/uuid"
)

// User stores system accounts with role-based access.
// Role: "worker" | "admin"
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	// StoreID pins a worker to a single store; nil for admins (all stores)
	StoreID   *uuid.UUID `gorm:"type:uuid;index"`
	Active    bool       `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}
