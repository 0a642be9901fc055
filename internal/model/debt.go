package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Debt tracks a customer obligation. Status: "upcoming" | "overdue" | "paid".
// PaidAmount only ever grows (additive payments); "paid" wins as soon as
// PaidAmount >= TotalAmount, otherwise the overdue sweep reclassifies
// past-due records. Deleted hard by an admin — no soft-delete.
type Debt struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName string          `gorm:"not null"`
	PhoneNumber  string          `gorm:"not null;default:''"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DueDate      time.Time       `gorm:"not null;index"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	Notes        *string
	// TemplateID links the debt to a product for context only — it never
	// touches inventory.
	TemplateID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Store    *Store           `gorm:"foreignKey:StoreID"`
	Template *ProductTemplate `gorm:"foreignKey:TemplateID"`
}
