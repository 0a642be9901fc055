package dto

import "github.com/shopspring/decimal"

type CreateDebtRequest struct {
	StoreID      string          `json:"store_id"      validate:"required,uuid"`
	CustomerName string          `json:"customer_name" validate:"required"`
	PhoneNumber  string          `json:"phone_number"`
	TotalAmount  decimal.Decimal `json:"total_amount"  validate:"required,gt=0"`
	PaidAmount   decimal.Decimal `json:"paid_amount"   validate:"min=0"`
	DueDate      string          `json:"due_date"      validate:"required"` // YYYY-MM-DD
	Notes        *string         `json:"notes"`
	TemplateID   *string         `json:"template_id"   validate:"omitempty,uuid"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

// DebtFilter is bound from the query string of GET /v1/debts.
type DebtFilter struct {
	StoreID string `form:"store_id"`
	Status  string `form:"status"` // upcoming | overdue | paid | all (default all)
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type DebtResponse struct {
	ID           string          `json:"id"`
	StoreID      string          `json:"store_id"`
	CustomerName string          `json:"customer_name"`
	PhoneNumber  string          `json:"phone_number,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Remaining    decimal.Decimal `json:"remaining"`
	DueDate      string          `json:"due_date"`
	Status       string          `json:"status"`
	Notes        *string         `json:"notes,omitempty"`
	TemplateID   *string         `json:"template_id,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

type DebtListResponse struct {
	Data  []DebtResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
