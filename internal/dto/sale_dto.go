package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleLineRequest struct {
	ListingID string          `json:"listing_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type SubmitSaleRequest struct {
	// StoreID is honored for admins only; workers always sell against their
	// assigned store from the token claims.
	StoreID string            `json:"store_id" validate:"omitempty,uuid"`
	Lines   []SaleLineRequest `json:"lines"    validate:"required,min=1,dive"`
}

type UndoSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	StoreID string `form:"store_id"`
	Date    string `form:"date"`                  // YYYY-MM-DD; empty = today
	Status  string `form:"status,default=active"` // active | undone | all
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ListingID        string          `json:"listing_id"`
	Product          string          `json:"product,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	BuyPriceSnapshot decimal.Decimal `json:"buy_price_snapshot"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID         string             `json:"id"`
	StoreID    string             `json:"store_id"`
	WorkerID   string             `json:"worker_id"`
	Items      []SaleItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	Profit     decimal.Decimal    `json:"profit"`
	Status     string             `json:"status"`
	CreatedAt  string             `json:"created_at"`
}
