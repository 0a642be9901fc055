package dto

import "github.com/shopspring/decimal"

// UpsertListingRequest creates or updates the (template, store) pairing.
// Catalog management path — never used by the sale path.
type UpsertListingRequest struct {
	TemplateID   string          `json:"template_id"    validate:"required,uuid"`
	StoreID      string          `json:"store_id"       validate:"required,uuid"`
	Stock        int             `json:"stock"          validate:"min=0"`
	BuyPrice     decimal.Decimal `json:"buy_price"      validate:"min=0"`
	MinSellPrice decimal.Decimal `json:"min_sell_price" validate:"min=0"`
	MaxSellPrice decimal.Decimal `json:"max_sell_price" validate:"min=0"`
}

// AdjustStockRequest is a manual restock / correction. Delta may be negative,
// but the ledger still refuses to take stock below zero.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type ListingResponse struct {
	ID           string          `json:"id"`
	TemplateID   string          `json:"template_id"`
	StoreID      string          `json:"store_id"`
	Product      string          `json:"product,omitempty"`
	Barcode      string          `json:"barcode,omitempty"`
	Stock        int             `json:"stock"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	MinSellPrice decimal.Decimal `json:"min_sell_price"`
	MaxSellPrice decimal.Decimal `json:"max_sell_price"`
	Active       bool            `json:"active"`
}

// ListingFilter is bound from the query string of GET /v1/listings.
type ListingFilter struct {
	StoreID string `form:"store_id"`
	Active  string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ListingListResponse struct {
	Data  []ListingResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type MovementResponse struct {
	ID          string  `json:"id"`
	ListingID   string  `json:"listing_id"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason,omitempty"`
	ReferenceID *string `json:"reference_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
