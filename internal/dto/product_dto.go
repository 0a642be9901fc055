package dto

import "github.com/shopspring/decimal"

// StoreAssignmentRequest describes one store the template should be carried
// by, with its store-specific stock and price band.
type StoreAssignmentRequest struct {
	StoreID      string          `json:"store_id"       validate:"required,uuid"`
	Stock        int             `json:"stock"          validate:"min=0"`
	BuyPrice     decimal.Decimal `json:"buy_price"      validate:"min=0"`
	MinSellPrice decimal.Decimal `json:"min_sell_price" validate:"min=0"`
	MaxSellPrice decimal.Decimal `json:"max_sell_price" validate:"min=0"`
}

type CreateProductRequest struct {
	Name     string  `json:"name"      validate:"required"`
	Barcode  string  `json:"barcode"   validate:"required"`
	Category string  `json:"category"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
	// Assignments is the full set of stores that carry the product
	Assignments []StoreAssignmentRequest `json:"assignments" validate:"omitempty,dive"`
}

// UpdateProductRequest reconciles the template and, when Assignments is
// non-nil, the desired store set: missing stores are upserted, deselected
// stores get their listing deactivated (never deleted — sale history keeps
// referencing it).
type UpdateProductRequest struct {
	Name        string                    `json:"name"`
	Barcode     string                    `json:"barcode"`
	Category    string                    `json:"category"`
	ImageURL    *string                   `json:"image_url" validate:"omitempty,url"`
	Assignments *[]StoreAssignmentRequest `json:"assignments" validate:"omitempty,dive"`
}

type ProductResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Barcode  string            `json:"barcode"`
	Category string            `json:"category"`
	ImageURL *string           `json:"image_url,omitempty"`
	Listings []ListingResponse `json:"listings,omitempty"`
}

type ProductFilter struct {
	Name     string `form:"name"`
	Barcode  string `form:"barcode"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Public price check ──────────────────────────────────────────────────────

type PriceCheckListing struct {
	Store        string          `json:"store"`
	MinSellPrice decimal.Decimal `json:"min_sell_price"`
	MaxSellPrice decimal.Decimal `json:"max_sell_price"`
	InStock      bool            `json:"in_stock"`
}

type PriceCheckResponse struct {
	Name     string              `json:"name"`
	Barcode  string              `json:"barcode"`
	Category string              `json:"category"`
	Listings []PriceCheckListing `json:"listings"`
}
