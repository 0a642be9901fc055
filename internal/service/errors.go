package service

import "errors"

// Business-rule failures are sentinel errors so handlers can map each kind to
// a specific HTTP status and message. Per-line failures in a sale are wrapped
// with the line number (fmt.Errorf("line %d: %w", ...)); errors.Is still
// matches the sentinel. Infrastructure errors pass through untouched and
// surface as opaque 500s.
var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrListingInactive   = errors.New("listing is inactive")
	ErrListingWrongStore = errors.New("listing belongs to another store")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPriceOutOfRange   = errors.New("unit price outside the listing price band")
	ErrInvalidPriceBand  = errors.New("min sell price exceeds max sell price")

	ErrSaleNotFound      = errors.New("sale not found")
	ErrSaleAlreadyUndone = errors.New("sale already undone")

	ErrDebtNotFound    = errors.New("debt not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidDueDate  = errors.New("due date must be YYYY-MM-DD")

	ErrStoreNotFound    = errors.New("store not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrBarcodeTaken     = errors.New("barcode already registered")
	ErrWorkerNeedsStore = errors.New("worker accounts require a store assignment")
)
