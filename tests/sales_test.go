package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"shopkeep/internal/dto"
	"shopkeep/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	svc       service.SaleService
	listings  *stubListingRepo
	sales     *stubSaleRepo
	movements *stubMovementRepo
}

func buildSaleSvc(lowStockLimit int) saleFixture {
	listings := newStubListingRepo()
	sales := newStubSaleRepo()
	movements := &stubMovementRepo{}
	return saleFixture{
		svc:       service.NewSaleService(sales, listings, movements, nil, lowStockLimit),
		listings:  listings,
		sales:     sales,
		movements: movements,
	}
}

func line(listingID uuid.UUID, qty int, price float64) dto.SaleLineRequest {
	return dto.SaleLineRequest{
		ListingID: listingID.String(),
		Quantity:  qty,
		UnitPrice: decimal.NewFromFloat(price),
	}
}

func TestSubmitSaleHappyPath(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	workerID := uuid.New()
	cola := seedListing(f.listings, storeID, 10, 1.00, 1.50, 2.50)
	chips := seedListing(f.listings, storeID, 5, 0.80, 1.20, 2.00)

	resp, err := f.svc.SubmitSale(context.Background(), storeID, workerID, dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{
			line(cola.ID, 3, 2.00),
			line(chips.ID, 2, 1.50),
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	// 3*2.00 + 2*1.50
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromFloat(9.00)), "total = %s", resp.TotalPrice)
	// 3*(2.00-1.00) + 2*(1.50-0.80)
	assert.True(t, resp.Profit.Equal(decimal.NewFromFloat(4.40)), "profit = %s", resp.Profit)
	assert.Equal(t, "active", resp.Status)

	assert.Equal(t, 7, f.listings.stock(cola.ID))
	assert.Equal(t, 3, f.listings.stock(chips.ID))
}

func TestSubmitSaleAllOrNothing(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	plenty := seedListing(f.listings, storeID, 100, 1.00, 2.00, 3.00)
	scarce := seedListing(f.listings, storeID, 1, 1.00, 2.00, 3.00)

	_, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{
			line(plenty.ID, 5, 2.50),
			line(scarce.ID, 2, 2.50), // only 1 in stock
		},
	})
	require.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "line 2")

	// No partial commits: neither listing was touched
	assert.Equal(t, 100, f.listings.stock(plenty.ID))
	assert.Equal(t, 1, f.listings.stock(scarce.ID))
	assert.Empty(t, f.movements.byType("sale"))
}

func TestSubmitSaleSameListingCumulativeStock(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	l := seedListing(f.listings, storeID, 5, 1.00, 2.00, 3.00)

	// 3 + 3 on the same listing exceeds the 5 in stock even though each line
	// alone would fit.
	_, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{
			line(l.ID, 3, 2.00),
			line(l.ID, 3, 2.00),
		},
	})
	require.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, 5, f.listings.stock(l.ID))

	// 3 + 2 fits exactly
	resp, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{
			line(l.ID, 3, 2.00),
			line(l.ID, 2, 2.00),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.listings.stock(l.ID))
	require.Len(t, resp.Items, 2)
}

func TestSubmitSalePriceBandEnforced(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	l := seedListing(f.listings, storeID, 10, 1.00, 2.00, 3.00)

	for _, price := range []float64{1.99, 3.01} {
		_, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
			Lines: []dto.SaleLineRequest{line(l.ID, 1, price)},
		})
		require.ErrorIs(t, err, service.ErrPriceOutOfRange, "price %v", price)
	}

	// Band edges are inclusive
	for _, price := range []float64{2.00, 3.00} {
		_, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
			Lines: []dto.SaleLineRequest{line(l.ID, 1, price)},
		})
		require.NoError(t, err, "price %v", price)
	}
	assert.Equal(t, 8, f.listings.stock(l.ID))
}

func TestSubmitSaleRejectsForeignAndInactiveListings(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	foreign := seedListing(f.listings, uuid.New(), 10, 1.00, 2.00, 3.00)

	_, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{line(foreign.ID, 1, 2.50)},
	})
	require.ErrorIs(t, err, service.ErrListingWrongStore)

	retired := seedListing(f.listings, storeID, 10, 1.00, 2.00, 3.00)
	retired.Active = false
	_, err = f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{line(retired.ID, 1, 2.50)},
	})
	require.ErrorIs(t, err, service.ErrListingInactive)

	_, err = f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{line(uuid.New(), 1, 2.50)},
	})
	require.ErrorIs(t, err, service.ErrListingNotFound)
}

func TestSubmitSaleSnapshotsBuyPrice(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	l := seedListing(f.listings, storeID, 10, 1.00, 2.00, 3.00)

	resp, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{line(l.ID, 2, 2.50)},
	})
	require.NoError(t, err)

	// Raise the cost basis after the sale; the stored snapshot and profit
	// must be frozen at commit time.
	l.BuyPrice = decimal.NewFromFloat(5.00)

	saleID := uuid.MustParse(resp.ID)
	got, err := f.svc.GetSale(context.Background(), saleID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].BuyPriceSnapshot.Equal(decimal.NewFromFloat(1.00)))
	assert.True(t, got.Profit.Equal(decimal.NewFromFloat(3.00))) // 2*(2.50-1.00)
}

func TestSubmitSaleWritesMovementLedger(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	l := seedListing(f.listings, storeID, 10, 1.00, 2.00, 3.00)

	resp, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{line(l.ID, 4, 2.00)},
	})
	require.NoError(t, err)

	movs := f.movements.byType("sale")
	require.Len(t, movs, 1)
	assert.Equal(t, l.ID, movs[0].ListingID)
	assert.Equal(t, -4, movs[0].Quantity)
	assert.Equal(t, 10, movs[0].StockBefore)
	assert.Equal(t, 6, movs[0].StockAfter)
	require.NotNil(t, movs[0].ReferenceID)
	assert.Equal(t, resp.ID, movs[0].ReferenceID.String())
}

func TestUndoSaleRestoresStockOnce(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	adminID := uuid.New()
	cola := seedListing(f.listings, storeID, 10, 1.00, 1.50, 2.50)
	chips := seedListing(f.listings, storeID, 8, 0.80, 1.20, 2.00)

	resp, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{
			line(cola.ID, 3, 2.00),
			line(chips.ID, 2, 1.50),
		},
	})
	require.NoError(t, err)
	saleID := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.UndoSale(context.Background(), saleID, adminID, "wrong customer"))
	assert.Equal(t, 10, f.listings.stock(cola.ID))
	assert.Equal(t, 8, f.listings.stock(chips.ID))

	got, err := f.svc.GetSale(context.Background(), saleID)
	require.NoError(t, err)
	assert.Equal(t, "undone", got.Status)
	// Totals survive reversal untouched
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromFloat(9.00)))

	restores := f.movements.byType("undo_restore")
	require.Len(t, restores, 2)
	assert.Equal(t, 3, restores[0].Quantity)

	// Second undo is rejected and must not double-restock
	err = f.svc.UndoSale(context.Background(), saleID, adminID, "double click")
	require.ErrorIs(t, err, service.ErrSaleAlreadyUndone)
	assert.Equal(t, 10, f.listings.stock(cola.ID))
	assert.Equal(t, 8, f.listings.stock(chips.ID))
}

func TestUndoSaleUnknownID(t *testing.T) {
	f := buildSaleSvc(0)
	err := f.svc.UndoSale(context.Background(), uuid.New(), uuid.New(), "never existed")
	require.ErrorIs(t, err, service.ErrSaleNotFound)
}

// TestSubmitSaleConcurrentNeverOversells hammers one listing from many
// goroutines. Whatever the interleaving, stock must end at initial minus the
// sum of the quantities that were accepted, and never dip below zero.
func TestSubmitSaleConcurrentNeverOversells(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	const initialStock = 20
	l := seedListing(f.listings, storeID, initialStock, 1.00, 2.00, 3.00)

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	sold := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
				Lines: []dto.SaleLineRequest{line(l.ID, 1, 2.50)},
			})
			if err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	final := f.listings.stock(l.ID)
	assert.GreaterOrEqual(t, final, 0)
	assert.Equal(t, initialStock-sold, final)
	assert.LessOrEqual(t, sold, initialStock)
}

func TestListSalesDefaultsToActive(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	l := seedListing(f.listings, storeID, 100, 1.00, 2.00, 3.00)

	var lastID string
	for i := 0; i < 3; i++ {
		resp, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
			Lines: []dto.SaleLineRequest{line(l.ID, 1, 2.00)},
		})
		require.NoError(t, err)
		lastID = resp.ID
	}
	require.NoError(t, f.svc.UndoSale(context.Background(), uuid.MustParse(lastID), uuid.New(), "test reversal"))

	active, err := f.svc.ListSales(context.Background(), dto.SaleFilter{})
	require.NoError(t, err)
	assert.Len(t, active.Data, 2)

	all, err := f.svc.ListSales(context.Background(), dto.SaleFilter{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)

	undone, err := f.svc.ListSales(context.Background(), dto.SaleFilter{Status: "undone"})
	require.NoError(t, err)
	require.Len(t, undone.Data, 1)
	assert.Equal(t, lastID, undone.Data[0].ID)
}

func TestSubmitSaleRejectsMalformedLines(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()

	_, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{{ListingID: "not-a-uuid", Quantity: 1, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	l := seedListing(f.listings, storeID, 10, 1.00, 2.00, 3.00)
	_, err = f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{{ListingID: l.ID.String(), Quantity: 0, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must be positive")
	assert.Equal(t, 10, f.listings.stock(l.ID))
}

func TestReceiptPDFRendersSale(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	l := seedListing(f.listings, storeID, 10, 1.00, 2.00, 3.00)

	resp, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
		Lines: []dto.SaleLineRequest{line(l.ID, 2, 2.50)},
	})
	require.NoError(t, err)

	pdf, err := f.svc.ReceiptPDF(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	_, err = f.svc.ReceiptPDF(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrSaleNotFound)
}

// Sanity: undoing each of N sales exactly once brings stock back to where it
// started, regardless of order.
func TestUndoManySalesRoundTrip(t *testing.T) {
	f := buildSaleSvc(0)
	storeID := uuid.New()
	l := seedListing(f.listings, storeID, 30, 1.00, 2.00, 3.00)

	ids := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		resp, err := f.svc.SubmitSale(context.Background(), storeID, uuid.New(), dto.SubmitSaleRequest{
			Lines: []dto.SaleLineRequest{line(l.ID, i+1, 2.00)},
		})
		require.NoError(t, err, fmt.Sprintf("sale %d", i))
		ids = append(ids, uuid.MustParse(resp.ID))
	}
	assert.Equal(t, 15, f.listings.stock(l.ID)) // 30 - (1+2+3+4+5)

	for _, id := range ids {
		require.NoError(t, f.svc.UndoSale(context.Background(), id, uuid.New(), "inventory recount"))
	}
	assert.Equal(t, 30, f.listings.stock(l.ID))
}
