package tests

import (
	"context"
	"testing"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"
	"shopkeep/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	svc      service.ProductService
	products *stubProductRepo
	listings *stubListingRepo
	stores   *stubStoreRepo
}

func buildProductSvc() productFixture {
	products := newStubProductRepo()
	listings := newStubListingRepo()
	stores := newStubStoreRepo()
	return productFixture{
		// nil redis client: price checks go straight to the repos
		svc:      service.NewProductService(products, listings, stores, nil),
		products: products,
		listings: listings,
		stores:   stores,
	}
}

func (f productFixture) addStore(name string) uuid.UUID {
	s := &model.Store{ID: uuid.New(), Name: name, Active: true}
	f.stores.stores[s.ID] = s
	return s.ID
}

func assignment(storeID uuid.UUID, stock int, buy, minSell, maxSell float64) dto.StoreAssignmentRequest {
	return dto.StoreAssignmentRequest{
		StoreID:      storeID.String(),
		Stock:        stock,
		BuyPrice:     decimal.NewFromFloat(buy),
		MinSellPrice: decimal.NewFromFloat(minSell),
		MaxSellPrice: decimal.NewFromFloat(maxSell),
	}
}

func TestCreateProductWithAssignments(t *testing.T) {
	f := buildProductSvc()
	storeA := f.addStore("Main Street")
	storeB := f.addStore("Harbor")

	resp, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name:    "Cola 330ml",
		Barcode: "5901234123457",
		Assignments: []dto.StoreAssignmentRequest{
			assignment(storeA, 24, 0.50, 0.90, 1.50),
			assignment(storeB, 12, 0.55, 1.00, 1.60),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "general", resp.Category) // default when omitted
	assert.Len(t, resp.Listings, 2)
}

func TestCreateProductBarcodeUnique(t *testing.T) {
	f := buildProductSvc()
	_, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Cola", Barcode: "111",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Other Cola", Barcode: "111",
	})
	require.ErrorIs(t, err, service.ErrBarcodeTaken)
}

func TestCreateProductValidatesAssignments(t *testing.T) {
	f := buildProductSvc()
	storeID := f.addStore("Main Street")

	_, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Cola", Barcode: "222",
		Assignments: []dto.StoreAssignmentRequest{assignment(storeID, 5, 1.00, 3.00, 2.00)},
	})
	require.ErrorIs(t, err, service.ErrInvalidPriceBand)

	_, err = f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Chips", Barcode: "333",
		Assignments: []dto.StoreAssignmentRequest{assignment(uuid.New(), 5, 1.00, 2.00, 3.00)},
	})
	require.ErrorIs(t, err, service.ErrStoreNotFound)
}

func TestUpdateProductReconcilesStores(t *testing.T) {
	f := buildProductSvc()
	storeA := f.addStore("Main Street")
	storeB := f.addStore("Harbor")

	created, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Cola", Barcode: "444",
		Assignments: []dto.StoreAssignmentRequest{
			assignment(storeA, 10, 0.50, 1.00, 1.50),
			assignment(storeB, 10, 0.50, 1.00, 1.50),
		},
	})
	require.NoError(t, err)
	templateID := uuid.MustParse(created.ID)

	// Deselect storeB: its listing is deactivated, not deleted
	desired := []dto.StoreAssignmentRequest{assignment(storeA, 20, 0.50, 1.00, 1.50)}
	updated, err := f.svc.UpdateProduct(context.Background(), templateID, dto.UpdateProductRequest{
		Assignments: &desired,
	})
	require.NoError(t, err)

	all, err := f.listings.ListByTemplate(context.Background(), templateID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, l := range all {
		switch l.StoreID {
		case storeA:
			assert.True(t, l.Active)
			assert.Equal(t, 20, l.Stock)
		case storeB:
			assert.False(t, l.Active)
		}
	}

	// Both listings stay on the response; the deselected one is flagged
	require.Len(t, updated.Listings, 2)
	for _, l := range updated.Listings {
		assert.Equal(t, l.StoreID == storeA.String(), l.Active)
	}

	// Re-adding storeB reactivates the old listing instead of creating a
	// duplicate pairing
	desired = []dto.StoreAssignmentRequest{
		assignment(storeA, 20, 0.50, 1.00, 1.50),
		assignment(storeB, 5, 0.50, 1.00, 1.50),
	}
	_, err = f.svc.UpdateProduct(context.Background(), templateID, dto.UpdateProductRequest{Assignments: &desired})
	require.NoError(t, err)
	all, err = f.listings.ListByTemplate(context.Background(), templateID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateProductNilAssignmentsLeavesListings(t *testing.T) {
	f := buildProductSvc()
	storeA := f.addStore("Main Street")
	created, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Cola", Barcode: "555",
		Assignments: []dto.StoreAssignmentRequest{assignment(storeA, 10, 0.50, 1.00, 1.50)},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateProduct(context.Background(), uuid.MustParse(created.ID), dto.UpdateProductRequest{
		Name: "Cola Zero",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cola Zero", updated.Name)
	assert.Len(t, updated.Listings, 1)
}

func TestPriceCheckExposesBandOnly(t *testing.T) {
	f := buildProductSvc()
	storeA := f.addStore("Main Street")
	storeB := f.addStore("Harbor")

	_, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Cola", Barcode: "666",
		Assignments: []dto.StoreAssignmentRequest{
			assignment(storeA, 24, 0.50, 0.90, 1.50),
			assignment(storeB, 0, 0.55, 1.00, 1.60), // out of stock
		},
	})
	require.NoError(t, err)

	resp, err := f.svc.PriceCheck(context.Background(), "666")
	require.NoError(t, err)
	assert.Equal(t, "Cola", resp.Name)
	require.Len(t, resp.Listings, 2)

	inStock := 0
	for _, l := range resp.Listings {
		if l.InStock {
			inStock++
		}
		assert.False(t, l.MinSellPrice.IsZero())
	}
	assert.Equal(t, 1, inStock)

	_, err = f.svc.PriceCheck(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestPriceCheckSkipsInactiveListings(t *testing.T) {
	f := buildProductSvc()
	storeA := f.addStore("Main Street")
	created, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Cola", Barcode: "777",
		Assignments: []dto.StoreAssignmentRequest{assignment(storeA, 24, 0.50, 0.90, 1.50)},
	})
	require.NoError(t, err)

	empty := []dto.StoreAssignmentRequest{}
	_, err = f.svc.UpdateProduct(context.Background(), uuid.MustParse(created.ID), dto.UpdateProductRequest{
		Assignments: &empty,
	})
	require.NoError(t, err)

	resp, err := f.svc.PriceCheck(context.Background(), "777")
	require.NoError(t, err)
	assert.Empty(t, resp.Listings)
}
