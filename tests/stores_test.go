package tests

import (
	"context"
	"testing"

	"shopkeep/internal/dto"
	"shopkeep/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStoreSvc() (service.StoreService, *stubStoreRepo, *stubListingRepo) {
	stores := newStubStoreRepo()
	listings := newStubListingRepo()
	return service.NewStoreService(stores, listings), stores, listings
}

func TestStoreCRUD(t *testing.T) {
	svc, _, _ := buildStoreSvc()

	created, err := svc.CreateStore(context.Background(), dto.CreateStoreRequest{
		Name:    "Main Street",
		Address: strPtr("1 Main St"),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	id := uuid.MustParse(created.ID)
	got, err := svc.GetStore(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Main Street", got.Name)

	updated, err := svc.UpdateStore(context.Background(), id, dto.UpdateStoreRequest{
		Name:  "Main Street West",
		Phone: strPtr("555-0101"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Main Street West", updated.Name)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "1 Main St", *updated.Address) // unset fields survive

	_, err = svc.GetStore(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrStoreNotFound)
}

func TestDeactivateStoreRetiresListings(t *testing.T) {
	svc, _, listings := buildStoreSvc()

	created, err := svc.CreateStore(context.Background(), dto.CreateStoreRequest{Name: "Harbor"})
	require.NoError(t, err)
	storeID := uuid.MustParse(created.ID)

	mine := seedListing(listings, storeID, 10, 1.00, 2.00, 3.00)
	other := seedListing(listings, uuid.New(), 10, 1.00, 2.00, 3.00)

	require.NoError(t, svc.DeactivateStore(context.Background(), storeID))

	got, err := listings.FindByID(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	// Listings of other stores are untouched
	got, err = listings.FindByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)

	// The store disappears from the active list but stays resolvable
	all, err := svc.ListStores(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	resolved, err := svc.GetStore(context.Background(), storeID)
	require.NoError(t, err)
	assert.False(t, resolved.Active)

	require.ErrorIs(t, svc.DeactivateStore(context.Background(), uuid.New()), service.ErrStoreNotFound)
}
