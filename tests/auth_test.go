package tests

import (
	"context"
	"testing"

	"shopkeep/internal/config"
	"shopkeep/internal/dto"
	"shopkeep/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAuthSvc() (service.AuthService, *stubUserRepo) {
	repo := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret-do-not-reuse",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	return service.NewAuthService(repo, cfg), repo
}

func strPtr(s string) *string { return &s }

func TestCreateUserRoleStorePairing(t *testing.T) {
	svc, _ := buildAuthSvc()
	storeID := uuid.New().String()

	// Workers must be pinned to a store
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "worker1",
		Name:     "Worker One",
		Password: "longenough",
		Role:     "worker",
	})
	require.ErrorIs(t, err, service.ErrWorkerNeedsStore)

	worker, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "worker1",
		Name:     "Worker One",
		Password: "longenough",
		Role:     "worker",
		StoreID:  &storeID,
	})
	require.NoError(t, err)
	require.NotNil(t, worker.StoreID)
	assert.Equal(t, storeID, *worker.StoreID)

	// Admins roam all stores; a provided store id is ignored
	admin, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "admin1",
		Name:     "Admin One",
		Password: "longenough",
		Role:     "admin",
		StoreID:  &storeID,
	})
	require.NoError(t, err)
	assert.Nil(t, admin.StoreID)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := buildAuthSvc()
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "amina",
		Name:     "Amina",
		Password: "correct-horse",
		Role:     "admin",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "amina", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "amina", resp.User.Username)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "amina", Password: "wrong"})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "correct-horse"})
	require.Error(t, err)
}

func TestRefreshIssuesNewTokens(t *testing.T) {
	svc, _ := buildAuthSvc()
	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "amina",
		Name:     "Amina",
		Password: "correct-horse",
		Role:     "admin",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "amina", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, created.ID, refreshed.User.ID)

	_, err = svc.Refresh(context.Background(), "not.a.token")
	require.Error(t, err)

	// A deactivated account cannot refresh
	require.NoError(t, svc.DeactivateUser(context.Background(), uuid.MustParse(created.ID)))
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}

func TestDeactivateBlocksLoginUntilReactivated(t *testing.T) {
	svc, _ := buildAuthSvc()
	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "worker2",
		Name:     "Worker Two",
		Password: "longenough",
		Role:     "worker",
		StoreID:  strPtr(uuid.New().String()),
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, svc.DeactivateUser(context.Background(), id))
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "worker2", Password: "longenough"})
	require.Error(t, err)

	require.NoError(t, svc.ReactivateUser(context.Background(), id))
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "worker2", Password: "longenough"})
	require.NoError(t, err)
}

func TestUpdateUserKeepsWorkerPinned(t *testing.T) {
	svc, _ := buildAuthSvc()
	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "admin2",
		Name:     "Admin Two",
		Password: "longenough",
		Role:     "admin",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	// Demoting an admin to worker without assigning a store is refused
	_, err = svc.UpdateUser(context.Background(), id, dto.UpdateUserRequest{Role: "worker"})
	require.ErrorIs(t, err, service.ErrWorkerNeedsStore)

	storeID := uuid.New().String()
	updated, err := svc.UpdateUser(context.Background(), id, dto.UpdateUserRequest{Role: "worker", StoreID: &storeID})
	require.NoError(t, err)
	assert.Equal(t, "worker", updated.Role)
	require.NotNil(t, updated.StoreID)
	assert.Equal(t, storeID, *updated.StoreID)
}

func TestListUsersHonorsIncludeInactive(t *testing.T) {
	svc, _ := buildAuthSvc()
	a, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "u1", Name: "U1", Password: "longenough", Role: "admin",
	})
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "u2", Name: "U2", Password: "longenough", Role: "admin",
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateUser(context.Background(), uuid.MustParse(a.ID)))

	active, err := svc.ListUsers(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListUsers(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
