//go:build integration

package e2e

// End-to-end integration tests against real Postgres + Redis via
// testcontainers. Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopkeep/internal/config"
	"shopkeep/internal/infra"
	"shopkeep/internal/router"
	"shopkeep/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test suite setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("shopkeep_test"),
		tcPostgres.WithUsername("shopkeep"),
		tcPostgres.WithPassword("shopkeep"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		LowStockThreshold:  5,
		DebtSweepMinutes:   30,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin
	hash, err := bcrypt.GenerateFromPassword([]byte("shopkeep2026"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, username, name, password_hash, role, active, created_at, updated_at)
		 VALUES (gen_random_uuid(), 'admin', 'Admin E2E', ?, 'admin', true, NOW(), NOW())
		 ON CONFLICT DO NOTHING`, string(hash)).Error)

	dispatcher := worker.NewDispatcher(rdb)
	r := router.New(cfg, db, rdb, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "shopkeep2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

// createStoreAndProduct seeds one store carrying one product and returns the
// store id plus the listing id of the pairing.
func createStoreAndProduct(t *testing.T, env *testEnv, barcode string, stock int) (storeID, listingID string) {
	t.Helper()

	storeResp := do(t, env.server, "POST", "/v1/stores",
		jsonBody(t, map[string]any{"name": "E2E Store " + barcode}), env.token)
	require.Equal(t, http.StatusCreated, storeResp.StatusCode)
	var store struct {
		ID string `json:"id"`
	}
	decodeJSON(t, storeResp, &store)

	prodResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name":    "Cola 330ml",
			"barcode": barcode,
			"assignments": []map[string]any{{
				"store_id":       store.ID,
				"stock":          stock,
				"buy_price":      "0.50",
				"min_sell_price": "1.00",
				"max_sell_price": "2.00",
			}},
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		Listings []struct {
			ID string `json:"id"`
		} `json:"listings"`
	}
	decodeJSON(t, prodResp, &prod)
	require.Len(t, prod.Listings, 1)

	return store.ID, prod.Listings[0].ID
}

func getListingStock(t *testing.T, env *testEnv, listingID string) int {
	t.Helper()
	resp := do(t, env.server, "GET", "/v1/listings/"+listingID, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Stock int `json:"stock"`
	}
	decodeJSON(t, resp, &listing)
	return listing.Stock
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)
	storeID, listingID := createStoreAndProduct(t, env, "7890001000001", 20)

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"store_id": storeID,
			"lines": []map[string]any{
				{"listing_id": listingID, "quantity": 3, "unit_price": "1.50"},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID         string `json:"id"`
		TotalPrice string `json:"total_price"`
		Status     string `json:"status"`
	}
	decodeJSON(t, saleResp, &sale)
	assert.Equal(t, "active", sale.Status)
	assert.Equal(t, "4.5", sale.TotalPrice)

	assert.Equal(t, 17, getListingStock(t, env, listingID))

	listResp := do(t, env.server, "GET", "/v1/sales?store_id="+storeID, nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Data []json.RawMessage `json:"data"`
	}
	decodeJSON(t, listResp, &list)
	assert.Len(t, list.Data, 1)

	// Receipt renders
	receiptResp := do(t, env.server, "GET", "/v1/sales/"+sale.ID+"/receipt", nil, env.token)
	require.Equal(t, http.StatusOK, receiptResp.StatusCode)
	assert.Equal(t, "application/pdf", receiptResp.Header.Get("Content-Type"))
	receiptResp.Body.Close()
}

func TestE2E_SaleRejectionsLeaveStockIntact(t *testing.T) {
	env := setupTestEnv(t)
	storeID, listingID := createStoreAndProduct(t, env, "7890001000002", 2)

	// Price outside the band
	resp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"store_id": storeID,
			"lines":    []map[string]any{{"listing_id": listingID, "quantity": 1, "unit_price": "9.99"}},
		}), env.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// More than in stock
	resp = do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"store_id": storeID,
			"lines":    []map[string]any{{"listing_id": listingID, "quantity": 3, "unit_price": "1.50"}},
		}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 2, getListingStock(t, env, listingID))
}

func TestE2E_UndoSaleRestoresStock(t *testing.T) {
	env := setupTestEnv(t)
	storeID, listingID := createStoreAndProduct(t, env, "7890001000003", 10)

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"store_id": storeID,
			"lines":    []map[string]any{{"listing_id": listingID, "quantity": 4, "unit_price": "1.50"}},
		}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID string `json:"id"`
	}
	decodeJSON(t, saleResp, &sale)
	require.Equal(t, 6, getListingStock(t, env, listingID))

	undoResp := do(t, env.server, "DELETE", "/v1/sales/"+sale.ID,
		jsonBody(t, map[string]any{"reason": "customer returned everything"}), env.token)
	assert.Equal(t, http.StatusNoContent, undoResp.StatusCode)
	undoResp.Body.Close()
	assert.Equal(t, 10, getListingStock(t, env, listingID))

	// Second undo conflicts, stock untouched
	undoResp = do(t, env.server, "DELETE", "/v1/sales/"+sale.ID,
		jsonBody(t, map[string]any{"reason": "double submit"}), env.token)
	assert.Equal(t, http.StatusConflict, undoResp.StatusCode)
	undoResp.Body.Close()
	assert.Equal(t, 10, getListingStock(t, env, listingID))
}

func TestE2E_DebtLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	storeID, _ := createStoreAndProduct(t, env, "7890001000004", 5)

	createResp := do(t, env.server, "POST", "/v1/debts",
		jsonBody(t, map[string]any{
			"store_id":      storeID,
			"customer_name": "Amina K.",
			"total_amount":  "120.00",
			"due_date":      "2030-01-15",
		}), env.token)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	var debt struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeJSON(t, createResp, &debt)
	assert.Equal(t, "upcoming", debt.Status)

	payResp := do(t, env.server, "POST", "/v1/debts/"+debt.ID+"/payments",
		jsonBody(t, map[string]any{"amount": "50.00"}), env.token)
	require.Equal(t, http.StatusOK, payResp.StatusCode)
	var afterPay struct {
		PaidAmount string `json:"paid_amount"`
		Remaining  string `json:"remaining"`
		Status     string `json:"status"`
	}
	decodeJSON(t, payResp, &afterPay)
	assert.Equal(t, "upcoming", afterPay.Status)
	assert.Equal(t, "70", afterPay.Remaining)

	payResp = do(t, env.server, "POST", "/v1/debts/"+debt.ID+"/payments",
		jsonBody(t, map[string]any{"amount": "70.00"}), env.token)
	require.Equal(t, http.StatusOK, payResp.StatusCode)
	decodeJSON(t, payResp, &afterPay)
	assert.Equal(t, "paid", afterPay.Status)

	// Past-due debts are reclassified by the read path
	overdueResp := do(t, env.server, "POST", "/v1/debts",
		jsonBody(t, map[string]any{
			"store_id":      storeID,
			"customer_name": "Late Customer",
			"total_amount":  "10.00",
			"due_date":      "2020-01-01",
		}), env.token)
	require.Equal(t, http.StatusCreated, overdueResp.StatusCode)
	var overdue struct {
		Status string `json:"status"`
	}
	decodeJSON(t, overdueResp, &overdue)
	assert.Equal(t, "overdue", overdue.Status)

	listResp := do(t, env.server, "GET",
		fmt.Sprintf("/v1/debts?store_id=%s&status=overdue", storeID), nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Data []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	decodeJSON(t, listResp, &list)
	require.Len(t, list.Data, 1)
}

func TestE2E_PublicPriceCheck(t *testing.T) {
	env := setupTestEnv(t)
	_, _ = createStoreAndProduct(t, env, "7890001000005", 7)

	// No token needed
	resp := do(t, env.server, "GET", "/v1/price/7890001000005", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var price struct {
		Name     string `json:"name"`
		Listings []struct {
			MinSellPrice string `json:"min_sell_price"`
			InStock      bool   `json:"in_stock"`
		} `json:"listings"`
	}
	decodeJSON(t, resp, &price)
	assert.Equal(t, "Cola 330ml", price.Name)
	require.Len(t, price.Listings, 1)
	assert.True(t, price.Listings[0].InStock)

	missing := do(t, env.server, "GET", "/v1/price/0000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	missing.Body.Close()
}
