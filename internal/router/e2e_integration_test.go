//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"delipos/internal/config"
	"delipos/internal/infra"
	"delipos/internal/worker"

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

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // manager JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("delipos_test"),
		tcPostgres.WithUsername("delipos"),
		tcPostgres.WithPassword("delipos"),
		tcPostgres.BasicWaitStrategies(),
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
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		ReceiptStoragePath: t.TempDir(),
		ScanDebounceMs:     500,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the manager account
	hash, err := bcrypt.GenerateFromPassword([]byte("delipos2026"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO users (id, username, name, password_hash, role, active)
		VALUES (gen_random_uuid(), 'admin', 'Manager E2E', ?, 'manager', true)
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	r := New(cfg, db, rdb, worker.NewDispatcher(rdb))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "delipos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		Token string `json:"token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.Token)

	return &testEnv{server: srv, token: loginBody.Token}
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full sale cycle: create product → scan → pay cash → list transactions.
func TestE2E_FullCashSale(t *testing.T) {
	env := setupTestEnv(t)

	prodResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"upc":       "012345678905",
			"name":      "Cola 2L",
			"price":     "2.99",
			"inventory": 20,
		}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, prodResp, &prod)

	scanResp := do(t, env.server, "POST", "/v1/stores/s1/checkout/scan",
		jsonBody(t, map[string]string{"input": "012345678905\n"}), env.token)
	require.Equal(t, http.StatusOK, scanResp.StatusCode)
	var scan struct {
		Status string `json:"status"`
		Cart   struct {
			Lines []struct {
				Name     string `json:"name"`
				Quantity int    `json:"quantity"`
			} `json:"lines"`
			Totals struct {
				CashTotal string `json:"cash_total"`
			} `json:"totals"`
		} `json:"cart"`
	}
	decodeJSON(t, scanResp, &scan)
	assert.Equal(t, "added", scan.Status)
	require.Len(t, scan.Cart.Lines, 1)
	assert.Equal(t, "Cola 2L", scan.Cart.Lines[0].Name)

	// Begin payment, pay cash with a twenty.
	require.Equal(t, http.StatusOK,
		do(t, env.server, "POST", "/v1/stores/s1/checkout/pay", jsonBody(t, map[string]any{}), env.token).StatusCode)
	require.Equal(t, http.StatusOK,
		do(t, env.server, "POST", "/v1/stores/s1/checkout/pay/method",
			jsonBody(t, map[string]string{"method": "cash"}), env.token).StatusCode)
	require.Equal(t, http.StatusOK,
		do(t, env.server, "POST", "/v1/stores/s1/checkout/pay/tender",
			jsonBody(t, map[string]any{"amount_cents": 2000}), env.token).StatusCode)
	require.Equal(t, http.StatusOK,
		do(t, env.server, "POST", "/v1/stores/s1/checkout/pay/cash/submit", jsonBody(t, map[string]any{}), env.token).StatusCode)

	confirmResp := do(t, env.server, "POST", "/v1/stores/s1/checkout/pay/cash/confirm",
		jsonBody(t, map[string]any{"receipt_email": "customer@example.com"}), env.token)
	require.Equal(t, http.StatusOK, confirmResp.StatusCode)
	var confirm struct {
		State       string `json:"state"`
		Change      string `json:"change"`
		Transaction struct {
			Number int `json:"number"`
		} `json:"transaction"`
	}
	decodeJSON(t, confirmResp, &confirm)
	assert.Equal(t, "change", confirm.State)
	assert.GreaterOrEqual(t, confirm.Transaction.Number, 1001)

	require.Equal(t, http.StatusOK,
		do(t, env.server, "POST", "/v1/stores/s1/checkout/pay/next", jsonBody(t, map[string]any{}), env.token).StatusCode)

	listResp := do(t, env.server, "GET", "/v1/transactions?store_id=s1", nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &list)
	assert.EqualValues(t, 1, list.Total)

	// Inventory decremented by the sale.
	prodList := do(t, env.server, "GET", "/v1/products?upc=012345678905", nil, env.token)
	require.Equal(t, http.StatusOK, prodList.StatusCode)
	var products struct {
		Data []struct {
			Inventory int `json:"inventory"`
		} `json:"data"`
	}
	decodeJSON(t, prodList, &products)
	require.Len(t, products.Data, 1)
	assert.Equal(t, 19, products.Data[0].Inventory)
}

// Unknown scans block the register until resolved.
func TestE2E_UnknownScanResolution(t *testing.T) {
	env := setupTestEnv(t)

	scanResp := do(t, env.server, "POST", "/v1/stores/s1/checkout/scan",
		jsonBody(t, map[string]string{"input": "400000000001\n"}), env.token)
	require.Equal(t, http.StatusOK, scanResp.StatusCode)
	var scan struct {
		Status  string `json:"status"`
		Pending string `json:"pending_upc"`
	}
	decodeJSON(t, scanResp, &scan)
	assert.Equal(t, "not_found", scan.Status)
	assert.Equal(t, "400000000001", scan.Pending)

	// Create it from the register; the pending UPC is applied server-side.
	createResp := do(t, env.server, "POST", "/v1/stores/s1/checkout/scan/create-product",
		jsonBody(t, map[string]any{"name": "House Hot Sauce", "price": "4.50", "inventory": 6}), env.token)
	require.Equal(t, http.StatusOK, createResp.StatusCode)
	var created struct {
		Status string `json:"status"`
		Cart   struct {
			Lines []struct {
				UPC string `json:"upc"`
			} `json:"lines"`
		} `json:"cart"`
	}
	decodeJSON(t, createResp, &created)
	assert.Equal(t, "added", created.Status)
	require.Len(t, created.Cart.Lines, 1)
	assert.Equal(t, "400000000001", created.Cart.Lines[0].UPC)
}

// Role enforcement: a cashier cannot update settings or create users.
func TestE2E_RoleEnforcement(t *testing.T) {
	env := setupTestEnv(t)

	require.Equal(t, http.StatusCreated,
		do(t, env.server, "POST", "/v1/users",
			jsonBody(t, map[string]string{
				"username": "casher1", "name": "Cashier One",
				"password": "cashier-pass-1", "role": "cashier",
			}), env.token).StatusCode)

	loginResp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "casher1", "password": "cashier-pass-1"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	decodeJSON(t, loginResp, &login)

	putResp := do(t, env.server, "PUT", "/v1/stores/s1/settings",
		jsonBody(t, map[string]any{"tax_enabled": false}), login.Token)
	assert.Equal(t, http.StatusForbidden, putResp.StatusCode)

	userResp := do(t, env.server, "POST", "/v1/users",
		jsonBody(t, map[string]string{
			"username": "rogue", "name": "Rogue", "password": "password123", "role": "manager",
		}), login.Token)
	assert.Equal(t, http.StatusForbidden, userResp.StatusCode)

	// No token at all.
	anon := do(t, env.server, "GET", "/v1/transactions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anon.StatusCode)
}

// Cash-discount pricing surfaces a higher card total.
func TestE2E_CashDiscountPricing(t *testing.T) {
	env := setupTestEnv(t)

	require.Equal(t, http.StatusOK,
		do(t, env.server, "PUT", "/v1/stores/s1/settings",
			jsonBody(t, map[string]any{
				"tax_enabled":           false,
				"cash_discount_enabled": true,
				"cash_discount_rate":    "3.5",
			}), env.token).StatusCode)

	require.Equal(t, http.StatusOK,
		do(t, env.server, "POST", "/v1/stores/s1/checkout/cart/open-item",
			jsonBody(t, map[string]any{"name": "Misc", "price": "10.00"}), env.token).StatusCode)

	cartResp := do(t, env.server, "GET", "/v1/stores/s1/checkout/cart", nil, env.token)
	require.Equal(t, http.StatusOK, cartResp.StatusCode)
	var cart struct {
		Totals struct {
			CashTotal string `json:"cash_total"`
			CardTotal string `json:"card_total"`
		} `json:"totals"`
	}
	decodeJSON(t, cartResp, &cart)
	assert.Equal(t, "10", cart.Totals.CashTotal)
	assert.Equal(t, "10.65", cart.Totals.CardTotal)
}

func TestE2E_HealthAndPriceCheckArePublic(t *testing.T) {
	env := setupTestEnv(t)

	health := do(t, env.server, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, health.StatusCode)

	require.Equal(t, http.StatusCreated,
		do(t, env.server, "POST", "/v1/products",
			jsonBody(t, map[string]any{"upc": "036000291452", "name": "Soup Can", "price": "1.99", "inventory": 5}),
			env.token).StatusCode)

	check := do(t, env.server, "GET", "/v1/price/036000291452", nil, "")
	require.Equal(t, http.StatusOK, check.StatusCode)
	var price struct {
		Name string `json:"name"`
	}
	decodeJSON(t, check, &price)
	assert.Equal(t, "Soup Can", price.Name)
}
