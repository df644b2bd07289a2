package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
	"budgetbook/internal/storage/memory"
)

var errDiskGone = errors.New("disk gone")

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Insert(context.Context, storage.Document) error { return errDiskGone }
func (brokenStore) FindByOwner(context.Context, core.Kind, string) ([]storage.Document, error) {
	return nil, errDiskGone
}
func (brokenStore) Ping(context.Context) error { return errDiskGone }
func (brokenStore) Close() error               { return nil }

func newTestServer(t *testing.T, store storage.DocumentStore, opts Options) *Server {
	t.Helper()
	svcs := Services{
		Incomes:  services.NewRecordService[core.Income](storage.NewRepository[core.Income](store), nil, nil),
		Expenses: services.NewRecordService[core.Expense](storage.NewRepository[core.Expense](store), nil, nil),
		Goals:    services.NewRecordService[core.Goal](storage.NewRepository[core.Goal](store), nil, nil),
	}
	srv := NewServer(":0", svcs, store, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	rr := do(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Budgetbook API", rr.Body.String())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	}
}

func TestReadyzReportsStoreFailure(t *testing.T) {
	srv := newTestServer(t, brokenStore{}, Options{})

	rr := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "disk gone")
}

func TestCreateAndListExpense(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	rr := do(t, srv, http.MethodPost, "/expenses", `{"ownerId":"u1","title":"Coffee","amount":3.5}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "u1", created["ownerId"])
	assert.Equal(t, "Coffee", created["title"])
	assert.Equal(t, 3.5, created["amount"])
	assert.Contains(t, created, "category")
	assert.Nil(t, created["category"])
	assert.NotEmpty(t, created["recordedAt"])

	rr = do(t, srv, http.MethodGet, "/expenses/u1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created["id"], listed[0]["id"])
}

func TestListUnknownOwnerIsEmptyArray(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	rr := do(t, srv, http.MethodGet, "/goals/u2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCreateIncomeMissingField(t *testing.T) {
	store := memory.New()
	srv := newTestServer(t, store, Options{})

	rr := do(t, srv, http.MethodPost, "/incomes", `{"ownerId":"u1","amount":1000}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "source")
	assert.Zero(t, store.Len())

	rr = do(t, srv, http.MethodGet, "/incomes/u1", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCreateRejectsBadBodies(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"ownerId":`, http.StatusBadRequest},
		{"array", `[1,2]`, http.StatusBadRequest},
		{"empty", ``, http.StatusBadRequest},
		{"wrong type", `{"ownerId":"u1","goalName":"Car","targetAmount":"lots","years":2}`, http.StatusBadRequest},
		{"too large", `{"ownerId":"` + strings.Repeat("x", int(MaxBodyBytes)) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/goals", tt.body)
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestStoreFailureStatuses(t *testing.T) {
	srv := newTestServer(t, brokenStore{}, Options{})

	rr := do(t, srv, http.MethodPost, "/incomes", `{"ownerId":"u1","source":"Salary","amount":1000}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "disk gone")

	rr = do(t, srv, http.MethodGet, "/incomes/u1", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "disk gone")
}

func TestDuplicateGoalsGetDistinctIDs(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	body := `{"ownerId":"u1","goalName":"Car","targetAmount":20000,"years":3}`

	ids := map[string]bool{}
	for i := 0; i < 2; i++ {
		rr := do(t, srv, http.MethodPost, "/goals", body)
		require.Equal(t, http.StatusCreated, rr.Code)
		var g core.Goal
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
		ids[g.ID] = true
	}
	assert.Len(t, ids, 2)

	rr := do(t, srv, http.MethodGet, "/goals/u1", "")
	var goals []core.Goal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &goals))
	assert.Len(t, goals, 2)
}

func TestAPIPrefix(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	rr := do(t, srv, http.MethodPost, "/api/incomes", `{"ownerId":"u1","source":"Salary","amount":1000}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, srv, http.MethodGet, "/incomes/u1", "")
	var incomes []core.Income
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &incomes))
	require.Len(t, incomes, 1)
	assert.Equal(t, "Salary", incomes[0].Source)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	rr := do(t, srv, http.MethodGet, "/expenses", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(t, srv, http.MethodDelete, "/expenses/u1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRateLimitOnCreate(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{RateLimitPerMinute: 2})
	body := `{"ownerId":"u1","source":"Salary","amount":1}`

	for i := 0; i < 2; i++ {
		rr := do(t, srv, http.MethodPost, "/incomes", body)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := do(t, srv, http.MethodPost, "/incomes", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "rate limit exceeded")

	// reads are not limited
	rr = do(t, srv, http.MethodGet, "/incomes/u1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddlewareHeaders(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{CORSOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/incomes", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestDotSegmentOwnerRejected(t *testing.T) {
	store := memory.New()
	srv := newTestServer(t, store, Options{})

	for _, owner := range []string{".", ".."} {
		rr := do(t, srv, http.MethodPost, "/expenses", `{"ownerId":"`+owner+`","title":"Coffee","amount":3.5}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code, owner)
		assert.Contains(t, rr.Body.String(), "ownerId")
	}
	assert.Zero(t, store.Len())
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	rr := do(t, srv, http.MethodPost, "/incomes", `{"ownerId":"u1","source":"Salary","amount":1000}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = do(t, srv, http.MethodPost, "/goals", `{"ownerId":"u1","goalName":"Car","targetAmount":20000,"years":3}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	do(t, srv, http.MethodGet, "/.env", "")

	rr = do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")

	body := rr.Body.String()
	assert.Contains(t, body, "http_requests_total 3\n")
	assert.Contains(t, body, `records_created_total{kind="income"} 1`)
	assert.Contains(t, body, `records_created_total{kind="expense"} 0`)
	assert.Contains(t, body, `records_created_total{kind="goal"} 1`)
	assert.Contains(t, body, `list_cache_entries{kind="income"} 0`)
	assert.Contains(t, body, "rate_limit_hits_total 0\n")
	assert.Contains(t, body, "rate_limit_active_clients 1\n")
	assert.Contains(t, body, "security_suspicious_requests_total 1\n")
	assert.Contains(t, body, "uptime_seconds ")
}

func TestTrustedProxyForwardedClients(t *testing.T) {
	post := func(srv *Server, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/incomes", strings.NewReader(`{"ownerId":"u1","source":"Salary","amount":1}`))
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		return rr.Code
	}

	// httptest requests come from 192.0.2.1
	trusting := newTestServer(t, memory.New(), Options{RateLimitPerMinute: 1, TrustedProxies: []string{"192.0.2.0/24"}})
	assert.Equal(t, http.StatusCreated, post(trusting, "198.51.100.1"))
	assert.Equal(t, http.StatusCreated, post(trusting, "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, post(trusting, "198.51.100.1"))

	untrusting := newTestServer(t, memory.New(), Options{RateLimitPerMinute: 1, TrustedProxies: []string{"not-a-cidr"}})
	assert.Equal(t, http.StatusCreated, post(untrusting, "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, post(untrusting, "198.51.100.2"))
}
