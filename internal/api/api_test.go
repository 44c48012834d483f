package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/api/middleware"
	"github.com/andresuchdata/pharmacare/backend-go/internal/auth"
	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// The stores embed the repository interfaces so only the methods the routes
// under test reach need an implementation.

type accountStore struct {
	repository.AccountRepository
	accounts map[string]domain.Account
}

func (s *accountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *accountStore) FindByIDs(ctx context.Context, ids []string) ([]domain.Account, error) {
	var out []domain.Account
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type medicineStore struct {
	repository.MedicineRepository
	medicines []domain.Medicine
}

func (s *medicineStore) ListByPharmacist(ctx context.Context, pharmacistID string) ([]domain.Medicine, error) {
	var out []domain.Medicine
	for _, m := range s.medicines {
		if m.PharmacistID == pharmacistID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *medicineStore) SearchInStock(ctx context.Context, query string) ([]domain.Medicine, error) {
	var out []domain.Medicine
	for _, m := range s.medicines {
		if m.Stock > 0 && strings.Contains(strings.ToLower(m.Name), strings.ToLower(query)) {
			out = append(out, m)
		}
	}
	return out, nil
}

type orderStore struct {
	repository.OrderRepository
	orders []domain.Order
	err    error
}

func (s *orderStore) ListByPharmacist(ctx context.Context, pharmacistID string, status domain.OrderStatus) ([]domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Order
	for _, o := range s.orders {
		if o.PharmacistID == pharmacistID {
			out = append(out, o)
		}
	}
	return out, nil
}

type testServer struct {
	router *gin.Engine
	tokens *auth.JWTService
	orders *orderStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	accounts := &accountStore{accounts: map[string]domain.Account{
		"p1": {ID: "p1", Name: "Riverside", Role: domain.RolePharmacist, PharmacyName: "Riverside Pharmacy", PostalCode: "10001", IsAvailable: true},
		"c1": {ID: "c1", Name: "Ann", Role: domain.RoleCustomer, PostalCode: "10001"},
		"c2": {ID: "c2", Name: "Bob", Role: domain.RoleCustomer},
	}}
	medicines := &medicineStore{medicines: []domain.Medicine{
		{ID: "m1", PharmacistID: "p1", Name: "Paracetamol", BatchNumber: "B1", Stock: 20, ReorderLevel: 10, Price: 2.5, ExpiryDate: time.Now().AddDate(1, 0, 0)},
	}}
	orders := &orderStore{orders: []domain.Order{
		{ID: "o1", PharmacistID: "p1", Status: domain.OrderCompleted, Total: 100, CreatedAt: time.Now()},
		{ID: "o2", PharmacistID: "p1", Status: domain.OrderDelivered, Total: 50.5, CreatedAt: time.Now()},
	}}

	tokens := auth.NewJWTService(config.AuthConfig{JWTSecret: "router-test-secret"})
	clock := service.NewClock(time.UTC)
	services := &Services{
		Analytics: service.NewAnalyticsService(orders, medicines, nil, clock),
		Inventory: service.NewInventoryService(medicines, accounts, nil, nil, nil, clock),
		Tokens:    tokens,
	}

	checks := map[string]HealthCheck{"mongo": func(ctx context.Context) error { return nil }}
	return &testServer{
		router: NewRouter(services, Options{HealthChecks: checks}),
		tokens: tokens,
		orders: orders,
	}
}

func (s *testServer) do(t *testing.T, method, path, accountID string, role domain.Role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if accountID != "" {
		token, err := s.tokens.Issue(&domain.Account{ID: accountID, Role: role})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDKey))

	router := NewRouter(nil, Options{HealthChecks: map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	}})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}

func TestRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/inventory/search?name=para", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/pharmacist", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPharmacistRoutesRejectCustomers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/analytics/pharmacist", "c1", domain.RoleCustomer, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/inventory/alerts", "c1", domain.RoleCustomer, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPharmacistReportEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/analytics/pharmacist", "p1", domain.RolePharmacist, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.AnalyticsReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 150.5, report.Stats.TotalRevenue)
	assert.Equal(t, 2, report.Stats.CompletedOrders)
	assert.Equal(t, 75.25, report.Stats.AvgOrderValue)
	assert.Equal(t, 1, report.Stats.TotalMedicines)
	assert.Len(t, report.DailyRevenue, 7)
}

func TestPharmacistReportHidesInternalErrors(t *testing.T) {
	s := newTestServer(t)
	s.orders.err = errors.New("socket closed by 10.0.0.7")

	rec := s.do(t, http.MethodGet, "/api/v1/analytics/pharmacist", "p1", domain.RolePharmacist, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/inventory/search", "c1", domain.RoleCustomer, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/inventory/search?name=para", "c2", domain.RoleCustomer, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "postal code")

	rec = s.do(t, http.MethodGet, "/api/v1/inventory/search?name=zzz", "c1", domain.RoleCustomer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/inventory/search?name=PARA", "c1", domain.RoleCustomer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var results []domain.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Riverside Pharmacy", results[0].PharmacyName)
	assert.Equal(t, 4.5, results[0].Rating)
	assert.Equal(t, "LIC-PENDING", results[0].LicenseNumber)
}

func TestAlertsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/inventory/alerts", "p1", domain.RolePharmacist, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lowStock":[],"expiringSoon":[],"expired":[]}`, rec.Body.String())
}

func TestCreateMedicineValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/inventory", "p1", domain.RolePharmacist, `{"name":"Ibuprofen","price":-1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error   string                        `json:"error"`
		Details []middleware.ValidationDetail `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	fields := map[string]bool{}
	for _, d := range body.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["batchNumber"])
	assert.True(t, fields["stock"])
	assert.True(t, fields["price"])
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"https://a.test, https://b.test", " ", "*"})
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, origins)
	assert.True(t, allowAll)
}
