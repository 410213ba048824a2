package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marocpos/backend/internal/cache"
	"marocpos/backend/internal/domain"
	"marocpos/backend/internal/service"
	"marocpos/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NoopReportCache{}, time.Second)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*")
}

// loginToken performs a real login against the handler and returns the
// bearer token for the given account.
func loginToken(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	return body.AccessToken
}

func authedRequest(t *testing.T, method, target, token string, payload any) *http.Request {
	t.Helper()

	var req *http.Request
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleLogin_RateLimit(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	// The loginLimiter allows 5 attempts per minute; httptest requests all
	// share the same RemoteAddr.
	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "badpass",
	})
	var last int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on the sixth attempt, got %d", last)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCashierCannotCreateProduct(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	req := authedRequest(t, http.MethodPost, "/api/v1/products", token, domain.ProductCreateRequest{
		Name: "Savon noir", UnitPrice: 15,
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier create, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateSaleAndListPayments(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	req := authedRequest(t, http.MethodPost, "/api/v1/sales", token, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: 1, Quantity: 1}},
		Payments: []domain.PaymentEntry{
			{MethodID: 1, Amount: 50},
			{MethodID: 2, Amount: 35, Reference: "TX-77"},
		},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var created struct {
		Sale domain.Sale `json:"sale"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode sale: %v", err)
	}
	if created.Sale.ID == 0 || created.Sale.PaymentMethod != "Mixte" {
		t.Fatalf("unexpected sale: %+v", created.Sale)
	}

	req = authedRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/sales/%d/payments", created.Sale.ID), token, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var payments struct {
		Payments []domain.SalePayment `json:"payments"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payments); err != nil {
		t.Fatalf("decode payments: %v", err)
	}
	if len(payments.Payments) != 2 {
		t.Fatalf("expected 2 payment splits, got %d", len(payments.Payments))
	}
}

func TestSaleInsufficientStockConflict(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	req := authedRequest(t, http.MethodPost, "/api/v1/sales", token, domain.SaleCreateRequest{
		Items: []domain.SaleLineRequest{{ProductID: 1, Quantity: 9999}},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for oversell, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestStockAdjustmentRejectsUnknownType(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "admin", "admin123")

	req := authedRequest(t, http.MethodPost, "/api/v1/stock/adjustments", token, domain.StockAdjustmentRequest{
		ProductID: 1, MovementType: "recount", Quantity: 2,
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown movement type, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestReportEndpoints(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	adminToken := loginToken(t, handler, "admin", "admin123")

	req := authedRequest(t, http.MethodGet, "/api/v1/reports", adminToken, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for report index, got %d", rec.Code)
	}
	var index struct {
		Reports []string `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&index); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(index.Reports) != 8 {
		t.Fatalf("expected 8 report ids, got %v", index.Reports)
	}

	req = authedRequest(t, http.MethodGet, "/api/v1/reports/daily-sales", adminToken, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for daily-sales, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var daily domain.DailySalesReport
	if err := json.NewDecoder(rec.Body).Decode(&daily); err != nil {
		t.Fatalf("decode daily report: %v", err)
	}
	if daily.Date == "" {
		t.Fatalf("expected date in report, got %+v", daily)
	}

	req = authedRequest(t, http.MethodGet, "/api/v1/reports/no-such-report", adminToken, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown report, got %d", rec.Code)
	}

	// Reports are admin-only.
	cashierToken := loginToken(t, handler, "cashier", "cashier123")
	req = authedRequest(t, http.MethodGet, "/api/v1/reports/daily-sales", cashierToken, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier report access, got %d", rec.Code)
	}
}

func TestReportRejectsMalformedProductID(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "admin", "admin123")

	req := authedRequest(t, http.MethodGet, "/api/v1/reports/product-performance?product_id=abc", token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed product_id, got %d", rec.Code)
	}
}

func TestPaymentMethodListing(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler, "cashier", "cashier123")

	req := authedRequest(t, http.MethodGet, "/api/v1/payment-methods", token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Methods []domain.PaymentMethod `json:"payment_methods"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode methods: %v", err)
	}
	if len(body.Methods) != 5 {
		t.Fatalf("expected the 5 default methods, got %d", len(body.Methods))
	}
}

func TestCreatedUserCanLoginWithMixedCaseUsername(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	admin := loginToken(t, handler, "admin", "admin123")

	req := authedRequest(t, http.MethodPost, "/api/v1/users", admin, map[string]string{
		"username": "Marie",
		"password": "marie-secret-1",
		"role":     "cashier",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// The account is stored lowercase, so both spellings must authenticate.
	if token := loginToken(t, handler, "Marie", "marie-secret-1"); token == "" {
		t.Fatal("expected a token for the mixed-case spelling")
	}
	if token := loginToken(t, handler, "marie", "marie-secret-1"); token == "" {
		t.Fatal("expected a token for the lowercase spelling")
	}
}
