package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paydash.app/cloud/internal/testutil"
	"paydash.app/cloud/models"
)

func TestHealth_Healthy(t *testing.T) {
	db := testutil.TestStorage()
	server := NewHttpServer(db, &fakeAPI{})
	server.Version = "1.2.3"

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", response.Status)
	}
	if response.Version != "1.2.3" {
		t.Errorf("Expected version '1.2.3', got '%s'", response.Version)
	}
	if response.Stripe == nil || response.Stripe.ID != "acct_test" {
		t.Error("Expected provider account details in healthy response")
	}
}

func TestHealth_Degraded(t *testing.T) {
	db := testutil.TestStorage()
	server := NewHttpServer(db, &fakeAPI{connErr: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "degraded" {
		t.Errorf("Expected status 'degraded', got '%s'", response.Status)
	}
	if response.Stripe != nil {
		t.Error("Expected no provider details when degraded")
	}
}

func TestProductsAPI(t *testing.T) {
	db := testutil.TestStorage()
	api := &fakeAPI{
		items: []models.CatalogItem{
			testutil.CreateTestCatalogItem("prod_1", "price_1", 2999),
			testutil.CreateTestCatalogItem("prod_2", "price_2", 999),
		},
	}
	server := NewHttpServer(db, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()
	server.ProductsAPI(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Products []models.CatalogItem `json:"products"`
		Count    int                  `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Count != 2 {
		t.Errorf("Expected count 2, got %d", response.Count)
	}
	if len(response.Products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(response.Products))
	}
	if response.Products[0].ProductID != "prod_1" {
		t.Errorf("Expected first product 'prod_1', got '%s'", response.Products[0].ProductID)
	}
}

func TestProductsAPI_ProviderError(t *testing.T) {
	db := testutil.TestStorage()
	server := NewHttpServer(db, &fakeAPI{catalogErr: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()
	server.ProductsAPI(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status %d, got %d", http.StatusBadGateway, w.Code)
	}
}

func TestRevenueAPI(t *testing.T) {
	db := testutil.TestStorage()
	api := &fakeAPI{
		payments: []models.Payment{
			testutil.CreateTestPayment("pi_1", 2500, time.Now().AddDate(0, 0, -1)),
			testutil.CreateTestPayment("pi_2", 1500, time.Now()),
		},
	}
	server := NewHttpServer(db, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/revenue", nil)
	w := httptest.NewRecorder()
	server.RevenueAPI(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Summary struct {
			TotalRevenue int64  `json:"total_revenue"`
			Volume       int    `json:"total_transactions"`
			Currency     string `json:"currency"`
		} `json:"summary"`
		Stale bool `json:"stale"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Summary.TotalRevenue != 4000 {
		t.Errorf("Expected total revenue 4000, got %d", response.Summary.TotalRevenue)
	}
	if response.Summary.Volume != 2 {
		t.Errorf("Expected volume 2, got %d", response.Summary.Volume)
	}
	if response.Summary.Currency != "USD" {
		t.Errorf("Expected currency 'USD', got '%s'", response.Summary.Currency)
	}
	if response.Stale {
		t.Error("Expected live data, got stale")
	}
}

func TestRevenueAPI_Fallback(t *testing.T) {
	db := testutil.TestStorage()
	if err := testutil.SeedPayments(db, 2, 1000); err != nil {
		t.Fatalf("Failed to seed payments: %v", err)
	}
	server := NewHttpServer(db, &fakeAPI{paymentsErr: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/revenue", nil)
	w := httptest.NewRecorder()
	server.RevenueAPI(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Summary struct {
			TotalRevenue int64 `json:"total_revenue"`
		} `json:"summary"`
		Stale   bool   `json:"stale"`
		Warning string `json:"warning"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Stale {
		t.Error("Expected stale flag on fallback data")
	}
	if response.Warning == "" {
		t.Error("Expected a warning message on fallback")
	}
	if response.Summary.TotalRevenue != 2000 {
		t.Errorf("Expected total revenue 2000, got %d", response.Summary.TotalRevenue)
	}
}

func TestStatusAPI(t *testing.T) {
	db := testutil.TestStorage()
	server := NewHttpServer(db, &fakeAPI{})

	server.Metrics.CheckoutSessions.Store(3)
	server.Metrics.WebhookEvents.Store(5)
	server.Metrics.DuplicateEvents.Store(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	server.StatusAPI(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]int64
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["checkout_sessions"] != 3 {
		t.Errorf("Expected 3 checkout sessions, got %d", response["checkout_sessions"])
	}
	if response["webhook_events"] != 5 {
		t.Errorf("Expected 5 webhook events, got %d", response["webhook_events"])
	}
	if response["duplicate_events"] != 1 {
		t.Errorf("Expected 1 duplicate event, got %d", response["duplicate_events"])
	}
	if response["catalog_fallbacks"] != 0 {
		t.Errorf("Expected 0 catalog fallbacks, got %d", response["catalog_fallbacks"])
	}
}
