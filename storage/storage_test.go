package storage

import (
	"context"
	"testing"
	"time"

	"paydash.app/cloud/models"
)

func testOrder(id, sessionID string) models.Order {
	return models.Order{
		ID:              id,
		StripeSessionID: sessionID,
		ProductName:     "Test Product",
		AmountTotal:     2999,
		Currency:        "USD",
		Status:          models.OrderPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func testPayment(stripeID string, amount int64, created time.Time) models.Payment {
	return models.Payment{
		ID:              "payment-" + stripeID,
		StripePaymentID: stripeID,
		Amount:          amount,
		Currency:        "USD",
		Description:     "Payment",
		CreatedAt:       created,
	}
}

func TestMemoryStorage_OrderOperations(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	// Not found
	order, err := s.GetOrder(ctx, "nonexistent")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if order != nil {
		t.Error("Expected nil for missing order")
	}

	saved := testOrder("order1", "cs_test1")
	if err := s.SaveOrder(ctx, &saved); err != nil {
		t.Fatalf("Failed to save order: %v", err)
	}

	order, err = s.GetOrder(ctx, "order1")
	if err != nil {
		t.Fatalf("Failed to get order: %v", err)
	}
	if order == nil || order.StripeSessionID != "cs_test1" {
		t.Errorf("Unexpected order: %+v", order)
	}

	order, err = s.FindOrderBySessionID(ctx, "cs_test1")
	if err != nil {
		t.Fatalf("Failed to find order: %v", err)
	}
	if order == nil || order.ID != "order1" {
		t.Errorf("Unexpected order by session: %+v", order)
	}

	order, err = s.FindOrderBySessionID(ctx, "cs_missing")
	if err != nil || order != nil {
		t.Errorf("Expected (nil, nil) for missing session, got (%v, %v)", order, err)
	}

	// Save again with new status: replaces, not duplicates
	saved.Status = models.OrderPaid
	if err := s.SaveOrder(ctx, &saved); err != nil {
		t.Fatalf("Failed to update order: %v", err)
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("Failed to list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("Expected 1 order, got %d", len(orders))
	}
	if orders[0].Status != models.OrderPaid {
		t.Errorf("Expected paid status, got %s", orders[0].Status)
	}
}

func TestMemoryStorage_PaymentsSince(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	now := time.Now()

	old := testPayment("pi_old", 1000, now.AddDate(0, 0, -60))
	recent := testPayment("pi_recent", 2000, now.AddDate(0, 0, -5))
	newer := testPayment("pi_newer", 3000, now.AddDate(0, 0, -1))

	for _, p := range []models.Payment{newer, old, recent} {
		payment := p
		if err := s.SavePayment(ctx, &payment); err != nil {
			t.Fatalf("Failed to save payment: %v", err)
		}
	}

	payments, err := s.ListPaymentsSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Failed to list payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("Expected 2 payments in window, got %d", len(payments))
	}
	// Ascending by creation time
	if payments[0].StripePaymentID != "pi_recent" || payments[1].StripePaymentID != "pi_newer" {
		t.Errorf("Payments not sorted: %+v", payments)
	}
}

func TestMemoryStorage_PaymentUpsert(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	payment := testPayment("pi_dup", 1000, time.Now())
	if err := s.SavePayment(ctx, &payment); err != nil {
		t.Fatal(err)
	}
	payment.Amount = 1500
	if err := s.SavePayment(ctx, &payment); err != nil {
		t.Fatal(err)
	}

	payments, err := s.ListPaymentsSince(ctx, time.Now().AddDate(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Fatalf("Expected re-saved payment to replace, got %d rows", len(payments))
	}
	if payments[0].Amount != 1500 {
		t.Errorf("Expected amount 1500, got %d", payments[0].Amount)
	}
}

func TestMemoryStorage_MarkEventProcessed(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	seen, err := s.MarkEventProcessed(ctx, "evt_1", "checkout.session.completed")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if seen {
		t.Error("First delivery should not be marked seen")
	}

	seen, err = s.MarkEventProcessed(ctx, "evt_1", "checkout.session.completed")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !seen {
		t.Error("Second delivery should be marked seen")
	}

	seen, _ = s.MarkEventProcessed(ctx, "evt_2", "payment_intent.succeeded")
	if seen {
		t.Error("Different event id should not be marked seen")
	}
}

func TestMemoryStorage_ForgetEvent(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	if _, err := s.MarkEventProcessed(ctx, "evt_1", "checkout.session.completed"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := s.ForgetEvent(ctx, "evt_1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	seen, err := s.MarkEventProcessed(ctx, "evt_1", "checkout.session.completed")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if seen {
		t.Error("Forgotten event should not be marked seen")
	}

	if err := s.ForgetEvent(ctx, "evt_unknown"); err != nil {
		t.Errorf("Forgetting an unknown event should not error, got %v", err)
	}
}

func TestMemoryStorage_Catalog(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	items, err := s.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty catalog, got %d items", len(items))
	}

	first := []models.CatalogItem{
		{ProductID: "prod_1", PriceID: "price_1", ProductName: "One", UnitAmount: 1000, Currency: "USD"},
		{ProductID: "prod_2", PriceID: "price_2", ProductName: "Two", UnitAmount: 2000, Currency: "USD"},
	}
	if err := s.ReplaceCatalog(ctx, first); err != nil {
		t.Fatalf("Failed to replace catalog: %v", err)
	}

	items, _ = s.ListCatalog(ctx)
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	// Replace drops the old snapshot entirely
	second := []models.CatalogItem{
		{ProductID: "prod_3", PriceID: "price_3", ProductName: "Three", UnitAmount: 3000, Currency: "USD"},
	}
	if err := s.ReplaceCatalog(ctx, second); err != nil {
		t.Fatalf("Failed to replace catalog: %v", err)
	}

	items, _ = s.ListCatalog(ctx)
	if len(items) != 1 || items[0].PriceID != "price_3" {
		t.Errorf("Expected replaced snapshot, got %+v", items)
	}
}
