package testutil

import (
	"context"
	"fmt"
	"time"

	"paydash.app/cloud/models"
	"paydash.app/cloud/storage"
)

// TestStorage creates an empty memory storage.
func TestStorage() *storage.MemoryStorage {
	return storage.NewMemoryStorage()
}

// CreateTestOrder creates a pending order for the given session.
func CreateTestOrder(id, sessionID string) models.Order {
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

// CreateTestPayment creates a succeeded payment created at the given time.
func CreateTestPayment(stripeID string, amount int64, created time.Time) models.Payment {
	return models.Payment{
		ID:              "payment-" + stripeID,
		StripePaymentID: stripeID,
		Amount:          amount,
		Currency:        "USD",
		Description:     "Payment",
		CreatedAt:       created,
	}
}

// CreateTestCatalogItem creates a one-time catalog row.
func CreateTestCatalogItem(productID, priceID string, amount int64) models.CatalogItem {
	return models.CatalogItem{
		ProductID:   productID,
		ProductName: "Product " + productID,
		Description: "A test product",
		PriceID:     priceID,
		UnitAmount:  amount,
		Currency:    "USD",
		CreatedAt:   time.Now(),
	}
}

// SeedPayments stores n payments of the given amount, one per day counting
// back from now.
func SeedPayments(s storage.Storage, n int, amount int64) error {
	ctx := context.Background()
	now := time.Now()
	for i := 0; i < n; i++ {
		payment := CreateTestPayment(fmt.Sprintf("pi_seed%d", i), amount, now.AddDate(0, 0, -i))
		if err := s.SavePayment(ctx, &payment); err != nil {
			return fmt.Errorf("failed to seed payment %d: %w", i, err)
		}
	}
	return nil
}

// MockStripeEvent builds the raw JSON shape of a webhook event.
func MockStripeEvent(id, eventType string, object map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"id":   id,
		"type": eventType,
		"data": map[string]interface{}{
			"object": object,
		},
	}
}

// MockCheckoutSession builds the object payload of a completed checkout
// session event.
func MockCheckoutSession(sessionID, customerEmail string) map[string]interface{} {
	return map[string]interface{}{
		"id":             sessionID,
		"amount_total":   2999,
		"currency":       "usd",
		"payment_status": "paid",
		"customer_details": map[string]interface{}{
			"email": customerEmail,
			"name":  "Test Customer",
			"address": map[string]interface{}{
				"country": "DE",
			},
		},
		"metadata": map[string]interface{}{
			"product_name": "Test Product",
		},
	}
}

// MockPaymentIntent builds the object payload of a payment_intent event.
func MockPaymentIntent(paymentID string, amount int64, created time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":       paymentID,
		"amount":   amount,
		"currency": "usd",
		"status":   "succeeded",
		"created":  created.Unix(),
	}
}
