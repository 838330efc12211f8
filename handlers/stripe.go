package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"

	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/internal/stripeapi"
	"paydash.app/cloud/models"
)

func (s *Server) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logger.Info("Stripe webhook received", map[string]interface{}{
		"remote_addr": r.RemoteAddr,
		"user_agent":  r.Header.Get("User-Agent"),
	})

	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read webhook payload", map[string]interface{}{
			"error": err.Error(),
		})
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event := stripe.Event{}
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Error("Failed to parse webhook JSON", map[string]interface{}{
			"error": err.Error(),
		})
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Skip signature verification in test mode
	if os.Getenv("TEST_MODE") == "true" {
		logger.Debug("Skipping webhook signature verification (test mode)")
	} else {
		endpointSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		if endpointSecret == "" {
			logger.Error("STRIPE_WEBHOOK_SECRET environment variable not set")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		signatureHeader := r.Header.Get("Stripe-Signature")
		event, err = stripeapi.VerifyWebhook(payload, signatureHeader, endpointSecret)
		if err != nil {
			logger.Error("Webhook signature verification failed", map[string]interface{}{
				"error":     err.Error(),
				"signature": signatureHeader,
			})
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	logger.Info("Stripe event parsed", map[string]interface{}{
		"event_type": event.Type,
		"event_id":   event.ID,
	})

	// Providers redeliver events; replays are acknowledged but not
	// re-applied.
	seen, err := s.Storage.MarkEventProcessed(ctx, event.ID, string(event.Type))
	if err != nil {
		logger.Error("Failed to record webhook event", map[string]interface{}{
			"error":    err.Error(),
			"event_id": event.ID,
		})
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if seen {
		s.Metrics.DuplicateEvents.Inc()
		logger.Info("Duplicate webhook event, acknowledging", map[string]interface{}{
			"event_id": event.ID,
		})
		respondJSON(w, http.StatusOK, map[string]string{"received": "true", "duplicate": "true"})
		return
	}

	s.Metrics.WebhookEvents.Inc()

	switch event.Type {
	case "checkout.session.completed":
		var checkoutSession stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
			logger.Error("Failed to unmarshal checkout session", map[string]interface{}{
				"error":    err.Error(),
				"event_id": event.ID,
			})
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := s.handleCheckoutComplete(ctx, &checkoutSession); err != nil {
			logger.Error("Failed to handle checkout completion", map[string]interface{}{
				"error":      err.Error(),
				"session_id": checkoutSession.ID,
			})
			s.forgetEvent(ctx, event.ID)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			logger.Error("Failed to unmarshal payment intent", map[string]interface{}{
				"error":    err.Error(),
				"event_id": event.ID,
			})
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := s.recordPayment(ctx, &intent); err != nil {
			logger.Error("Failed to record payment", map[string]interface{}{
				"error":      err.Error(),
				"payment_id": intent.ID,
			})
			s.forgetEvent(ctx, event.ID)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err == nil {
			logger.Warn("Payment failed", map[string]interface{}{
				"payment_id": intent.ID,
				"amount":     intent.Amount,
				"currency":   string(intent.Currency),
			})
		}

	default:
		logger.Info("Unhandled webhook event type", map[string]interface{}{
			"event_type": event.Type,
			"event_id":   event.ID,
		})
	}

	logger.Info("Webhook processed successfully", map[string]interface{}{
		"event_type": event.Type,
		"event_id":   event.ID,
	})

	respondJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

// forgetEvent rolls back the processed marker when applying an event
// failed, so the provider's retry is re-applied instead of being acked
// as a duplicate.
func (s *Server) forgetEvent(ctx context.Context, eventID string) {
	if err := s.Storage.ForgetEvent(ctx, eventID); err != nil {
		logger.Error("Failed to roll back webhook event marker", map[string]interface{}{
			"error":    err.Error(),
			"event_id": eventID,
		})
	}
}

// handleCheckoutComplete marks the matching pending order as paid, or
// records a fresh order when the session was started outside this app
// (e.g. a payment link).
func (s *Server) handleCheckoutComplete(ctx context.Context, session *stripe.CheckoutSession) error {
	var customerEmail string
	if session.CustomerDetails != nil {
		customerEmail = session.CustomerDetails.Email
	} else {
		customerEmail = session.CustomerEmail
	}

	logger.Info("Processing checkout session", map[string]interface{}{
		"session_id":     session.ID,
		"customer_email": customerEmail,
		"amount":         session.AmountTotal,
		"currency":       session.Currency,
		"payment_status": session.PaymentStatus,
	})

	order, err := s.Storage.FindOrderBySessionID(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("order lookup failed: %w", err)
	}

	if order == nil {
		logger.Info("No pending order for session, creating one", map[string]interface{}{
			"session_id": session.ID,
		})
		order = &models.Order{
			ID:              uuid.Must(uuid.NewRandom()).String(),
			StripeSessionID: session.ID,
			CreatedAt:       time.Now(),
		}
	}

	order.CustomerEmail = customerEmail
	order.AmountTotal = session.AmountTotal
	order.Currency = strings.ToUpper(string(session.Currency))
	order.Status = models.OrderPaid
	order.UpdatedAt = time.Now()
	if session.CustomerDetails != nil {
		order.CustomerName = session.CustomerDetails.Name
		if session.CustomerDetails.Address != nil {
			order.Country = session.CustomerDetails.Address.Country
		}
	}
	if name := session.Metadata["product_name"]; name != "" {
		order.ProductName = name
	}

	if err := s.Storage.SaveOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	logger.Info("Order marked paid", map[string]interface{}{
		"order_id":   order.ID,
		"session_id": session.ID,
		"amount":     order.AmountTotal,
	})

	if err := s.Receipts.SendReceipt(order); err != nil {
		// The order is recorded; a lost receipt must not fail the webhook.
		logger.Error("Failed to send receipt email", map[string]interface{}{
			"error":    err.Error(),
			"email":    customerEmail,
			"order_id": order.ID,
		})
	}

	return nil
}

func (s *Server) recordPayment(ctx context.Context, intent *stripe.PaymentIntent) error {
	payment := &models.Payment{
		ID:              uuid.Must(uuid.NewRandom()).String(),
		StripePaymentID: intent.ID,
		Amount:          intent.Amount,
		Currency:        strings.ToUpper(string(intent.Currency)),
		Description:     intent.Description,
		CreatedAt:       time.Unix(intent.Created, 0),
	}
	if payment.Description == "" {
		payment.Description = "Payment"
	}
	if intent.Customer != nil {
		payment.CustomerID = intent.Customer.ID
	}

	if err := s.Storage.SavePayment(ctx, payment); err != nil {
		return err
	}

	logger.Info("Payment recorded", map[string]interface{}{
		"payment_id": intent.ID,
		"amount":     intent.Amount,
		"currency":   payment.Currency,
	})

	return nil
}
