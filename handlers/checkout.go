package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/internal/stripeapi"
	"paydash.app/cloud/models"
)

type CheckoutRequest struct {
	PriceID     string `json:"price_id"`
	Recurring   bool   `json:"recurring"`
	ProductName string `json:"product_name"`
}

type CheckoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Checkout creates a hosted checkout session for a catalog price. Browser
// form posts are redirected to the hosted page; JSON callers get the URL.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckoutRequest
	if wantsJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid form submission")
			return
		}
		req.PriceID = r.PostFormValue("price_id")
		req.Recurring = r.PostFormValue("recurring") == "true"
		req.ProductName = r.PostFormValue("product_name")
	}

	if req.PriceID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "price_id required")
		return
	}

	sess, err := s.Stripe.CreateCheckoutSession(ctx, req.PriceID, req.Recurring)
	if err != nil {
		category, message := stripeapi.Classify(err)
		logger.Error("Checkout session creation failed", map[string]interface{}{
			"error":    err.Error(),
			"category": string(category),
			"price_id": req.PriceID,
		})

		status := http.StatusBadGateway
		if category == stripeapi.CategoryInvalidRequest {
			status = http.StatusBadRequest
		}
		writeErrorResponse(w, status, message)
		return
	}

	s.Metrics.CheckoutSessions.Inc()

	order := &models.Order{
		ID:              uuid.Must(uuid.NewRandom()).String(),
		StripeSessionID: sess.ID,
		ProductName:     req.ProductName,
		AmountTotal:     sess.AmountTotal,
		Currency:        strings.ToUpper(string(sess.Currency)),
		Status:          models.OrderPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.Storage.SaveOrder(ctx, order); err != nil {
		// The session exists either way; the webhook will reconcile it.
		logger.Error("Failed to record pending order", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sess.ID,
		})
	}

	if wantsJSON(r) {
		respondJSON(w, http.StatusCreated, CheckoutResponse{ID: sess.ID, URL: sess.URL})
		return
	}

	http.Redirect(w, r, sess.URL, http.StatusSeeOther)
}
