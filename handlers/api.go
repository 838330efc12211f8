package handlers

import (
	"context"
	"net/http"
	"time"

	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/internal/stripeapi"
)

type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Stripe    *stripeapi.AccountInfo `json:"stripe,omitempty"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Version:   s.Version,
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	account, err := s.Stripe.CheckConnection(ctx)
	if err != nil {
		category, _ := stripeapi.Classify(err)
		logger.Warn("Provider connection check failed", map[string]interface{}{
			"error":    err.Error(),
			"category": string(category),
		})
		response.Status = "degraded"
	} else {
		response.Stripe = account
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *Server) ProductsAPI(w http.ResponseWriter, r *http.Request) {
	items, err := s.Stripe.Catalog(r.Context())
	if err != nil && len(items) == 0 {
		_, message := stripeapi.Classify(err)
		writeErrorResponse(w, http.StatusBadGateway, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": items,
		"count":    len(items),
	})
}

func (s *Server) RevenueAPI(w http.ResponseWriter, r *http.Request) {
	summary, stale, fetchErr := s.revenueSummary(r.Context())

	payload := map[string]interface{}{
		"summary": summary,
		"stale":   stale,
	}
	if fetchErr != "" {
		payload["warning"] = fetchErr
	}

	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) StatusAPI(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"checkout_sessions": s.Metrics.CheckoutSessions.Load(),
		"webhook_events":    s.Metrics.WebhookEvents.Load(),
		"duplicate_events":  s.Metrics.DuplicateEvents.Load(),
		"catalog_fallbacks": s.Metrics.CatalogFallbacks.Load(),
	})
}
