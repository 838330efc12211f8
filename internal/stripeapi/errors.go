package stripeapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v82"
)

// Category buckets provider failures into the handful of cases the UI
// distinguishes. It mirrors the provider's own error taxonomy.
type Category string

const (
	CategoryCardDeclined   Category = "card_declined"
	CategoryRateLimited    Category = "rate_limited"
	CategoryInvalidRequest Category = "invalid_request"
	CategoryAuthentication Category = "authentication"
	CategoryNetwork        Category = "network"
	CategoryProvider       Category = "provider"
)

// Classify maps an error from any provider call to a category and a
// message safe to show to the user.
func Classify(err error) (Category, string) {
	if err == nil {
		return "", ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryNetwork, "The request to the payment provider timed out. Please try again."
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return CategoryNetwork, "Could not reach the payment provider. Check your connection and try again."
	}

	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		return CategoryCardDeclined, "The card was declined."
	case stripeErr.Code == stripe.ErrorCodeRateLimit || stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
		return CategoryRateLimited, "Too many requests to the payment provider. Please wait a moment and try again."
	case stripeErr.HTTPStatusCode == http.StatusUnauthorized:
		return CategoryAuthentication, "Payment provider authentication failed. Check the configured API key."
	case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
		msg := "The payment provider rejected the request."
		if stripeErr.Msg != "" {
			msg = stripeErr.Msg
		}
		return CategoryInvalidRequest, msg
	default:
		return CategoryProvider, "The payment provider reported an error. Please try again later."
	}
}
