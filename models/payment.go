package models

import "time"

// Payment is the read model of a succeeded payment intent, the unit the
// analytics page aggregates over. Amounts stay in minor units (cents).
type Payment struct {
	ID              string
	StripePaymentID string
	Amount          int64
	Currency        string
	Description     string
	CustomerID      string
	CreatedAt       time.Time
}
