package models

import "time"

const (
	OrderPending = "pending"
	OrderPaid    = "paid"
)

// Order is the local record of a checkout session. It is created as
// pending when the session is initiated and marked paid by the webhook.
type Order struct {
	ID              string
	StripeSessionID string
	CustomerEmail   string
	CustomerName    string
	Country         string
	ProductName     string
	AmountTotal     int64
	Currency        string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
