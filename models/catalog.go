package models

import (
	"fmt"
	"strings"
	"time"
)

// CatalogItem is one sellable row on the catalog page: a product joined
// with one of its prices. A product with three prices yields three items.
type CatalogItem struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	PriceID     string    `json:"price_id"`
	UnitAmount  int64     `json:"unit_amount"`
	Currency    string    `json:"currency"`
	Recurring   bool      `json:"recurring"`
	Interval    string    `json:"interval,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c CatalogItem) DisplayPrice() string {
	price := FormatAmount(c.UnitAmount, c.Currency)
	if c.Recurring && c.Interval != "" {
		return fmt.Sprintf("%s per %s", price, c.Interval)
	}
	return price
}

// MinimumAmountCents matches the provider's smallest chargeable amount.
const MinimumAmountCents = 50

var supportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"gbp": true,
	"cad": true,
	"aud": true,
}

var validIntervals = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// ProductInput carries the product creation form.
type ProductInput struct {
	Name          string
	Description   string
	ImageURL      string
	AmountCents   int64
	Currency      string
	Recurring     bool
	Interval      string
	Nickname      string
	MetadataKey   string
	MetadataValue string
}

func (p ProductInput) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if p.AmountCents < MinimumAmountCents {
		return fmt.Errorf("price amount must be at least %s", FormatAmount(MinimumAmountCents, p.Currency))
	}
	currency := strings.ToLower(p.Currency)
	if !supportedCurrencies[currency] {
		return fmt.Errorf("unsupported currency %q", p.Currency)
	}
	if p.Recurring && !validIntervals[p.Interval] {
		return fmt.Errorf("invalid billing interval %q", p.Interval)
	}
	if (p.MetadataKey == "") != (p.MetadataValue == "") {
		return fmt.Errorf("metadata key and value must be set together")
	}
	return nil
}
