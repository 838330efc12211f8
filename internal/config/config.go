package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port    string
	BaseURL string

	DatabaseURL string

	StripeSecret        string
	StripeWebhookSecret string

	SentryDSN string

	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	ReceiptFrom string

	CatalogRefresh time.Duration
}

func New() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:" + port
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	stripeSecret := os.Getenv("STRIPE_SECRET_KEY")
	if stripeSecret == "" {
		return nil, errors.New("STRIPE_SECRET_KEY environment variable is required")
	}

	stripeWebhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if stripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET environment variable is required")
	}

	refresh := 5 * time.Minute
	if v := os.Getenv("CATALOG_REFRESH"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CATALOG_REFRESH: %w", err)
		}
		refresh = d
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	receiptFrom := os.Getenv("RECEIPT_FROM")
	if receiptFrom == "" {
		receiptFrom = smtpUser
	}

	return &Config{
		Port:                port,
		BaseURL:             baseURL,
		DatabaseURL:         dbURL,
		StripeSecret:        stripeSecret,
		StripeWebhookSecret: stripeWebhookSecret,
		SentryDSN:           os.Getenv("SENTRY_DSN"),
		SMTPHost:            smtpHost,
		SMTPPort:            smtpPort,
		SMTPUser:            smtpUser,
		SMTPPass:            smtpPass,
		ReceiptFrom:         receiptFrom,
		CatalogRefresh:      refresh,
	}, nil
}

// ReceiptsEnabled reports whether the SMTP side of the config is complete
// enough to send order receipts.
func (c *Config) ReceiptsEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUser != "" && c.SMTPPass != ""
}
