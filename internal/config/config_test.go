package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "paydash_test.db")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
}

func TestNew_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("CATALOG_REFRESH", "")

	cfg, err := New()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.BaseURL != "http://127.0.0.1:8080" {
		t.Errorf("Expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.CatalogRefresh != 5*time.Minute {
		t.Errorf("Expected default refresh 5m, got %v", cfg.CatalogRefresh)
	}
}

func TestNew_RequiredVariables(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing database url", "DATABASE_URL"},
		{"missing stripe secret", "STRIPE_SECRET_KEY"},
		{"missing webhook secret", "STRIPE_WEBHOOK_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := New()
			if err == nil {
				t.Fatalf("Expected error when %s is unset", tt.unset)
			}
			if !strings.Contains(err.Error(), tt.unset) {
				t.Errorf("Expected error to name %s, got %q", tt.unset, err.Error())
			}
		})
	}
}

func TestNew_RefreshInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("CATALOG_REFRESH", "30s")

	cfg, err := New()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.CatalogRefresh != 30*time.Second {
		t.Errorf("Expected 30s, got %v", cfg.CatalogRefresh)
	}

	t.Setenv("CATALOG_REFRESH", "not-a-duration")
	if _, err := New(); err == nil {
		t.Error("Expected error for invalid CATALOG_REFRESH")
	}
}

func TestReceiptsEnabled(t *testing.T) {
	setRequired(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.ReceiptsEnabled() {
		t.Error("Receipts should be disabled without SMTP config")
	}

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("SMTP_PASS", "secret")

	cfg, err = New()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !cfg.ReceiptsEnabled() {
		t.Error("Receipts should be enabled with full SMTP config")
	}
	if cfg.ReceiptFrom != "mailer@example.com" {
		t.Errorf("Expected receipt from to default to SMTP user, got %s", cfg.ReceiptFrom)
	}
}
