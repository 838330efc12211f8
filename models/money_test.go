package models

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{2999, "USD", "$29.99"},
		{2999, "usd", "$29.99"},
		{50, "USD", "$0.50"},
		{1000, "EUR", "€10.00"},
		{500, "GBP", "£5.00"},
		{1250, "CAD", "CA$12.50"},
		{1250, "AUD", "A$12.50"},
		{9900, "nok", "99.00 NOK"},
		{0, "USD", "$0.00"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatAmount(%d, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}
