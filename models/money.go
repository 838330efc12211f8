package models

import (
	"fmt"
	"strings"
)

// FormatAmount renders minor units in the conventional notation for the
// currency. Unknown currencies fall back to "12.34 XXX".
func FormatAmount(amountCents int64, currency string) string {
	amount := float64(amountCents) / 100.0

	switch strings.ToUpper(currency) {
	case "USD":
		return fmt.Sprintf("$%.2f", amount)
	case "EUR":
		return fmt.Sprintf("€%.2f", amount)
	case "GBP":
		return fmt.Sprintf("£%.2f", amount)
	case "CAD":
		return fmt.Sprintf("CA$%.2f", amount)
	case "AUD":
		return fmt.Sprintf("A$%.2f", amount)
	default:
		return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
	}
}
