package email

import (
	"fmt"
	"net/smtp"

	"paydash.app/cloud/internal/logger"
	"paydash.app/cloud/models"
)

// Sender delivers order receipts over SMTP. A zero Sender is disabled and
// drops receipts silently.
type Sender struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (s *Sender) Enabled() bool {
	return s != nil && s.Host != "" && s.Port != "" && s.User != "" && s.Pass != ""
}

// SendReceipt emails a plain-text receipt for a paid order.
func (s *Sender) SendReceipt(order *models.Order) error {
	if !s.Enabled() {
		logger.Debug("Receipt sender disabled, skipping", map[string]interface{}{
			"order_id": order.ID,
		})
		return nil
	}

	name := order.CustomerName
	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf(`Hello %s,

Thank you for your purchase! Your payment has been processed successfully.

ORDER DETAILS
Product: %s
Amount Paid: %s
Reference: %s

If you have any questions, just reply to this email.

Best regards,
The Paydash Team`,
		name,
		order.ProductName,
		models.FormatAmount(order.AmountTotal, order.Currency),
		order.StripeSessionID,
	)

	return s.send(order.CustomerEmail, "Your payment receipt", body)
}

func (s *Sender) send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}

	from := s.From
	if from == "" {
		from = s.User
	}

	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}
