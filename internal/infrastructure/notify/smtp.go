package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/marketwatch/backend/internal/domain"
)

// SMTPConfig holds mail delivery settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// SMTPNotifier delivers price-drop alerts by email.
type SMTPNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPNotifier creates an email notifier.
func NewSMTPNotifier(config SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{config: config, logger: logger}
}

// Configured reports whether mail delivery settings are complete.
func (n *SMTPNotifier) Configured() bool {
	c := n.config
	return c.Host != "" && c.Port != "" && c.User != "" && c.To != ""
}

// NotifyPriceDrop emails the watch owner that the target price was reached.
// Missing SMTP configuration downgrades to a warning instead of failing the
// scan.
func (n *SMTPNotifier) NotifyPriceDrop(ctx context.Context, watch *domain.Watch, offer *domain.Offer) error {
	if !n.Configured() {
		n.logger.Warn().Msg("SMTP not configured, skipping price alert email")
		return nil
	}

	product := watch.Product
	productName := "watched product"
	if product != nil {
		productName = product.DisplayName()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Subject: Price alert: %s\r\n", productName)
	fmt.Fprintf(&buf, "From: %s\r\n", n.config.User)
	fmt.Fprintf(&buf, "To: %s\r\n", n.config.To)
	buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "Product: %s\n", productName)
	fmt.Fprintf(&buf, "Target price: %.0f\n", watch.TargetPrice)
	fmt.Fprintf(&buf, "Current best: %.0f (%.0f + %.0f shipping)\n", offer.TotalPrice(), offer.Price, offer.ShippingFee)
	fmt.Fprintf(&buf, "Marketplace: %s (%s)\n", offer.Marketplace, offer.Seller)
	fmt.Fprintf(&buf, "Link: %s\n", offer.URL)

	addr := n.config.Host + ":" + n.config.Port
	auth := smtp.PlainAuth("", n.config.User, n.config.Pass, n.config.Host)
	if err := smtp.SendMail(addr, auth, n.config.User, []string{n.config.To}, buf.Bytes()); err != nil {
		n.logger.Error().Err(err).Msg("price alert email send failed")
		return err
	}

	n.logger.Info().
		Str("product", productName).
		Float64("totalPrice", offer.TotalPrice()).
		Msg("price alert email sent")
	return nil
}
