package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/marketwatch/backend/internal/domain"
)

// LogNotifier writes price-drop alerts to the log. Used when no mail
// transport is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyPriceDrop logs the alert.
func (n *LogNotifier) NotifyPriceDrop(ctx context.Context, watch *domain.Watch, offer *domain.Offer) error {
	event := n.logger.Info().
		Int64("userId", watch.UserID).
		Float64("targetPrice", watch.TargetPrice).
		Float64("totalPrice", offer.TotalPrice()).
		Str("marketplace", offer.Marketplace).
		Str("url", offer.URL)
	if watch.Product != nil {
		event = event.Str("product", watch.Product.DisplayName())
	}
	event.Msg("price drop alert")
	return nil
}
