package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketwatch/backend/internal/domain"
)

// WatchConfig holds configuration for the watch scanning service.
type WatchConfig struct {
	ScanInterval    time.Duration
	ProviderTimeout time.Duration
}

// WatchService periodically refreshes offers for watched products and
// notifies watch owners when the best total price reaches their target.
type WatchService struct {
	watches         domain.WatchRepository
	catalog         domain.Catalog
	providers       []domain.Provider
	notifier        domain.Notifier
	scanInterval    time.Duration
	providerTimeout time.Duration
	logger          zerolog.Logger
}

// NewWatchService creates a watch scanning service.
func NewWatchService(
	watches domain.WatchRepository,
	catalog domain.Catalog,
	providers []domain.Provider,
	notifier domain.Notifier,
	logger zerolog.Logger,
	config WatchConfig,
) *WatchService {
	scanInterval := config.ScanInterval
	if scanInterval == 0 {
		scanInterval = 30 * time.Minute
	}

	providerTimeout := config.ProviderTimeout
	if providerTimeout == 0 {
		providerTimeout = 10 * time.Second
	}

	return &WatchService{
		watches:         watches,
		catalog:         catalog,
		providers:       providers,
		notifier:        notifier,
		scanInterval:    scanInterval,
		providerTimeout: providerTimeout,
		logger:          logger,
	}
}

// Run scans watches on a fixed interval until the context is cancelled.
func (s *WatchService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ScanWatches(ctx); err != nil {
				s.logger.Error().Err(err).Msg("watch scan failed")
			}
		}
	}
}

// ScanWatches refreshes offers for every active watch and sends alerts where
// the target price has been reached. One watch failing is logged and skipped
// so the rest of the scan proceeds.
func (s *WatchService) ScanWatches(ctx context.Context) error {
	active, err := s.watches.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("listing active watches: %w", err)
	}

	if len(active) == 0 {
		s.logger.Debug().Msg("no active watches")
		return nil
	}

	s.logger.Info().Int("count", len(active)).Msg("scanning active watches")

	for _, watch := range active {
		if err := s.scanWatch(ctx, watch); err != nil {
			s.logger.Error().
				Err(err).
				Str("watch", watch.ID.String()).
				Msg("watch processing failed, continuing")
		}
	}

	return nil
}

// scanWatch refreshes a single watch's product offers and alerts if its
// target has been reached.
func (s *WatchService) scanWatch(ctx context.Context, watch *domain.Watch) error {
	product := watch.Product
	if product == nil {
		fetched, err := s.catalog.GetProduct(ctx, watch.ProductID)
		if err != nil {
			return fmt.Errorf("loading watched product: %w", err)
		}
		product = fetched
	}

	if err := s.refreshOffers(ctx, product); err != nil {
		return err
	}

	offers, err := s.catalog.ListOffers(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("listing offers: %w", err)
	}

	best := cheapestOffer(offers)
	if best == nil {
		s.logger.Debug().Str("product", product.DisplayName()).Msg("no offers for watched product")
		return nil
	}

	if best.TotalPrice() <= watch.TargetPrice {
		s.logger.Info().
			Str("product", product.DisplayName()).
			Float64("totalPrice", best.TotalPrice()).
			Float64("targetPrice", watch.TargetPrice).
			Msg("target price reached, notifying")
		if err := s.notifier.NotifyPriceDrop(ctx, watch, best); err != nil {
			return fmt.Errorf("sending price alert: %w", err)
		}
	}

	return nil
}

// refreshOffers searches the providers for the watched product by name and
// persists offers with URLs not seen before. Provider failures are logged
// and skipped, mirroring aggregation behavior.
func (s *WatchService) refreshOffers(ctx context.Context, product *domain.Product) error {
	existing, err := s.catalog.ListOffers(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("listing existing offers: %w", err)
	}

	knownURLs := make(map[string]bool, len(existing))
	for _, offer := range existing {
		knownURLs[offer.URL] = true
	}

	for _, provider := range s.providers {
		if !provider.Available() {
			continue
		}

		searchCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		result, err := provider.Search(searchCtx, product.Name)
		cancel()
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("provider", provider.Name()).
				Str("product", product.DisplayName()).
				Msg("provider refresh failed, skipping")
			continue
		}

		for _, raw := range result.Offers {
			if knownURLs[raw.URL] {
				continue
			}

			if _, err := s.catalog.CreateOffer(ctx, product, raw); err != nil {
				s.logger.Warn().
					Err(err).
					Str("marketplace", raw.Marketplace).
					Msg("failed to persist refreshed offer")
				continue
			}
			knownURLs[raw.URL] = true
		}
	}

	return nil
}

// cheapestOffer returns the offer with the lowest total price, or nil for an
// empty list.
func cheapestOffer(offers []*domain.Offer) *domain.Offer {
	var best *domain.Offer
	for _, offer := range offers {
		if best == nil || offer.TotalPrice() < best.TotalPrice() {
			best = offer
		}
	}
	return best
}
