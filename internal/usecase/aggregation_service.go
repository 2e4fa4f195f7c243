package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketwatch/backend/internal/domain"
)

// AggregationConfig holds configuration for the aggregation service.
type AggregationConfig struct {
	ProviderTimeout    time.Duration
	CacheTTL           time.Duration
	MatchThreshold     float64
	Weights            domain.SimilarityWeights
	EnableDebugLogging bool
}

// AggregationService fans a keyword out to every registered marketplace
// provider, converts the raw offers into catalog-backed records, clusters
// them with the matcher, and reduces each cluster into a product summary
// with a best price.
type AggregationService struct {
	providers       []domain.Provider
	catalog         domain.Catalog
	cache           domain.CacheRepository
	matcher         *Matcher
	providerTimeout time.Duration
	cacheTTL        time.Duration
	logger          zerolog.Logger
}

// NewAggregationService creates an aggregation service. The provider list is
// fixed at construction; registration is owned by the composition root.
func NewAggregationService(
	providers []domain.Provider,
	catalog domain.Catalog,
	cache domain.CacheRepository,
	logger zerolog.Logger,
	config AggregationConfig,
) *AggregationService {
	matcher := NewMatcher(MatcherConfig{
		Threshold:          config.MatchThreshold,
		Weights:            config.Weights,
		EnableDebugLogging: config.EnableDebugLogging,
	})

	providerTimeout := config.ProviderTimeout
	if providerTimeout == 0 {
		providerTimeout = 10 * time.Second
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &AggregationService{
		providers:       providers,
		catalog:         catalog,
		cache:           cache,
		matcher:         matcher,
		providerTimeout: providerTimeout,
		cacheTTL:        cacheTTL,
		logger:          logger,
	}
}

// providerResult carries one provider's settled outcome across the fan-in
// barrier.
type providerResult struct {
	name   string
	result *domain.SearchResult
	err    error
}

// Aggregate runs one full pass for a keyword: concurrent provider fan-out,
// catalog conversion, grouping, and per-group best-price reduction. A
// provider failure never aborts the pass; no offers at all is a normal
// outcome with empty collections and a nil best price.
func (s *AggregationService) Aggregate(ctx context.Context, keyword string) (*domain.AggregationResult, error) {
	if keyword == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := searchCacheKey(keyword)
	if s.cache != nil {
		if value, err := s.cache.Get(ctx, cacheKey); err == nil {
			if result, ok := value.(*domain.AggregationResult); ok {
				s.logger.Debug().Str("keyword", keyword).Msg("aggregation served from cache")
				return result, nil
			}
		}
	}

	rawOffers := s.searchProviders(ctx, keyword)
	if len(rawOffers) == 0 {
		return &domain.AggregationResult{
			Products: []domain.ProductSummary{},
			Offers:   []*domain.Offer{},
		}, nil
	}

	candidates, err := s.convertOffers(ctx, rawOffers)
	if err != nil {
		return nil, err
	}

	groups := s.matcher.Group(candidates, s.matcher.Threshold())
	result := reduceGroups(groups)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("keyword", keyword).Msg("failed to cache aggregation result")
		}
	}

	return result, nil
}

// searchProviders issues the keyword to every available provider
// concurrently, each under its own timeout, and joins at the fan-in barrier.
// Providers that error or time out are logged and excluded; partial results
// are the expected steady state.
func (s *AggregationService) searchProviders(ctx context.Context, keyword string) []domain.RawOffer {
	results := make(chan providerResult, len(s.providers))
	var wg sync.WaitGroup

	for _, provider := range s.providers {
		if !provider.Available() {
			s.logger.Debug().Str("provider", provider.Name()).Msg("provider unavailable, skipping")
			continue
		}

		wg.Add(1)
		go func(p domain.Provider) {
			defer wg.Done()

			searchCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			defer cancel()

			result, err := p.Search(searchCtx, keyword)
			results <- providerResult{name: p.Name(), result: result, err: err}
		}(provider)
	}

	wg.Wait()
	close(results)

	var rawOffers []domain.RawOffer
	for settled := range results {
		if settled.err != nil {
			s.logger.Warn().
				Err(settled.err).
				Str("provider", settled.name).
				Str("keyword", keyword).
				Msg("provider search failed, excluding from aggregation")
			continue
		}
		rawOffers = append(rawOffers, settled.result.Offers...)
	}

	return rawOffers
}

// convertOffers turns raw provider offers into catalog-backed match
// candidates. The product for each offer is looked up or created by the
// (brand, model_code) pair extracted from its title, falling back to the
// "Unknown" sentinel so no offer is dropped. A catalog store failure is
// unrecoverable and propagates; a single offer failing to persist is logged
// and skipped.
func (s *AggregationService) convertOffers(ctx context.Context, rawOffers []domain.RawOffer) ([]domain.MatchCandidate, error) {
	candidates := make([]domain.MatchCandidate, 0, len(rawOffers))

	for _, raw := range rawOffers {
		tokens := ExtractTokens(raw.Title)

		brand := tokens[domain.TokenBrand]
		if brand == "" {
			brand = domain.UnknownValue
		}
		modelCode := tokens[domain.TokenModelCode]
		if modelCode == "" {
			modelCode = domain.UnknownValue
		}

		product, err := s.catalog.GetOrCreateProduct(ctx, brand, modelCode, raw.Title)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}

		offer, err := s.catalog.CreateOffer(ctx, product, raw)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("marketplace", raw.Marketplace).
				Str("title", raw.Title).
				Msg("failed to persist offer, skipping candidate")
			continue
		}

		candidates = append(candidates, domain.MatchCandidate{Product: product, Offer: offer})
	}

	return candidates, nil
}

// reduceGroups collapses each match group into a product summary keyed by
// the group's representative (its first candidate), selecting the group's
// best offer by minimum total price and tracking the global best across
// groups.
func reduceGroups(groups []domain.MatchGroup) *domain.AggregationResult {
	result := &domain.AggregationResult{
		Products: make([]domain.ProductSummary, 0, len(groups)),
		Offers:   []*domain.Offer{},
	}

	for _, group := range groups {
		if len(group) == 0 {
			continue
		}

		representative := group[0].Product

		var bestOffer *domain.Offer
		marketplaces := make([]string, 0, len(group))
		seen := make(map[string]bool)
		offerCount := 0

		for _, candidate := range group {
			offer := candidate.Offer
			if offer == nil {
				continue
			}

			offerCount++
			result.Offers = append(result.Offers, offer)

			if !seen[offer.Marketplace] {
				seen[offer.Marketplace] = true
				marketplaces = append(marketplaces, offer.Marketplace)
			}

			if bestOffer == nil || offer.TotalPrice() < bestOffer.TotalPrice() {
				bestOffer = offer
			}
		}

		if bestOffer == nil {
			continue
		}

		groupBest := domain.BestPrice{
			Price:       bestOffer.Price,
			TotalPrice:  bestOffer.TotalPrice(),
			Marketplace: bestOffer.Marketplace,
			Seller:      bestOffer.Seller,
			ProductID:   representative.ID,
		}

		if result.BestPrice == nil || groupBest.TotalPrice < result.BestPrice.TotalPrice {
			best := groupBest
			result.BestPrice = &best
		}

		result.Products = append(result.Products, domain.ProductSummary{
			ID:           representative.ID,
			Brand:        representative.Brand,
			ModelCode:    representative.ModelCode,
			Name:         representative.Name,
			GTIN:         representative.GTIN,
			BestPrice:    groupBest,
			OfferCount:   offerCount,
			Marketplaces: marketplaces,
		})
	}

	result.TotalCount = len(result.Products)
	return result
}

// searchCacheKey normalizes the keyword the same way titles are normalized
// so equivalent queries share a cache entry.
func searchCacheKey(keyword string) string {
	return "search:" + NormalizeTitle(keyword)
}
