package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/marketwatch/backend/internal/domain"
)

// HTTPProvider queries a marketplace's search API over HTTP. One instance is
// constructed per configured marketplace endpoint; all of them speak the
// same JSON search contract.
type HTTPProvider struct {
	name        string
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

// NewHTTPProvider creates a provider for one marketplace endpoint. Requests
// are rate limited to stay inside typical open-API quotas.
func NewHTTPProvider(name, baseURL, apiKey string, logger zerolog.Logger) *HTTPProvider {
	// Marketplace open APIs commonly allow on the order of 1000 requests
	// per hour; 0.278 req/s with a small burst keeps us under that.
	limiter := rate.NewLimiter(rate.Limit(0.278), 10)

	return &HTTPProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: limiter,
		logger:      logger.With().Str("provider", name).Logger(),
	}
}

// Name returns the marketplace name this provider searches.
func (p *HTTPProvider) Name() string { return p.name }

// Available reports whether the provider has an endpoint configured.
func (p *HTTPProvider) Available() bool { return p.baseURL != "" }

// Search queries the marketplace for a keyword. Transient failures are
// retried up to 3 times with exponential backoff; an empty offer list is a
// normal no-results response.
func (p *HTTPProvider) Search(ctx context.Context, keyword string) (*domain.SearchResult, error) {
	if !p.Available() {
		return nil, domain.ErrProviderUnavailable
	}

	started := time.Now()

	endpoint := fmt.Sprintf("%s/search", p.baseURL)
	params := url.Values{}
	params.Add("keyword", keyword)
	if p.apiKey != "" {
		params.Add("api_key", p.apiKey)
	}
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := p.doRequest(ctx, reqURL)
		if err != nil {
			p.logger.Warn().Err(err).Int("attempt", attempt).Msg("search request failed")
			lastErr = err
			if !sleepBackoff(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			p.logger.Warn().
				Int("attempt", attempt).
				Int("status", resp.StatusCode).
				Msg("search returned non-OK status")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
			if !sleepBackoff(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		var result domain.SearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}

		if result.Marketplace == "" {
			result.Marketplace = p.name
		}
		result.TotalCount = len(result.Offers)
		result.SearchTime = time.Since(started).Seconds()

		p.logger.Debug().
			Int("offers", len(result.Offers)).
			Str("keyword", keyword).
			Msg("search completed")
		return &result, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET with the provider's headers.
func (p *HTTPProvider) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "marketwatch/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return resp, nil
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// sleepBackoff waits out the backoff for an attempt, returning false if the
// context was cancelled first.
func sleepBackoff(ctx context.Context, attempt int) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(exponentialBackoff(attempt)):
		return true
	}
}
