package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product does not exist in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrWatchNotFound is returned when a watch does not exist
	ErrWatchNotFound = errors.New("watch not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrProviderFailure is returned when a marketplace provider request fails
	ErrProviderFailure = errors.New("marketplace provider request failed")

	// ErrProviderUnavailable is returned when a provider is registered but not usable
	ErrProviderUnavailable = errors.New("marketplace provider unavailable")

	// ErrCatalogUnavailable is returned when the catalog store cannot be reached
	ErrCatalogUnavailable = errors.New("catalog store unavailable")
)
