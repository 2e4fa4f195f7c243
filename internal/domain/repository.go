package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Catalog is the persistent store for products, offers and price history.
// GetOrCreateProduct must be safe under concurrent invocation for the same
// (brand, modelCode) key; the store serializes racing creators.
type Catalog interface {
	GetOrCreateProduct(ctx context.Context, brand, modelCode, name string) (*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateOffer(ctx context.Context, product *Product, raw RawOffer) (*Offer, error)
	ListOffers(ctx context.Context, productID uuid.UUID) ([]*Offer, error)
	ListPriceHistory(ctx context.Context, offerID uuid.UUID) ([]*PriceHistory, error)
}

// WatchRepository stores price watches.
type WatchRepository interface {
	Create(ctx context.Context, watch *Watch) error
	ListByUser(ctx context.Context, userID int64) ([]*Watch, error)
	ListActive(ctx context.Context) ([]*Watch, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CacheRepository defines the interface for caching aggregation results.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Notifier delivers price-drop alerts to watch owners.
type Notifier interface {
	NotifyPriceDrop(ctx context.Context, watch *Watch, offer *Offer) error
}
