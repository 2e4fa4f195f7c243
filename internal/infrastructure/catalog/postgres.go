package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/marketwatch/backend/internal/domain"
)

// Open connects to postgres and migrates the catalog schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&domain.Product{},
		&domain.Offer{},
		&domain.PriceHistory{},
		&domain.Watch{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// PostgresCatalog is the gorm-backed catalog store.
type PostgresCatalog struct{ db *gorm.DB }

// NewPostgresCatalog creates a catalog backed by the given database.
func NewPostgresCatalog(db *gorm.DB) *PostgresCatalog { return &PostgresCatalog{db: db} }

// GetOrCreateProduct fetches the product for a (brand, modelCode) pair or
// creates it with the given name. Concurrent creators racing on the same
// pair are serialized by the unique index: the loser re-fetches the row the
// winner inserted.
func (r *PostgresCatalog) GetOrCreateProduct(ctx context.Context, brand, modelCode, name string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("brand = ? AND model_code = ?", brand, modelCode).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product = domain.Product{
		ID:        uuid.New(),
		Brand:     brand,
		ModelCode: modelCode,
		Name:      name,
	}
	if createErr := r.db.WithContext(ctx).Create(&product).Error; createErr != nil {
		var existing domain.Product
		if refetchErr := r.db.WithContext(ctx).
			Where("brand = ? AND model_code = ?", brand, modelCode).
			First(&existing).Error; refetchErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}

	return &product, nil
}

// GetProduct fetches a product by id.
func (r *PostgresCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// CreateOffer persists a raw provider offer against a product and records
// its first price history row in the same transaction.
func (r *PostgresCatalog) CreateOffer(ctx context.Context, product *domain.Product, raw domain.RawOffer) (*domain.Offer, error) {
	now := time.Now()
	offer := &domain.Offer{
		ID:           uuid.New(),
		ProductID:    product.ID,
		Marketplace:  raw.Marketplace,
		Seller:       raw.Seller,
		Price:        raw.Price,
		ShippingFee:  raw.ShippingFee,
		URL:          raw.URL,
		AffiliateURL: raw.AffiliateURL,
		FetchedAt:    now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(offer).Error; err != nil {
			return err
		}
		history := &domain.PriceHistory{
			ID:         uuid.New(),
			OfferID:    offer.ID,
			Price:      offer.Price,
			TotalPrice: offer.TotalPrice(),
			RecordedAt: now,
		}
		return tx.Create(history).Error
	})
	if err != nil {
		return nil, err
	}

	return offer, nil
}

// ListOffers returns a product's offers, newest first.
func (r *PostgresCatalog) ListOffers(ctx context.Context, productID uuid.UUID) ([]*domain.Offer, error) {
	var offers []*domain.Offer
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("fetched_at DESC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// ListPriceHistory returns an offer's recorded prices, newest first.
func (r *PostgresCatalog) ListPriceHistory(ctx context.Context, offerID uuid.UUID) ([]*domain.PriceHistory, error) {
	var history []*domain.PriceHistory
	if err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("recorded_at DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
