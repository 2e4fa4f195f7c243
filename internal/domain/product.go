package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnknownValue is the sentinel stored for brand/model_code when token extraction
// finds nothing in an offer title. Offers are never dropped for a missing brand;
// the sentinel keeps them attachable to a catalog record while staying
// distinguishable from genuinely extracted data.
const UnknownValue = "Unknown"

// Product is a catalog entry identified by (brand, model_code). Offers from
// different marketplaces attach to the same Product when they describe the
// same real-world item.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Brand     string    `gorm:"size:100;uniqueIndex:idx_brand_model" json:"brand"`
	ModelCode string    `gorm:"size:100;uniqueIndex:idx_brand_model" json:"modelCode"`
	Name      string    `gorm:"size:500" json:"name"`
	GTIN      string    `gorm:"size:50;index" json:"gtin,omitempty"`
	SpecHash  string    `gorm:"size:64" json:"specHash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName returns the brand and model code pair used in logs and alerts.
func (p *Product) DisplayName() string {
	return p.Brand + " " + p.ModelCode
}

// Offer is a single marketplace listing for a Product, captured during one
// aggregation pass. Offers are immutable once created.
type Offer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    uuid.UUID `gorm:"type:uuid;index:idx_offer_product" json:"productId"`
	Marketplace  string    `gorm:"size:50;index" json:"marketplace"`
	Seller       string    `gorm:"size:100" json:"seller"`
	Price        float64   `gorm:"type:decimal(12,0)" json:"price"`
	ShippingFee  float64   `gorm:"type:decimal(8,0);default:0" json:"shippingFee"`
	CouponHint   string    `gorm:"type:text" json:"couponHint,omitempty"`
	URL          string    `gorm:"size:1000" json:"url"`
	AffiliateURL string    `gorm:"size:1000" json:"affiliateUrl,omitempty"`
	FetchedAt    time.Time `gorm:"index" json:"fetchedAt"`
}

// TotalPrice is the price plus shipping fee, the basis for best-price ranking.
func (o *Offer) TotalPrice() float64 {
	return o.Price + o.ShippingFee
}

// PriceHistory records the price of an offer at a point in time.
type PriceHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OfferID    uuid.UUID `gorm:"type:uuid;index:idx_history_offer" json:"offerId"`
	Price      float64   `gorm:"type:decimal(12,0)" json:"price"`
	TotalPrice float64   `gorm:"type:decimal(12,0)" json:"totalPrice"`
	RecordedAt time.Time `gorm:"index" json:"recordedAt"`
}

// Watch is a user's standing request to be alerted when a product's best
// total price drops to the target or below.
type Watch struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      int64     `gorm:"index:idx_watch_user" json:"userId"`
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	TargetPrice float64   `gorm:"type:decimal(12,0)" json:"targetPrice"`
	IsActive    bool      `gorm:"default:true;index" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
