package domain

import "github.com/google/uuid"

// Token attribute names extracted from free-text titles.
const (
	TokenBrand     = "brand"
	TokenModelCode = "model_code"
	TokenCapacity  = "capacity"
	TokenColor     = "color"
)

// TokenSet maps an attribute name to its extracted value. Attributes that
// could not be extracted are simply absent; an empty-string placeholder is
// never stored, because spec overlap scoring only compares keys present on
// both sides.
type TokenSet map[string]string

// MatchCandidate pairs a Product with the Offer that introduced it into an
// aggregation pass; it is the unit the grouping engine clusters. Offer may be
// nil when matching products without fresh marketplace data.
type MatchCandidate struct {
	Product *Product
	Offer   *Offer
}

// MatchGroup is an ordered cluster of candidates judged to be the same
// real-world product. Discovery order is preserved and the first element is
// the group's representative.
type MatchGroup []MatchCandidate

// SimilarityWeights configures the weighted combination of matching signals.
// The defaults sum to 1.0 so the final score stays in [0,1].
type SimilarityWeights struct {
	Brand          float64
	ModelCode      float64
	SpecOverlap    float64
	PriceProximity float64
}

// DefaultSimilarityWeights returns the weight profile used in production.
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{
		Brand:          0.3,
		ModelCode:      0.4,
		SpecOverlap:    0.2,
		PriceProximity: 0.1,
	}
}

// BestPrice identifies the cheapest offer found, by total price.
type BestPrice struct {
	Price       float64   `json:"price"`
	TotalPrice  float64   `json:"totalPrice"`
	Marketplace string    `json:"marketplace"`
	Seller      string    `json:"seller"`
	ProductID   uuid.UUID `json:"productId"`
}

// ProductSummary is the per-group view produced by an aggregation pass.
type ProductSummary struct {
	ID           uuid.UUID `json:"id"`
	Brand        string    `json:"brand"`
	ModelCode    string    `json:"modelCode"`
	Name         string    `json:"name"`
	GTIN         string    `json:"gtin,omitempty"`
	BestPrice    BestPrice `json:"bestPrice"`
	OfferCount   int       `json:"offerCount"`
	Marketplaces []string  `json:"marketplaces"`
}

// AggregationResult is the deduplicated, ranked view of one keyword search
// across all providers. BestPrice is nil when no provider returned offers,
// which is a normal outcome rather than an error.
type AggregationResult struct {
	Products   []ProductSummary `json:"products"`
	Offers     []*Offer         `json:"offers"`
	BestPrice  *BestPrice       `json:"bestPrice"`
	TotalCount int              `json:"totalCount"`
}
