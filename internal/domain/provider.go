package domain

import "context"

// RawOffer is a candidate listing as returned by a marketplace provider,
// before it is attached to a catalog Product.
type RawOffer struct {
	Marketplace  string  `json:"marketplace"`
	Seller       string  `json:"seller"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	ShippingFee  float64 `json:"shippingFee"`
	URL          string  `json:"url"`
	AffiliateURL string  `json:"affiliateUrl,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Description  string  `json:"description,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	ReviewCount  int     `json:"reviewCount,omitempty"`
}

// SearchResult is one provider's response to a keyword search. An empty
// Offers slice is the no-results signal, not an error.
type SearchResult struct {
	Offers      []RawOffer `json:"offers"`
	TotalCount  int        `json:"totalCount"`
	Marketplace string     `json:"marketplace"`
	SearchTime  float64    `json:"searchTime"`
}

// Provider is a pluggable marketplace data source. Implementations must be
// safe for concurrent Search calls and must report "no results" as an empty
// SearchResult rather than an error.
type Provider interface {
	Name() string
	Available() bool
	Search(ctx context.Context, keyword string) (*SearchResult, error)
}
