package provider

import (
	"context"
	"strings"
	"time"

	"github.com/marketwatch/backend/internal/domain"
)

// MockProvider serves a fixed set of marketplace offers for development and
// testing. Searches filter the fixtures by keyword; an unmatched keyword
// returns the full set so demo flows always have data.
type MockProvider struct {
	name   string
	offers []domain.RawOffer
}

// NewMockProvider creates a mock provider with the built-in fixtures.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:   "mock",
		offers: mockOffers(),
	}
}

// Name returns "mock".
func (p *MockProvider) Name() string { return p.name }

// Available always reports true.
func (p *MockProvider) Available() bool { return true }

// Search filters the fixture offers by case-insensitive keyword match
// against title and description.
func (p *MockProvider) Search(ctx context.Context, keyword string) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	keywordLower := strings.ToLower(keyword)

	var matched []domain.RawOffer
	for _, offer := range p.offers {
		if strings.Contains(strings.ToLower(offer.Title), keywordLower) ||
			strings.Contains(strings.ToLower(offer.Description), keywordLower) {
			matched = append(matched, offer)
		}
	}

	if len(matched) == 0 {
		matched = p.offers
	}

	return &domain.SearchResult{
		Offers:      matched,
		TotalCount:  len(matched),
		Marketplace: p.name,
		SearchTime:  time.Since(started).Seconds(),
	}, nil
}

// mockOffers returns the fixture listings: the same handful of phones, TVs
// and laptops sold under differently phrased titles across marketplaces.
func mockOffers() []domain.RawOffer {
	return []domain.RawOffer{
		{
			Marketplace:  "쿠팡",
			Seller:       "쿠팡",
			Title:        "삼성전자 갤럭시 S24 128GB 블랙",
			Price:        1200000,
			ShippingFee:  0,
			URL:          "https://mock.coupang.com/product1",
			AffiliateURL: "https://mock.coupang.com/affiliate1",
			Description:  "삼성전자 갤럭시 S24 128GB 블랙 스마트폰",
			Rating:       4.8,
			ReviewCount:  1250,
		},
		{
			Marketplace:  "쿠팡",
			Seller:       "삼성공식스토어",
			Title:        "삼성 갤럭시 S24 128GB 블랙",
			Price:        1250000,
			ShippingFee:  0,
			URL:          "https://mock.coupang.com/product2",
			AffiliateURL: "https://mock.coupang.com/affiliate2",
			Description:  "삼성 갤럭시 S24 128GB 블랙",
			Rating:       4.9,
			ReviewCount:  890,
		},
		{
			Marketplace:  "11번가",
			Seller:       "11번가",
			Title:        "삼성 갤럭시S24 128GB 블랙",
			Price:        1180000,
			ShippingFee:  3000,
			URL:          "https://mock.11st.co.kr/product1",
			AffiliateURL: "https://mock.11st.co.kr/affiliate1",
			Description:  "삼성 갤럭시S24 128GB 블랙",
			Rating:       4.7,
			ReviewCount:  567,
		},
		{
			Marketplace:  "쿠팡",
			Seller:       "애플공식스토어",
			Title:        "Apple iPhone 15 Pro 128GB 블랙",
			Price:        1500000,
			ShippingFee:  0,
			URL:          "https://mock.coupang.com/product3",
			AffiliateURL: "https://mock.coupang.com/affiliate3",
			Description:  "Apple iPhone 15 Pro 128GB 블랙",
			Rating:       4.9,
			ReviewCount:  2100,
		},
		{
			Marketplace:  "쿠팡",
			Seller:       "쿠팡",
			Title:        "LG전자 올레드 TV 65인치 4K",
			Price:        2500000,
			ShippingFee:  0,
			URL:          "https://mock.coupang.com/product4",
			AffiliateURL: "https://mock.coupang.com/affiliate4",
			Description:  "LG전자 올레드 TV 65인치 4K UHD",
			Rating:       4.8,
			ReviewCount:  890,
		},
		{
			Marketplace:  "11번가",
			Seller:       "LG공식스토어",
			Title:        "LG 올레드 65인치 4K TV",
			Price:        2450000,
			ShippingFee:  5000,
			URL:          "https://mock.11st.co.kr/product2",
			AffiliateURL: "https://mock.11st.co.kr/affiliate2",
			Description:  "LG 올레드 65인치 4K UHD TV",
			Rating:       4.9,
			ReviewCount:  456,
		},
		{
			Marketplace:  "쿠팡",
			Seller:       "샤오미공식스토어",
			Title:        "샤오미 Redmi Note 13 128GB 블루",
			Price:        350000,
			ShippingFee:  0,
			URL:          "https://mock.coupang.com/product5",
			AffiliateURL: "https://mock.coupang.com/affiliate5",
			Description:  "샤오미 Redmi Note 13 128GB 블루",
			Rating:       4.6,
			ReviewCount:  234,
		},
		{
			Marketplace:  "쿠팡",
			Seller:       "쿠팡",
			Title:        "ASUS ROG 게이밍 노트북 16인치",
			Price:        3200000,
			ShippingFee:  0,
			URL:          "https://mock.coupang.com/product6",
			AffiliateURL: "https://mock.coupang.com/affiliate6",
			Description:  "ASUS ROG 게이밍 노트북 16인치 RTX 4060",
			Rating:       4.7,
			ReviewCount:  123,
		},
	}
}
