package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marketwatch/backend/internal/domain"
)

// fakeProvider is an in-memory provider returning a fixed offer list.
type fakeProvider struct {
	name        string
	unavailable bool
	offers      []domain.RawOffer
	err         error
	searchCalls int
}

func (p *fakeProvider) Name() string    { return p.name }
func (p *fakeProvider) Available() bool { return !p.unavailable }

func (p *fakeProvider) Search(ctx context.Context, keyword string) (*domain.SearchResult, error) {
	p.searchCalls++
	if p.err != nil {
		return nil, p.err
	}
	return &domain.SearchResult{
		Offers:      p.offers,
		TotalCount:  len(p.offers),
		Marketplace: p.name,
	}, nil
}

// fakeCatalog keys products by (brand, model code) like the real store.
type fakeCatalog struct {
	products        map[string]*domain.Product
	offers          map[uuid.UUID][]*domain.Offer
	getOrCreateErr  error
	createOfferErr  error
	failOfferTitle  string
	createdOffers   int
	createdProducts int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[string]*domain.Product),
		offers:   make(map[uuid.UUID][]*domain.Offer),
	}
}

func (c *fakeCatalog) GetOrCreateProduct(ctx context.Context, brand, modelCode, name string) (*domain.Product, error) {
	if c.getOrCreateErr != nil {
		return nil, c.getOrCreateErr
	}
	key := brand + "|" + modelCode
	if product, ok := c.products[key]; ok {
		return product, nil
	}
	product := &domain.Product{
		ID:        uuid.New(),
		Brand:     brand,
		ModelCode: modelCode,
		Name:      name,
	}
	c.products[key] = product
	c.createdProducts++
	return product, nil
}

func (c *fakeCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, product := range c.products {
		if product.ID == id {
			return product, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (c *fakeCatalog) CreateOffer(ctx context.Context, product *domain.Product, raw domain.RawOffer) (*domain.Offer, error) {
	if c.createOfferErr != nil && (c.failOfferTitle == "" || c.failOfferTitle == raw.Title) {
		return nil, c.createOfferErr
	}
	offer := &domain.Offer{
		ID:          uuid.New(),
		ProductID:   product.ID,
		Marketplace: raw.Marketplace,
		Seller:      raw.Seller,
		Price:       raw.Price,
		ShippingFee: raw.ShippingFee,
		URL:         raw.URL,
		FetchedAt:   time.Now(),
	}
	c.offers[product.ID] = append(c.offers[product.ID], offer)
	c.createdOffers++
	return offer, nil
}

func (c *fakeCatalog) ListOffers(ctx context.Context, productID uuid.UUID) ([]*domain.Offer, error) {
	return c.offers[productID], nil
}

func (c *fakeCatalog) ListPriceHistory(ctx context.Context, offerID uuid.UUID) ([]*domain.PriceHistory, error) {
	return nil, nil
}

// fakeCache is a TTL-less map cache recording writes.
type fakeCache struct {
	data     map[string]interface{}
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]interface{})}
}

func (c *fakeCache) Get(ctx context.Context, key string) (interface{}, error) {
	value, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.data[key] = value
	c.setCalls++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func newTestService(providers []domain.Provider, catalog domain.Catalog, cache domain.CacheRepository) *AggregationService {
	return NewAggregationService(providers, catalog, cache, zerolog.Nop(), AggregationConfig{})
}

func galaxyOffer(marketplace string, price, shipping float64) domain.RawOffer {
	return domain.RawOffer{
		Marketplace: marketplace,
		Seller:      marketplace + " 공식판매자",
		Title:       "삼성전자 갤럭시 S24 128GB 블랙",
		Price:       price,
		ShippingFee: shipping,
		URL:         "https://" + marketplace + ".example.com/galaxy-s24",
	}
}

func TestAggregateEmptyKeyword(t *testing.T) {
	service := newTestService(nil, newFakeCatalog(), newFakeCache())

	_, err := service.Aggregate(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestAggregateNoOffers(t *testing.T) {
	provider := &fakeProvider{name: "coupang"}
	service := newTestService([]domain.Provider{provider}, newFakeCatalog(), newFakeCache())

	result, err := service.Aggregate(context.Background(), "갤럭시 S24")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.Products) != 0 {
		t.Errorf("products = %d, want 0", len(result.Products))
	}
	if len(result.Offers) != 0 {
		t.Errorf("offers = %d, want 0", len(result.Offers))
	}
	if result.BestPrice != nil {
		t.Errorf("best price = %+v, want nil", result.BestPrice)
	}
}

func TestAggregateGroupsAndBestPrice(t *testing.T) {
	// Same phone under three differently phrased titles.
	first := galaxyOffer("coupang", 1200000, 0)
	second := galaxyOffer("naver", 1180000, 0)
	second.Title = "삼성 갤럭시 S24 128GB 블랙"
	third := galaxyOffer("11st", 1250000, 0)
	third.Title = "삼성 갤럭시S24 128GB 블랙"

	provider := &fakeProvider{
		name:   "coupang",
		offers: []domain.RawOffer{first, second, third},
	}
	catalog := newFakeCatalog()
	service := newTestService([]domain.Provider{provider}, catalog, newFakeCache())

	result, err := service.Aggregate(context.Background(), "갤럭시 S24")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(result.Products) != 1 {
		t.Fatalf("products = %d, want 1 (same model groups together)", len(result.Products))
	}
	if result.TotalCount != 1 {
		t.Errorf("total count = %d, want 1", result.TotalCount)
	}

	summary := result.Products[0]
	if summary.Brand != "samsung" || summary.ModelCode != "s24" {
		t.Errorf("summary = %s/%s, want samsung/s24", summary.Brand, summary.ModelCode)
	}
	if summary.OfferCount != 3 {
		t.Errorf("offer count = %d, want 3", summary.OfferCount)
	}
	if len(summary.Marketplaces) != 3 {
		t.Errorf("marketplaces = %v, want 3 distinct", summary.Marketplaces)
	}

	if result.BestPrice == nil {
		t.Fatal("best price = nil, want the cheapest offer")
	}
	if result.BestPrice.TotalPrice != 1180000 {
		t.Errorf("best total price = %v, want 1180000", result.BestPrice.TotalPrice)
	}
	if result.BestPrice.Marketplace != "naver" {
		t.Errorf("best marketplace = %q, want naver", result.BestPrice.Marketplace)
	}
	if len(result.Offers) != 3 {
		t.Errorf("offers = %d, want 3", len(result.Offers))
	}
}

func TestAggregateBestPriceIncludesShipping(t *testing.T) {
	provider := &fakeProvider{
		name: "coupang",
		offers: []domain.RawOffer{
			galaxyOffer("coupang", 1180000, 3000),
			galaxyOffer("naver", 1182000, 0),
		},
	}
	service := newTestService([]domain.Provider{provider}, newFakeCatalog(), newFakeCache())

	result, err := service.Aggregate(context.Background(), "갤럭시 S24")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if result.BestPrice == nil {
		t.Fatal("best price = nil")
	}
	// 1,182,000 free shipping beats 1,180,000 + 3,000.
	if result.BestPrice.Marketplace != "naver" {
		t.Errorf("best marketplace = %q, want naver (ranked by total price)", result.BestPrice.Marketplace)
	}
	if result.BestPrice.TotalPrice != 1182000 {
		t.Errorf("best total price = %v, want 1182000", result.BestPrice.TotalPrice)
	}
}

func TestAggregateProviderFailureExcluded(t *testing.T) {
	failing := &fakeProvider{name: "coupang", err: errors.New("upstream 500")}
	healthy := &fakeProvider{
		name:   "naver",
		offers: []domain.RawOffer{galaxyOffer("naver", 1180000, 0)},
	}
	service := newTestService([]domain.Provider{failing, healthy}, newFakeCatalog(), newFakeCache())

	result, err := service.Aggregate(context.Background(), "갤럭시 S24")
	if err != nil {
		t.Fatalf("Aggregate() error = %v, want partial result", err)
	}
	if len(result.Offers) != 1 {
		t.Errorf("offers = %d, want 1 (failing provider excluded)", len(result.Offers))
	}
}

func TestAggregateSkipsUnavailableProvider(t *testing.T) {
	offline := &fakeProvider{name: "coupang", unavailable: true}
	service := newTestService([]domain.Provider{offline}, newFakeCatalog(), newFakeCache())

	if _, err := service.Aggregate(context.Background(), "갤럭시 S24"); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if offline.searchCalls != 0 {
		t.Errorf("search calls = %d, want 0 for unavailable provider", offline.searchCalls)
	}
}

func TestAggregateUnknownSentinel(t *testing.T) {
	provider := &fakeProvider{
		name: "coupang",
		offers: []domain.RawOffer{
			{
				Marketplace: "coupang",
				Title:       "정체불명 특가 상품",
				Price:       9900,
				URL:         "https://coupang.example.com/mystery",
			},
		},
	}
	catalog := newFakeCatalog()
	service := newTestService([]domain.Provider{provider}, catalog, newFakeCache())

	result, err := service.Aggregate(context.Background(), "특가")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.Products) != 1 {
		t.Fatalf("products = %d, want 1 (offer kept despite missing tokens)", len(result.Products))
	}
	if result.Products[0].Brand != domain.UnknownValue {
		t.Errorf("brand = %q, want %q", result.Products[0].Brand, domain.UnknownValue)
	}
	if result.Products[0].ModelCode != domain.UnknownValue {
		t.Errorf("model code = %q, want %q", result.Products[0].ModelCode, domain.UnknownValue)
	}
}

func TestAggregateCacheHit(t *testing.T) {
	cached := &domain.AggregationResult{TotalCount: 7}
	cache := newFakeCache()
	cache.data[searchCacheKey("갤럭시 S24")] = cached

	provider := &fakeProvider{name: "coupang"}
	service := newTestService([]domain.Provider{provider}, newFakeCatalog(), cache)

	result, err := service.Aggregate(context.Background(), "갤럭시 S24")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if result != cached {
		t.Error("result not served from cache")
	}
	if provider.searchCalls != 0 {
		t.Errorf("search calls = %d, want 0 on cache hit", provider.searchCalls)
	}
}

func TestAggregateCachesResult(t *testing.T) {
	provider := &fakeProvider{
		name:   "coupang",
		offers: []domain.RawOffer{galaxyOffer("coupang", 1200000, 0)},
	}
	cache := newFakeCache()
	service := newTestService([]domain.Provider{provider}, newFakeCatalog(), cache)

	if _, err := service.Aggregate(context.Background(), "갤럭시 S24"); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if cache.setCalls != 1 {
		t.Errorf("cache writes = %d, want 1", cache.setCalls)
	}
	if _, ok := cache.data[searchCacheKey("갤럭시 S24")]; !ok {
		t.Error("result not cached under the normalized keyword key")
	}
}

func TestAggregateCatalogUnavailable(t *testing.T) {
	provider := &fakeProvider{
		name:   "coupang",
		offers: []domain.RawOffer{galaxyOffer("coupang", 1200000, 0)},
	}
	catalog := newFakeCatalog()
	catalog.getOrCreateErr = errors.New("connection refused")
	service := newTestService([]domain.Provider{provider}, catalog, newFakeCache())

	_, err := service.Aggregate(context.Background(), "갤럭시 S24")
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Errorf("err = %v, want ErrCatalogUnavailable", err)
	}
}

func TestAggregateOfferPersistFailureSkipsCandidate(t *testing.T) {
	bad := galaxyOffer("coupang", 1200000, 0)
	bad.Title = "삼성전자 갤럭시 S24 128GB 블랙 쿠팡단독"
	good := galaxyOffer("naver", 1180000, 0)

	catalog := newFakeCatalog()
	catalog.createOfferErr = errors.New("constraint violation")
	catalog.failOfferTitle = bad.Title

	provider := &fakeProvider{name: "coupang", offers: []domain.RawOffer{bad, good}}
	service := newTestService([]domain.Provider{provider}, catalog, newFakeCache())

	result, err := service.Aggregate(context.Background(), "갤럭시 S24")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(result.Offers) != 1 {
		t.Errorf("offers = %d, want 1 (failed persist skipped)", len(result.Offers))
	}
}

func TestSearchCacheKey(t *testing.T) {
	a := searchCacheKey("갤럭시 S24!")
	b := searchCacheKey("갤럭시   s24")
	if a != b {
		t.Errorf("equivalent keywords map to different keys: %q vs %q", a, b)
	}
}
