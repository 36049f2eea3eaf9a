// Package finder is the terminal storefront: it reads the public API once,
// filters locally and keeps the browse state in an address history.
package finder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// Client reads the public JSON API. It satisfies the catalog and review
// ports so the application services run unchanged on the terminal side.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.SugaredLogger

	loads singleflight.Group

	mu    sync.RWMutex
	slugs map[string]string
}

var (
	_ application.ShopRepository   = (*Client)(nil)
	_ application.ReviewRepository = (*Client)(nil)
)

// NewClient creates an API client. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
		slugs:   map[string]string{},
	}
}

type catalogPayload struct {
	Items []shopPayload `json:"items"`
}

type shopPayload struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Region   string   `json:"region"`
	Tags     []string `json:"tags"`
	Images   []string `json:"images"`
	Verified bool     `json:"verified"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Phone          string         `json:"phone"`
	Notice         string         `json:"notice"`
	LastVerifiedAt *time.Time     `json:"lastVerifiedAt"`
	Prices         []pricePayload `json:"prices"`
	Turnaround     blockPayload   `json:"turnaround"`
	Process        blockPayload   `json:"process"`
	Hours          blockPayload   `json:"hours"`
	Social         struct {
		Website   string `json:"website"`
		Instagram string `json:"instagram"`
		Blog      string `json:"blog"`
		Naver     string `json:"naver"`
		Kakao     string `json:"kakao"`
	} `json:"social"`
}

type pricePayload struct {
	Service     string `json:"service"`
	Price       string `json:"price"`
	Description string `json:"description"`
	SourceURL   string `json:"sourceUrl"`
}

type blockPayload struct {
	Available bool     `json:"available"`
	Text      string   `json:"text"`
	Steps     []string `json:"steps"`
	Extra     string   `json:"extra"`
	SourceURL string   `json:"sourceUrl"`
}

type reviewListPayload struct {
	Items []struct {
		Title     string     `json:"title"`
		Author    string     `json:"author"`
		Source    string     `json:"source"`
		URL       string     `json:"url"`
		CreatedAt *time.Time `json:"createdAt"`
	} `json:"items"`
}

// ListShops returns the catalog with regions and prices already attached.
func (c *Client) ListShops(ctx context.Context) ([]domain.Shop, error) {
	return c.catalog(ctx)
}

// ListPrices projects the price lists of the catalog.
func (c *Client) ListPrices(ctx context.Context) (map[string][]domain.PriceItem, error) {
	shops, err := c.catalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.PriceItem, len(shops))
	for _, shop := range shops {
		if len(shop.Prices) > 0 {
			out[shop.ID] = shop.Prices
		}
	}
	return out, nil
}

// ListRegions projects the regions of the catalog.
func (c *Client) ListRegions(ctx context.Context) (map[string]domain.Region, error) {
	shops, err := c.catalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Region, len(shops))
	for _, shop := range shops {
		if shop.Region.Valid() {
			out[shop.ID] = shop.Region
		}
	}
	return out, nil
}

// FindByShop reads the reviews of the shop with the given id. The id must
// belong to a shop seen in a previous catalog read.
func (c *Client) FindByShop(ctx context.Context, shopID string) ([]domain.Review, error) {
	c.mu.RLock()
	slug, ok := c.slugs[shopID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown shop id %q", shopID)
	}

	var payload reviewListPayload
	if err := c.get(ctx, "/api/shops/"+url.PathEscape(slug)+"/reviews", &payload); err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(payload.Items))
	for _, item := range payload.Items {
		review := domain.Review{ShopID: shopID, Title: item.Title, Author: item.Author, Source: item.Source, URL: item.URL}
		if item.CreatedAt != nil {
			review.CreatedAt = *item.CreatedAt
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// catalog shares one request between the three concurrent catalog reads.
func (c *Client) catalog(ctx context.Context) ([]domain.Shop, error) {
	v, err, _ := c.loads.Do("catalog", func() (interface{}, error) {
		var payload catalogPayload
		if err := c.get(ctx, "/api/catalog", &payload); err != nil {
			return nil, err
		}
		shops := make([]domain.Shop, 0, len(payload.Items))
		slugs := make(map[string]string, len(payload.Items))
		for _, item := range payload.Items {
			shop := item.toDomain()
			shops = append(shops, shop)
			slugs[shop.ID] = shop.Slug
		}
		c.mu.Lock()
		c.slugs = slugs
		c.mu.Unlock()
		c.logger.Debugw("catalog fetched", "shops", len(shops))
		return shops, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Shop), nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// toDomain reverses the detail DTO. Groups marked unavailable stay nil so
// the fallback table decides their text again.
func (p shopPayload) toDomain() domain.Shop {
	shop := domain.Shop{
		ID:             p.ID,
		Slug:           p.Slug,
		Name:           p.Name,
		Address:        p.Address,
		Location:       domain.LatLng{Lat: p.Location.Lat, Lng: p.Location.Lng},
		Images:         p.Images,
		Tags:           p.Tags,
		Verified:       p.Verified,
		LastVerifiedAt: p.LastVerifiedAt,
		Notice:         p.Notice,
		Social:         domain.SocialLinks(p.Social),
	}
	if p.Phone != domain.Fallback(domain.FieldPhone) {
		shop.Phone = p.Phone
	}
	if region, ok := domain.ParseRegion(p.Region); ok {
		shop.Region = region
	}
	for _, price := range p.Prices {
		shop.Prices = append(shop.Prices, domain.PriceItem(price))
	}
	if p.Turnaround.Available {
		shop.Turnaround = &domain.Turnaround{Text: p.Turnaround.Text, SourceURL: p.Turnaround.SourceURL}
	}
	if p.Process.Available {
		shop.Process = &domain.Process{Steps: p.Process.Steps, SourceURL: p.Process.SourceURL}
	}
	if p.Hours.Available {
		shop.Hours = &domain.BusinessHours{
			Text:    p.Hours.Text,
			Break:   p.Hours.Extra,
			Details: strings.Join(p.Hours.Steps, "\n"),
			Link:    p.Hours.SourceURL,
		}
	}
	return shop
}
