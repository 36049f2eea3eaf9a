package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

const shopsWithCoordsRPC = "get_shops_with_coords"

// Repository implements the public read ports on top of Supabase.
type Repository struct {
	client *Client
	logger *zap.SugaredLogger
}

// NewRepository creates a Supabase-backed repository.
func NewRepository(client *Client, logger *zap.SugaredLogger) *Repository {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Repository{client: client, logger: logger}
}

var (
	_ publicapp.ShopRepository   = (*Repository)(nil)
	_ publicapp.ReviewRepository = (*Repository)(nil)
	_ publicapp.BannerRepository = (*Repository)(nil)
)

// ListShops calls the coordinates RPC. Rows failing validation are skipped.
func (r *Repository) ListShops(ctx context.Context) ([]domain.Shop, error) {
	var rows []shopRow
	if err := r.client.RPC(ctx, shopsWithCoordsRPC, nil, &rows); err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	shops := make([]domain.Shop, 0, len(rows))
	for _, row := range rows {
		if err := validate.Struct(row); err != nil {
			r.logger.Warnw("skipping shop row", "id", row.ID, "error", err)
			continue
		}
		shops = append(shops, row.toDomain())
	}
	return shops, nil
}

// ListPrices reads shop_prices grouped by shop id, preserving row order.
func (r *Repository) ListPrices(ctx context.Context) (map[string][]domain.PriceItem, error) {
	var rows []priceRow
	query := func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Select("shop_id,service_name,price,description", "", false).
			Order("shop_id", &postgrest.OrderOpts{Ascending: true})
	}
	if err := r.client.Select(ctx, "shop_prices", query, &rows); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	out := make(map[string][]domain.PriceItem)
	for _, row := range rows {
		if err := validate.Struct(row); err != nil {
			r.logger.Warnw("skipping price row", "shopId", row.ShopID, "error", err)
			continue
		}
		id := string(row.ShopID)
		out[id] = append(out[id], domain.NewPriceItem(row.Service, row.Price, row.Description))
	}
	return out, nil
}

// ListRegions reads the region column the coordinates RPC does not expose.
func (r *Repository) ListRegions(ctx context.Context) (map[string]domain.Region, error) {
	var rows []regionRow
	query := func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Select("id,region", "", false)
	}
	if err := r.client.Select(ctx, "shops", query, &rows); err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	out := make(map[string]domain.Region, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		if region, ok := domain.ParseRegion(row.Region); ok {
			out[string(row.ID)] = region
		}
	}
	return out, nil
}

// FindByShop reads shop_reviews for one shop.
func (r *Repository) FindByShop(ctx context.Context, shopID string) ([]domain.Review, error) {
	var rows []reviewRow
	query := func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Select("shop_id,title,author,source,url,created_at", "", false).
			Eq("shop_id", shopID).
			Order("created_at", &postgrest.OrderOpts{Ascending: false})
	}
	if err := r.client.Select(ctx, "shop_reviews", query, &rows); err != nil {
		return nil, fmt.Errorf("find reviews for shop %s: %w", shopID, err)
	}
	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		if err := validate.Struct(row); err != nil {
			r.logger.Warnw("skipping review row", "shopId", shopID, "error", err)
			continue
		}
		reviews = append(reviews, row.toDomain())
	}
	return reviews, nil
}

// FindMarkup reads the affiliate markup for placement.
func (r *Repository) FindMarkup(ctx context.Context, placement string) (string, error) {
	var rows []bannerRow
	query := func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Select("placement,html_content", "", false).
			Eq("placement", placement).
			Limit(1, "")
	}
	if err := r.client.Select(ctx, "affiliate_products", query, &rows); err != nil {
		return "", fmt.Errorf("find banner %s: %w", placement, err)
	}
	if len(rows) == 0 || strings.TrimSpace(rows[0].HTML) == "" {
		return "", publicapp.ErrBannerNotFound
	}
	return rows[0].HTML, nil
}

// Ping reports whether the backend is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
