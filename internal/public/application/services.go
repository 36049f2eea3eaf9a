package application

import (
	"context"
	"errors"
	"time"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// loadTimeout bounds one shared upstream load. Shared loads outlive the
// request that started them.
const loadTimeout = 15 * time.Second

// detach returns a context that keeps ctx's values but not its cancellation.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
}

var (
	// ErrShopNotFound is returned when a slug does not match any catalog entry.
	ErrShopNotFound = errors.New("shop not found")
	// ErrBannerNotFound is returned by banner repositories for an empty placement.
	ErrBannerNotFound = errors.New("banner not found")
)

// ShopRepository はカタログを構成する一括読み取りのポート。
// 3 つの読み取りは独立しており、店舗 ID で結合される。
type ShopRepository interface {
	// ListShops returns shops with coordinates; Region and Prices are left empty.
	ListShops(ctx context.Context) ([]domain.Shop, error)
	// ListPrices returns price lines keyed by shop id.
	ListPrices(ctx context.Context) (map[string][]domain.PriceItem, error)
	// ListRegions returns the region of every shop keyed by shop id.
	ListRegions(ctx context.Context) (map[string]domain.Region, error)
}

// ReviewRepository reads reviews of one shop.
type ReviewRepository interface {
	FindByShop(ctx context.Context, shopID string) ([]domain.Review, error)
}

// BannerRepository reads affiliate markup by placement.
type BannerRepository interface {
	FindMarkup(ctx context.Context, placement string) (string, error)
}

// SnapshotCache shares fetched data between instances. Implementations must
// treat every failure as a miss.
type SnapshotCache interface {
	LoadCatalog(ctx context.Context) ([]domain.Shop, bool)
	StoreCatalog(ctx context.Context, shops []domain.Shop)
	LoadReviews(ctx context.Context, shopID string) ([]domain.Review, bool)
	StoreReviews(ctx context.Context, shopID string, reviews []domain.Review)
}

// ShopFilter expresses the URL-derived browse state.
type ShopFilter struct {
	Search   string
	Region   domain.Region
	Selected string
}

// Listing is the result of a browse request.
type Listing struct {
	// Shops is the visible set, selected shop first when it is visible.
	Shops []domain.Shop
	// Total is the size of the unfiltered catalog.
	Total int
	// Selected is set when the selected slug exists in the catalog.
	Selected *domain.Shop
	// SelectedMissing is true for a dangling selection.
	SelectedMissing bool
	Map             MapView
}

// ShopQueryService は店舗カタログの参照ユースケースを提供するリーダーモデル。
type ShopQueryService interface {
	Catalog(ctx context.Context) *Catalog
	Browse(ctx context.Context, filter ShopFilter) Listing
	Detail(ctx context.Context, slug string) (domain.Shop, error)
}

// ReviewQueryService loads reviews lazily, at most once per shop.
type ReviewQueryService interface {
	ForShop(ctx context.Context, shopID string) []domain.Review
}

// BannerQueryService loads affiliate banners.
type BannerQueryService interface {
	Placement(ctx context.Context, placement string) (domain.Banner, bool)
}
