package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// shopQueryService is the concrete implementation of ShopQueryService.
// スナップショットは TTL の間だけ再利用し、取得失敗時は直前のものを返す。
type shopQueryService struct {
	repo   ShopRepository
	cache  SnapshotCache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.SugaredLogger

	mu       sync.RWMutex
	snapshot *Catalog
	loads    singleflight.Group
}

// ShopServiceOption customises a ShopQueryService.
type ShopServiceOption func(*shopQueryService)

// WithSnapshotCache shares catalog snapshots through cache.
func WithSnapshotCache(cache SnapshotCache) ShopServiceOption {
	return func(s *shopQueryService) { s.cache = cache }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ShopServiceOption {
	return func(s *shopQueryService) { s.now = now }
}

// NewShopQueryService creates a new shop query service. A non-positive ttl
// reloads the catalog on every call.
func NewShopQueryService(repo ShopRepository, ttl time.Duration, logger *zap.SugaredLogger, opts ...ShopServiceOption) ShopQueryService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &shopQueryService{repo: repo, ttl: ttl, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *shopQueryService) Catalog(ctx context.Context) *Catalog {
	s.mu.RLock()
	current := s.snapshot
	s.mu.RUnlock()
	if current != nil && s.ttl > 0 && s.now().Sub(current.LoadedAt()) < s.ttl {
		return current
	}

	v, _, _ := s.loads.Do("catalog", func() (interface{}, error) {
		loadCtx, cancel := detach(ctx)
		defer cancel()
		return s.reload(loadCtx, current), nil
	})
	return v.(*Catalog)
}

func (s *shopQueryService) reload(ctx context.Context, previous *Catalog) *Catalog {
	if s.cache != nil {
		if shops, ok := s.cache.LoadCatalog(ctx); ok {
			return s.swap(NewCatalog(shops, s.now(), s.logger))
		}
	}

	shops, err := s.fetch(ctx)
	if err != nil {
		if previous != nil {
			s.logger.Warnw("catalog reload failed, serving previous snapshot", "error", err, "loadedAt", previous.LoadedAt())
			return previous
		}
		s.logger.Errorw("catalog load failed, serving empty catalog", "error", err)
		return EmptyCatalog()
	}

	catalog := s.swap(NewCatalog(shops, s.now(), s.logger))
	if s.cache != nil {
		s.cache.StoreCatalog(ctx, catalog.Shops())
	}
	return catalog
}

func (s *shopQueryService) swap(c *Catalog) *Catalog {
	s.mu.Lock()
	s.snapshot = c
	s.mu.Unlock()
	return c
}

// fetch runs the three bulk reads concurrently and merges them by shop id.
// Shops missing from the price or region reads keep empty values.
func (s *shopQueryService) fetch(ctx context.Context) ([]domain.Shop, error) {
	var (
		shops   []domain.Shop
		prices  map[string][]domain.PriceItem
		regions map[string]domain.Region
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shops, err = s.repo.ListShops(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = s.repo.ListPrices(gctx)
		if err != nil {
			s.logger.Warnw("price read failed, continuing without prices", "error", err)
			prices = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		regions, err = s.repo.ListRegions(gctx)
		if err != nil {
			s.logger.Warnw("region read failed, continuing without regions", "error", err)
			regions = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeCatalog(shops, prices, regions), nil
}

// MergeCatalog attaches prices and regions to shops. Unknown regions are dropped.
func MergeCatalog(shops []domain.Shop, prices map[string][]domain.PriceItem, regions map[string]domain.Region) []domain.Shop {
	out := make([]domain.Shop, 0, len(shops))
	for _, shop := range shops {
		if items, ok := prices[shop.ID]; ok && len(shop.Prices) == 0 {
			shop.Prices = append([]domain.PriceItem(nil), items...)
		}
		if r, ok := regions[shop.ID]; ok && r.Valid() {
			shop.Region = r
		}
		out = append(out, shop)
	}
	return out
}

func (s *shopQueryService) Browse(ctx context.Context, filter ShopFilter) Listing {
	catalog := s.Catalog(ctx)
	visible := VisibleShops(catalog.Shops(), filter.Search, filter.Region)

	listing := Listing{Total: catalog.Len()}
	if filter.Selected != "" {
		if shop, ok := catalog.Find(filter.Selected); ok {
			listing.Selected = &shop
		} else {
			listing.SelectedMissing = true
		}
	}
	listing.Shops = SelectionFirst(visible, filter.Selected)
	listing.Map = BuildMapView(visible, listing.Selected)
	return listing
}

func (s *shopQueryService) Detail(ctx context.Context, slug string) (domain.Shop, error) {
	shop, ok := s.Catalog(ctx).Find(slug)
	if !ok {
		return domain.Shop{}, ErrShopNotFound
	}
	return shop, nil
}
