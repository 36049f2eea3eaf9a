package application

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

var validate = validator.New()

// shopShape is the minimum a record needs to be addressable and placeable on the map.
type shopShape struct {
	ID   string  `validate:"required"`
	Slug string  `validate:"required,excludesall= /?#&"`
	Name string  `validate:"required"`
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lng  float64 `validate:"gte=-180,lte=180"`
}

// Catalog is an immutable, ordered snapshot of every shop.
type Catalog struct {
	shops    []domain.Shop
	bySlug   map[string]int
	loadedAt time.Time
}

// NewCatalog validates shops and builds a snapshot. Invalid records and
// repeated slugs are dropped with a warning; upstream order is kept.
func NewCatalog(shops []domain.Shop, loadedAt time.Time, logger *zap.SugaredLogger) *Catalog {
	c := &Catalog{
		shops:    make([]domain.Shop, 0, len(shops)),
		bySlug:   make(map[string]int, len(shops)),
		loadedAt: loadedAt,
	}
	for _, shop := range shops {
		shape := shopShape{ID: shop.ID, Slug: shop.Slug, Name: shop.Name, Lat: shop.Location.Lat, Lng: shop.Location.Lng}
		if err := validate.Struct(shape); err != nil {
			if logger != nil {
				logger.Warnw("dropping invalid shop record", "id", shop.ID, "slug", shop.Slug, "error", err)
			}
			continue
		}
		if _, dup := c.bySlug[shop.Slug]; dup {
			if logger != nil {
				logger.Warnw("dropping shop with duplicate slug", "id", shop.ID, "slug", shop.Slug)
			}
			continue
		}
		c.bySlug[shop.Slug] = len(c.shops)
		c.shops = append(c.shops, shop.Clone())
	}
	return c
}

// EmptyCatalog returns a catalog without shops.
func EmptyCatalog() *Catalog {
	return &Catalog{bySlug: map[string]int{}}
}

// Shops returns a fresh copy of the ordered shop list.
func (c *Catalog) Shops() []domain.Shop {
	if c == nil {
		return []domain.Shop{}
	}
	out := make([]domain.Shop, len(c.shops))
	copy(out, c.shops)
	return out
}

// Len returns the number of shops.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.shops)
}

// Find looks a shop up by slug.
func (c *Catalog) Find(slug string) (domain.Shop, bool) {
	if c == nil || slug == "" {
		return domain.Shop{}, false
	}
	i, ok := c.bySlug[slug]
	if !ok {
		return domain.Shop{}, false
	}
	return c.shops[i], true
}

// LoadedAt is the time the snapshot was built.
func (c *Catalog) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}
