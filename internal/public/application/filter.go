package application

import (
	"sort"
	"strings"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// NormalizeSearch trims search text. Both the URL commit and the filter use it.
func NormalizeSearch(search string) string {
	return strings.TrimSpace(search)
}

// MatchesSearch reports whether the shop name or address contains search,
// ignoring case. An empty search matches everything.
func MatchesSearch(shop domain.Shop, search string) bool {
	search = strings.ToLower(NormalizeSearch(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(shop.Name), search) ||
		strings.Contains(strings.ToLower(shop.Address), search)
}

// VisibleShops returns the shops matching region and search in catalog order.
// The result never aliases catalog.
func VisibleShops(catalog []domain.Shop, search string, region domain.Region) []domain.Shop {
	out := make([]domain.Shop, 0, len(catalog))
	for _, shop := range catalog {
		if region != domain.RegionAll && shop.Region != region {
			continue
		}
		if !MatchesSearch(shop, search) {
			continue
		}
		out = append(out, shop)
	}
	return out
}

// SelectionFirst moves the selected shop to the front, keeping the relative
// order of everything else.
func SelectionFirst(shops []domain.Shop, selected string) []domain.Shop {
	out := make([]domain.Shop, len(shops))
	copy(out, shops)
	if selected == "" {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Slug == selected && out[j].Slug != selected
	})
	return out
}
