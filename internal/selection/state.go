// Package selection keeps the browse state (selected shop, view mode, search
// text and region filter) and its URL query form in sync.
package selection

import (
	"net/url"
	"strings"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// URL query parameter names.
const (
	ParamShop   = "shop"
	ParamRegion = "region"
	ParamSearch = "q"
)

// ViewMode is the compact-layout surface.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewMap
)

func (v ViewMode) String() string {
	if v == ViewMap {
		return "MAP"
	}
	return "LIST"
}

// State is the browse state. The zero value is the initial page: list view,
// nothing selected, no filters.
type State struct {
	Selected string
	View     ViewMode
	Search   string
	Region   domain.Region
}

// FromQuery derives a state from URL parameters. View is always ViewList
// because it is not part of the URL. Unknown regions are ignored.
func FromQuery(values url.Values) State {
	region, _ := domain.ParseRegion(values.Get(ParamRegion))
	return State{
		Selected: strings.TrimSpace(values.Get(ParamShop)),
		View:     ViewList,
		Search:   application.NormalizeSearch(values.Get(ParamSearch)),
		Region:   region,
	}
}

// Query serialises the state. Empty values are omitted rather than written
// as empty parameters.
func (s State) Query() url.Values {
	values := url.Values{}
	if s.Selected != "" {
		values.Set(ParamShop, s.Selected)
	}
	if s.Region != domain.RegionAll {
		values.Set(ParamRegion, s.Region.String())
	}
	if s.Search != "" {
		values.Set(ParamSearch, s.Search)
	}
	return values
}

// Href renders the state as a link relative to path.
func (s State) Href(path string) string {
	encoded := s.Query().Encode()
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}

// Filter converts the state into a catalog query.
func (s State) Filter() application.ShopFilter {
	return application.ShopFilter{Search: s.Search, Region: s.Region, Selected: s.Selected}
}

// Select selects slug. switchToList is used by map preview cards.
func (s State) Select(slug string, switchToList bool) State {
	s.Selected = strings.TrimSpace(slug)
	if switchToList {
		s.View = ViewList
	}
	return s
}

// Clear drops the selection and keeps the view mode.
func (s State) Clear() State {
	s.Selected = ""
	return s
}

// ToggleView flips LIST and MAP. Leaving the map clears the selection.
func (s State) ToggleView() State {
	if s.View == ViewMap {
		s = s.Clear()
		s.View = ViewList
		return s
	}
	s.View = ViewMap
	return s
}

// WithRegion sets the region filter; RegionAll or an unknown region removes it.
func (s State) WithRegion(region domain.Region) State {
	if !region.Valid() {
		region = domain.RegionAll
	}
	s.Region = region
	return s
}

// WithSearch sets the committed search text.
func (s State) WithSearch(text string) State {
	s.Search = application.NormalizeSearch(text)
	return s
}

// ResetFilters clears search and region together. The selection is kept.
func (s State) ResetFilters() State {
	s.Search = ""
	s.Region = domain.RegionAll
	return s
}

// Filtered reports whether any filter is active.
func (s State) Filtered() bool {
	return s.Search != "" || s.Region != domain.RegionAll
}
