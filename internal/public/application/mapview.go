package application

import "github.com/reedge/reedge-services/api/internal/public/domain"

// Viewport defaults: Seoul City Hall at a city-wide zoom, or a close zoom on
// the selected shop.
var DefaultCenter = domain.LatLng{Lat: 37.5666805, Lng: 126.9784147}

const (
	DefaultZoom  = 12
	SelectedZoom = 16
)

// Marker is what the map widget needs to draw and identify a pin.
type Marker struct {
	ID   string  `json:"id"`
	Slug string  `json:"slug"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// MapView is the marker set plus the viewport directive.
type MapView struct {
	Markers []Marker      `json:"markers"`
	Center  domain.LatLng `json:"center"`
	Zoom    int           `json:"zoom"`
	// Enabled is false when no map client key is configured.
	Enabled bool `json:"enabled"`
}

// BuildMapView derives markers from shops and centers on selected when set.
func BuildMapView(shops []domain.Shop, selected *domain.Shop) MapView {
	markers := make([]Marker, 0, len(shops))
	for _, s := range shops {
		markers = append(markers, Marker{
			ID:   s.ID,
			Slug: s.Slug,
			Name: s.Name,
			Lat:  s.Location.Lat,
			Lng:  s.Location.Lng,
		})
	}
	view := MapView{Markers: markers, Center: DefaultCenter, Zoom: DefaultZoom}
	if selected != nil {
		view.Center = selected.Location
		view.Zoom = SelectedZoom
	}
	return view
}
