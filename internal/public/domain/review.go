package domain

import "time"

// Review is an externally published review (blog post, cafe thread, ...)
// linked to exactly one shop.
type Review struct {
	ShopID    string
	Title     string
	Author    string
	Source    string
	URL       string
	CreatedAt time.Time
}

// Banner is an affiliate placement. Markup is the raw upstream string; only
// LinkURL and ImageURL are ever rendered.
type Banner struct {
	Placement string
	Markup    string
	LinkURL   string
	ImageURL  string
}

// Known banner placements.
const (
	PlacementSidebar = "sidebar"
	PlacementBody    = "body"
)

// IsZero reports whether the banner has nothing renderable.
func (b Banner) IsZero() bool {
	return b.LinkURL == "" || b.ImageURL == ""
}
