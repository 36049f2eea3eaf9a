package domain

import "time"

// Shop represents one resoling business as shown on the public finder.
// Commerce groups are independently optional: a nil pointer (or an empty
// Prices slice) means the upstream record had nothing for that group.
type Shop struct {
	ID             string
	Slug           string
	Name           string
	Address        string
	Phone          string
	Region         Region
	Location       LatLng
	Images         []string
	Tags           []string
	Verified       bool
	LastVerifiedAt *time.Time
	Notice         string
	Prices         []PriceItem
	Turnaround     *Turnaround
	Process        *Process
	Hours          *BusinessHours
	Social         SocialLinks
}

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PriceItem is one line of a shop's price list.
type PriceItem struct {
	Service     string
	Price       string
	Description string
	SourceURL   string
}

// Turnaround is the estimated repair duration.
type Turnaround struct {
	Text      string
	SourceURL string
}

// Process lists the repair steps in order.
type Process struct {
	Steps     []string
	SourceURL string
}

// BusinessHours keeps the free-text opening hours and optional extras.
type BusinessHours struct {
	Text    string
	Break   string
	Details string
	Link    string
}

// SocialLinks defines structured external links for a shop.
type SocialLinks struct {
	Website   string
	Instagram string
	Blog      string
	Naver     string
	Kakao     string
}

// IsZero reports whether no link is set.
func (s SocialLinks) IsZero() bool {
	return s == SocialLinks{}
}

// HasPrices reports whether the price group is present.
func (s Shop) HasPrices() bool {
	return len(s.Prices) > 0
}

// Clone returns a deep copy so callers never share slices with a catalog snapshot.
func (s Shop) Clone() Shop {
	out := s
	out.Images = append([]string(nil), s.Images...)
	out.Tags = append([]string(nil), s.Tags...)
	out.Prices = append([]PriceItem(nil), s.Prices...)
	if s.LastVerifiedAt != nil {
		t := *s.LastVerifiedAt
		out.LastVerifiedAt = &t
	}
	if s.Turnaround != nil {
		t := *s.Turnaround
		out.Turnaround = &t
	}
	if s.Process != nil {
		p := *s.Process
		p.Steps = append([]string(nil), s.Process.Steps...)
		out.Process = &p
	}
	if s.Hours != nil {
		h := *s.Hours
		out.Hours = &h
	}
	return out
}
