package public

import (
	"time"

	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

type latLngPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type shopSummaryResponse struct {
	ID       string        `json:"id"`
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Region   string        `json:"region,omitempty"`
	Location latLngPayload `json:"location"`
	Tags     []string      `json:"tags,omitempty"`
	Images   []string      `json:"images,omitempty"`
	Verified bool          `json:"verified"`
}

type priceResponse struct {
	Service     string `json:"service"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"`
}

// textBlock is an optional detail group. Text holds the fallback string
// when Available is false.
type textBlock struct {
	Available bool     `json:"available"`
	Text      string   `json:"text"`
	Steps     []string `json:"steps,omitempty"`
	Extra     string   `json:"extra,omitempty"`
	SourceURL string   `json:"sourceUrl,omitempty"`
}

type socialPayload struct {
	Website   string `json:"website,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Blog      string `json:"blog,omitempty"`
	Naver     string `json:"naver,omitempty"`
	Kakao     string `json:"kakao,omitempty"`
}

type shopDetailResponse struct {
	shopSummaryResponse
	Phone          string          `json:"phone"`
	Notice         string          `json:"notice,omitempty"`
	LastVerifiedAt *time.Time      `json:"lastVerifiedAt,omitempty"`
	Prices         []priceResponse `json:"prices"`
	PriceNote      string          `json:"priceNote,omitempty"`
	Turnaround     textBlock       `json:"turnaround"`
	Process        textBlock       `json:"process"`
	Hours          textBlock       `json:"hours"`
	Social         socialPayload   `json:"social"`
}

type shopListResponse struct {
	Items    []shopSummaryResponse `json:"items"`
	Total    int                   `json:"total"`
	Visible  int                   `json:"visible"`
	Selected *shopDetailResponse   `json:"selected,omitempty"`
	// SelectedMissing is set when the shop parameter names an unknown slug.
	SelectedMissing bool              `json:"selectedMissing,omitempty"`
	Map             publicapp.MapView `json:"map"`
	Query           string            `json:"query"`
}

type catalogResponse struct {
	Items    []shopDetailResponse `json:"items"`
	Total    int                  `json:"total"`
	LoadedAt time.Time            `json:"loadedAt"`
}

type reviewResponse struct {
	Title     string     `json:"title"`
	Author    string     `json:"author,omitempty"`
	Source    string     `json:"source,omitempty"`
	URL       string     `json:"url"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type reviewListResponse struct {
	Items []reviewResponse `json:"items"`
	// Empty carries the fallback message when there are no reviews.
	Empty string `json:"empty,omitempty"`
}

type bannerResponse struct {
	Placement string `json:"placement"`
	LinkURL   string `json:"linkUrl"`
	ImageURL  string `json:"imageUrl"`
}

type regionResponse struct {
	Items []string `json:"items"`
}

// buildShopSummaryResponse は Shop ドメインモデルを一覧表示用 DTO に変換する。
func buildShopSummaryResponse(shop domain.Shop) shopSummaryResponse {
	return shopSummaryResponse{
		ID:       shop.ID,
		Slug:     shop.Slug,
		Name:     shop.Name,
		Address:  shop.Address,
		Region:   shop.Region.String(),
		Location: latLngPayload{Lat: shop.Location.Lat, Lng: shop.Location.Lng},
		Tags:     append([]string(nil), shop.Tags...),
		Images:   append([]string(nil), shop.Images...),
		Verified: shop.Verified,
	}
}

// buildShopDetailResponse applies the fallback table to every optional group.
func buildShopDetailResponse(shop domain.Shop) shopDetailResponse {
	resp := shopDetailResponse{
		shopSummaryResponse: buildShopSummaryResponse(shop),
		Phone:               domain.OrFallback(domain.FieldPhone, shop.Phone),
		Notice:              shop.Notice,
		LastVerifiedAt:      shop.LastVerifiedAt,
		Prices:              make([]priceResponse, 0, len(shop.Prices)),
		Social: socialPayload{
			Website:   shop.Social.Website,
			Instagram: shop.Social.Instagram,
			Blog:      shop.Social.Blog,
			Naver:     shop.Social.Naver,
			Kakao:     shop.Social.Kakao,
		},
	}

	for _, p := range shop.Prices {
		resp.Prices = append(resp.Prices, priceResponse(p))
	}
	if !shop.HasPrices() {
		resp.PriceNote = domain.Fallback(domain.FieldPrices)
	}

	resp.Turnaround = textBlock{Text: domain.Fallback(domain.FieldTurnaround)}
	if t := shop.Turnaround; t != nil && t.Text != "" {
		resp.Turnaround = textBlock{Available: true, Text: t.Text, SourceURL: t.SourceURL}
	}

	resp.Process = textBlock{Text: domain.Fallback(domain.FieldProcess)}
	if p := shop.Process; p != nil && len(p.Steps) > 0 {
		resp.Process = textBlock{Available: true, Steps: append([]string(nil), p.Steps...), SourceURL: p.SourceURL}
	}

	resp.Hours = textBlock{Text: domain.Fallback(domain.FieldHours)}
	if hrs := shop.Hours; hrs != nil && hrs.Text != "" {
		resp.Hours = textBlock{Available: true, Text: hrs.Text, Extra: hrs.Break, Steps: splitLines(hrs.Details), SourceURL: hrs.Link}
	}

	return resp
}

func buildReviewListResponse(reviews []domain.Review) reviewListResponse {
	resp := reviewListResponse{Items: make([]reviewResponse, 0, len(reviews))}
	for _, r := range reviews {
		item := reviewResponse{Title: r.Title, Author: r.Author, Source: r.Source, URL: r.URL}
		if !r.CreatedAt.IsZero() {
			created := r.CreatedAt
			item.CreatedAt = &created
		}
		resp.Items = append(resp.Items, item)
	}
	if len(resp.Items) == 0 {
		resp.Empty = domain.Fallback(domain.FieldReviews)
	}
	return resp
}
