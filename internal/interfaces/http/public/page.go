package public

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/reedge/reedge-services/api/internal/interfaces/http/common"
	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
	"github.com/reedge/reedge-services/api/internal/selection"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").ParseFS(templateFS, "templates/page.html"))

const defaultImage = "/og-image.png"

type regionLink struct {
	Label  string
	Href   string
	Active bool
}

type shopCard struct {
	shopSummaryResponse
	Href     string
	Selected bool
}

type markerLink struct {
	publicapp.Marker
	Href string `json:"href"`
}

type mapPayload struct {
	Markers []markerLink  `json:"markers"`
	Center  domain.LatLng `json:"center"`
	Zoom    int           `json:"zoom"`
}

type pageView struct {
	SiteName    string
	Title       string
	Description string
	Image       string

	State      selection.State
	Regions    []regionLink
	AllRegions regionLink
	Shops      []shopCard
	Total      int
	NoResults  bool
	ResetHref  string

	Detail     *shopDetailResponse
	NotFound   bool
	CloseHref  string
	ReviewsURL string
	Reviews    reviewListResponse

	MapEnabled  bool
	MapClientID string
	Map         mapPayload

	Sidebar *bannerResponse
	Body    *bannerResponse
}

// pageHandler renders the finder for the URL state. Every link on the page
// is built from a pure state transition, so the address bar alone reproduces
// the view.
func (h *Handler) pageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(r)
		defer cancel()

		state := selection.FromQuery(r.URL.Query())
		listing := h.shops.Browse(ctx, state.Filter())

		view := pageView{
			SiteName:    h.siteName,
			Title:       fmt.Sprintf("%s - 전국 암벽화 수선 전문점 찾기", h.siteName),
			Description: "전국 암벽화 리솔 전문점의 가격, 소요 기간, 후기를 지도에서 비교하세요.",
			Image:       defaultImage,
			State:       state,
			Total:       listing.Total,
			NoResults:   len(listing.Shops) == 0,
			ResetHref:   state.ResetFilters().Href("/"),
			CloseHref:   state.Clear().Href("/"),
			MapEnabled:  h.mapClientID != "",
			MapClientID: h.mapClientID,
		}

		view.AllRegions = regionLink{Label: "전체", Href: state.WithRegion(domain.RegionAll).Href("/"), Active: state.Region == domain.RegionAll}
		for _, region := range domain.Regions {
			view.Regions = append(view.Regions, regionLink{
				Label:  region.String(),
				Href:   state.WithRegion(region).Href("/"),
				Active: state.Region == region,
			})
		}

		for _, shop := range listing.Shops {
			view.Shops = append(view.Shops, shopCard{
				shopSummaryResponse: buildShopSummaryResponse(shop),
				Href:                state.Select(shop.Slug, false).Href("/"),
				Selected:            shop.Slug == state.Selected,
			})
		}

		view.Map = mapPayload{Center: listing.Map.Center, Zoom: listing.Map.Zoom, Markers: make([]markerLink, 0, len(listing.Map.Markers))}
		for _, m := range listing.Map.Markers {
			view.Map.Markers = append(view.Map.Markers, markerLink{Marker: m, Href: state.Select(m.Slug, false).Href("/")})
		}

		if listing.Selected != nil {
			detail := buildShopDetailResponse(*listing.Selected)
			view.Detail = &detail
			view.ReviewsURL = fmt.Sprintf("/api/shops/%s/reviews", listing.Selected.Slug)
			view.Reviews = reviewListResponse{Empty: domain.Fallback(domain.FieldReviews)}
			view.Title = fmt.Sprintf("%s - 전국 암벽화 수선 전문점 | %s", detail.Name, h.siteName)
			view.Description = detail.Notice
			if view.Description == "" {
				view.Description = fmt.Sprintf("%s에 위치한 암벽화 수선 전문점 %s의 상세 정보와 후기를 확인하세요.", detail.Address, detail.Name)
			}
			if len(detail.Images) > 0 {
				view.Image = detail.Images[0]
			}
			if banner, ok := h.banners.Placement(ctx, domain.PlacementBody); ok {
				view.Body = &bannerResponse{Placement: banner.Placement, LinkURL: banner.LinkURL, ImageURL: banner.ImageURL}
			}
		} else if listing.SelectedMissing {
			view.NotFound = true
			view.Title = fmt.Sprintf("업체를 찾을 수 없습니다 | %s", h.siteName)
		}

		if banner, ok := h.banners.Placement(ctx, domain.PlacementSidebar); ok {
			view.Sidebar = &bannerResponse{Placement: banner.Placement, LinkURL: banner.LinkURL, ImageURL: banner.ImageURL}
		}

		var buf bytes.Buffer
		if err := h.page.Execute(&buf, view); err != nil {
			h.logger.Errorw("page render failed", "error", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "페이지를 표시하지 못했습니다")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
