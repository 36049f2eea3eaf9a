package public

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/reedge/reedge-services/api/internal/interfaces/http/common"
	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
	"github.com/reedge/reedge-services/api/internal/selection"
)

// catalogHandler returns every shop for clients that filter locally.
func (h *Handler) catalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(r)
		defer cancel()

		catalog := h.shops.Catalog(ctx)
		items := make([]shopDetailResponse, 0, catalog.Len())
		for _, shop := range catalog.Shops() {
			items = append(items, buildShopDetailResponse(shop))
		}

		common.SetCache(w, common.CatalogMaxAge)
		common.WriteJSON(h.logger, w, http.StatusOK, catalogResponse{
			Items:    items,
			Total:    len(items),
			LoadedAt: catalog.LoadedAt(),
		})
	}
}

func (h *Handler) regionListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := make([]string, 0, len(domain.Regions))
		for _, region := range domain.Regions {
			items = append(items, region.String())
		}
		common.SetCache(w, common.BannerMaxAge)
		common.WriteJSON(h.logger, w, http.StatusOK, regionResponse{Items: items})
	}
}

// shopListHandler applies the URL state (shop, region, q) to the catalog.
func (h *Handler) shopListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(r)
		defer cancel()

		state := selection.FromQuery(r.URL.Query())
		listing := h.shops.Browse(ctx, state.Filter())
		listing.Map.Enabled = h.mapClientID != ""

		resp := shopListResponse{
			Items:           make([]shopSummaryResponse, 0, len(listing.Shops)),
			Total:           listing.Total,
			Visible:         len(listing.Shops),
			SelectedMissing: listing.SelectedMissing,
			Map:             listing.Map,
			Query:           state.Query().Encode(),
		}
		for _, shop := range listing.Shops {
			resp.Items = append(resp.Items, buildShopSummaryResponse(shop))
		}
		if listing.Selected != nil {
			detail := buildShopDetailResponse(*listing.Selected)
			resp.Selected = &detail
		}

		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}

func (h *Handler) shopDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(r)
		defer cancel()

		shop, err := h.shops.Detail(ctx, slugParam(r))
		if err != nil {
			if errors.Is(err, publicapp.ErrShopNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "업체를 찾을 수 없습니다")
				return
			}
			h.logger.Errorw("shop detail fetch failed", "slug", slugParam(r), "error", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "업체 정보를 불러오지 못했습니다")
			return
		}

		common.SetCache(w, common.CatalogMaxAge)
		common.WriteJSON(h.logger, w, http.StatusOK, buildShopDetailResponse(shop))
	}
}

// shopRedirectHandler keeps /shop/{slug} links working by selecting the shop
// on the finder page.
func (h *Handler) shopRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := slugParam(r)
		if slug == "" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		target := "/?" + url.Values{selection.ParamShop: {slug}}.Encode()
		http.Redirect(w, r, target, http.StatusFound)
	}
}
