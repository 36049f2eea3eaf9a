package public

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reedge/reedge-services/api/internal/interfaces/http/common"
)

// bannerHandler returns the parsed banner, or 204 when the placement has none.
func (h *Handler) bannerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(r)
		defer cancel()

		placement := strings.TrimSpace(chi.URLParam(r, "placement"))
		banner, ok := h.banners.Placement(ctx, placement)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		common.SetCache(w, common.BannerMaxAge)
		common.WriteJSON(h.logger, w, http.StatusOK, bannerResponse{
			Placement: banner.Placement,
			LinkURL:   banner.LinkURL,
			ImageURL:  banner.ImageURL,
		})
	}
}
