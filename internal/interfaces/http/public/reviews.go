package public

import (
	"errors"
	"net/http"

	"github.com/reedge/reedge-services/api/internal/interfaces/http/common"
	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
)

// shopReviewsHandler はレビュータブが開かれたときに初めて呼ばれる遅延読み込み API。
// 取得失敗は空リストとして返す。
func (h *Handler) shopReviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(r)
		defer cancel()

		shop, err := h.shops.Detail(ctx, slugParam(r))
		if err != nil {
			if errors.Is(err, publicapp.ErrShopNotFound) {
				common.WriteError(h.logger, w, http.StatusNotFound, "업체를 찾을 수 없습니다")
				return
			}
			common.WriteError(h.logger, w, http.StatusInternalServerError, "업체 정보를 불러오지 못했습니다")
			return
		}

		reviews := h.reviews.ForShop(ctx, shop.ID)
		common.SetCache(w, common.ReviewMaxAge)
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewListResponse(reviews))
	}
}
