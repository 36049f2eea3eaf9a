package public

import (
	"html/template"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger      *zap.SugaredLogger
	shops       publicapp.ShopQueryService
	reviews     publicapp.ReviewQueryService
	banners     publicapp.BannerQueryService
	siteName    string
	mapClientID string
	page        *template.Template
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger      *zap.SugaredLogger
	Shops       publicapp.ShopQueryService
	Reviews     publicapp.ReviewQueryService
	Banners     publicapp.BannerQueryService
	SiteName    string
	MapClientID string
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	siteName := cfg.SiteName
	if siteName == "" {
		siteName = "Re:Edge"
	}
	return &Handler{
		logger:      logger,
		shops:       cfg.Shops,
		reviews:     cfg.Reviews,
		banners:     cfg.Banners,
		siteName:    siteName,
		mapClientID: cfg.MapClientID,
		page:        pageTemplate,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.pageHandler())
	r.Get("/shop/{slug}", h.shopRedirectHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.catalogHandler())
		r.Get("/regions", h.regionListHandler())
		r.Get("/shops", h.shopListHandler())
		r.Get("/shops/{slug}", h.shopDetailHandler())
		r.Get("/shops/{slug}/reviews", h.shopReviewsHandler())
		r.Get("/banners/{placement}", h.bannerHandler())
	})
}
