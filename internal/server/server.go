package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/reedge/reedge-services/api/internal/config"
	commonhttp "github.com/reedge/reedge-services/api/internal/interfaces/http/common"
	publichttp "github.com/reedge/reedge-services/api/internal/interfaces/http/public"
	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
)

// Backend is the external data collaborator: every read port plus a liveness probe.
type Backend interface {
	publicapp.ShopRepository
	publicapp.ReviewRepository
	publicapp.BannerRepository
	Ping(ctx context.Context) error
}

// Server は HTTP サーバーのライフサイクルを管理し、Public ハンドラへ依存注入するコンポジションルート。
// DDD の Interface 層に相当し、アプリケーションサービスをルータへ接続する責務を担う。
type Server struct {
	logger         *zap.SugaredLogger
	backend        Backend
	shopQueries    publicapp.ShopQueryService
	reviewQueries  publicapp.ReviewQueryService
	bannerQueries  publicapp.BannerQueryService
	location       *time.Location
	addr           string
	allowedOrigins []string
	siteName       string
	mapClientID    string
	closers        []func(context.Context) error
}

// New は Config とバックエンドを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
// cache may be nil.
func New(cfg config.Config, backend Backend, cache publicapp.SnapshotCache, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
		logger.Warnw("timezone load failed, using KST", "timezone", cfg.Timezone, "error", err)
	}

	var shopOpts []publicapp.ShopServiceOption
	if cache != nil {
		shopOpts = append(shopOpts, publicapp.WithSnapshotCache(cache))
	}

	return &Server{
		logger:         logger,
		backend:        backend,
		shopQueries:    publicapp.NewShopQueryService(backend, cfg.CatalogTTL, logger, shopOpts...),
		reviewQueries:  publicapp.NewReviewQueryService(backend, cache, logger),
		bannerQueries:  publicapp.NewBannerQueryService(backend, logger),
		location:       loc,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		siteName:       cfg.SiteName,
		mapClientID:    cfg.NaverMapClientID,
	}
}

// OnShutdown registers fn to run after the HTTP server stops.
func (s *Server) OnShutdown(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

// Router はルーティングとミドルウェアを組み立てる。
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(accessLog(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:      s.logger,
		Shops:       s.shopQueries,
		Reviews:     s.reviewQueries,
		Banners:     s.bannerQueries,
		SiteName:    s.siteName,
		MapClientID: s.mapClientID,
	})
	publicHandler.Register(router)
	return router
}

// Run はHTTPサーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP server listening", "addr", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// accessLog logs one line per request.
func accessLog(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Infow("request",
				"method", r.Method,
				"uri", r.RequestURI,
				"status", ww.Status(),
				"size", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler はバックエンドへの疎通確認を行い、監視系からのヘルスチェック要求に応える。
// ドメインの状態ではなくインフラ状態のみを返す。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.backend.Ping(ctx); err != nil {
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().In(s.location).Format(time.RFC3339),
		})
	}
}

// shutdown は登録済みのクリーンアップ処理をタイムアウト付きで実行する。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, closer := range s.closers {
		if err := closer(shutdownCtx); err != nil {
			s.logger.Warnw("cleanup failed", "error", err)
		}
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case sig := <-sigChan:
		srv.logger.Infow("signal received, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Warnw("HTTP shutdown failed", "error", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
