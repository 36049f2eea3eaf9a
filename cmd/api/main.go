package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/reedge/reedge-services/api/internal/config"
	"github.com/reedge/reedge-services/api/internal/infrastructure/cache"
	mongodoc "github.com/reedge/reedge-services/api/internal/infrastructure/mongo"
	"github.com/reedge/reedge-services/api/internal/infrastructure/supabase"
	"github.com/reedge/reedge-services/api/internal/logging"
	"github.com/reedge/reedge-services/api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Production())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var (
		backend server.Backend
		closers []func(context.Context) error
	)
	switch cfg.Backend {
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
		clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
		client, err := mongo.Connect(ctx, clientOptions)
		cancel()
		if err != nil {
			logger.Fatalw("MongoDB connect failed", "error", err)
		}
		backend = mongodoc.NewShopRepository(client.Database(cfg.MongoDatabase), mongodoc.Collections{
			Shops:   cfg.ShopCollection,
			Prices:  cfg.PriceCollection,
			Reviews: cfg.ReviewCollection,
			Banners: cfg.BannerCollection,
		})
		closers = append(closers, client.Disconnect)
	default:
		checkSupabaseKey(cfg.SupabaseAnonKey, logger)
		client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseTimeout, nil)
		backend = supabase.NewRepository(client, logger)
	}

	cacheOpts := cache.Options{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		Prefix:     cfg.CachePrefix,
		CatalogTTL: cfg.CatalogTTL,
		ReviewTTL:  cfg.ReviewTTL,
	}
	rdb := cache.NewClient(context.Background(), cacheOpts, logger)
	snapshots := cache.NewSnapshots(rdb, cacheOpts, logger)
	if rdb != nil {
		closers = append(closers, func(context.Context) error { return rdb.Close() })
	}

	app := server.New(cfg, backend, snapshots, logger)
	for _, closer := range closers {
		app.OnShutdown(closer)
	}
	logger.Infow("starting", "backend", cfg.Backend, "sharedCache", snapshots.Enabled(), "mapEnabled", cfg.NaverMapClientID != "")
	if cfg.NaverMapClientID == "" {
		logger.Warn("NAVER_MAP_CLIENT_ID is not set; the map is replaced by a notice")
	}
	if err := app.Run(); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func checkSupabaseKey(key string, logger *zap.SugaredLogger) {
	info, err := supabase.InspectKey(key)
	if err != nil {
		logger.Warnw("SUPABASE_ANON_KEY is not a project JWT", "error", err)
		return
	}
	for _, problem := range info.Problems(time.Now()) {
		logger.Warnw("SUPABASE_ANON_KEY", "role", info.Role, "ref", info.Ref, "problem", problem)
	}
}
