package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reedge/reedge-services/api/internal/config"
	mongodoc "github.com/reedge/reedge-services/api/internal/infrastructure/mongo"
	"github.com/reedge/reedge-services/api/internal/logging"
	"github.com/reedge/reedge-services/api/internal/public/domain"
	"github.com/reedge/reedge-services/api/internal/selection"
)

type seedOptions struct {
	file            string
	dropCollections bool
	watch           bool
	settle          time.Duration
}

// fixture は YAML シードファイルのルート。
type fixture struct {
	Shops   []shopFixture   `yaml:"shops"`
	Banners []bannerFixture `yaml:"banners"`
}

type shopFixture struct {
	mongodoc.ShopDocument `yaml:",inline"`
	Lat                   float64         `yaml:"lat"`
	Lng                   float64         `yaml:"lng"`
	Prices                []priceFixture  `yaml:"prices"`
	Reviews               []reviewFixture `yaml:"reviews"`
}

type priceFixture struct {
	Service     string `yaml:"service"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
}

type reviewFixture struct {
	Title     string    `yaml:"title"`
	Author    string    `yaml:"author"`
	Source    string    `yaml:"source"`
	URL       string    `yaml:"url"`
	CreatedAt time.Time `yaml:"createdAt"`
}

type bannerFixture struct {
	Placement string `yaml:"placement"`
	HTML      string `yaml:"html"`
	Active    bool   `yaml:"active"`
}

type seedDocuments struct {
	shops   []mongodoc.ShopDocument
	prices  []mongodoc.PriceDocument
	reviews []mongodoc.ReviewDocument
	banners []mongodoc.BannerDocument
}

func main() {
	opts := parseFlags()

	// シードは常に Mongo に投入する。
	if strings.TrimSpace(os.Getenv("BACKEND")) == "" {
		_ = os.Setenv("BACKEND", string(config.BackendMongo))
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	logger, err := logging.New(cfg.Production())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalw("MongoDB 接続に失敗しました", "error", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDatabase)
	names := mongodoc.Collections{
		Shops:   cfg.ShopCollection,
		Prices:  cfg.PriceCollection,
		Reviews: cfg.ReviewCollection,
		Banners: cfg.BannerCollection,
	}

	if err := seed(connectCtx, db, names, opts, logger); err != nil {
		logger.Fatalw("Seed に失敗しました", "error", err)
	}
	logger.Infow("seeded", "database", cfg.MongoDatabase)

	if !opts.watch {
		return
	}
	// watch モードでは再投入のたびに既存データを入れ替える。
	opts.dropCollections = true
	err = watchFixture(ctx, opts.file, selection.NewDebouncer(opts.settle), logger, func() {
		reseedCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
		if err := seed(reseedCtx, db, names, opts, logger); err != nil {
			logger.Warnw("再投入に失敗しました", "error", err)
		}
	})
	if err != nil {
		logger.Fatalw("シードファイルの監視に失敗しました", "error", err)
	}
}

func seed(ctx context.Context, db *mongo.Database, names mongodoc.Collections, opts seedOptions, logger *zap.SugaredLogger) error {
	fx, err := loadFixture(opts.file)
	if err != nil {
		return err
	}
	docs, err := buildDocuments(fx, time.Now().UTC())
	if err != nil {
		return err
	}

	if opts.dropCollections {
		dropCollections(ctx, db, names, logger)
		logger.Info("既存コレクションを削除しました")
	}
	if err := mongodoc.EnsureIndexes(ctx, db, names); err != nil {
		return fmt.Errorf("インデックス作成: %w", err)
	}

	if err := insertMany(ctx, db.Collection(names.Shops), toAnySlice(docs.shops)); err != nil {
		return fmt.Errorf("店舗データの挿入: %w", err)
	}
	if err := insertMany(ctx, db.Collection(names.Prices), toAnySlice(docs.prices)); err != nil {
		return fmt.Errorf("価格データの挿入: %w", err)
	}
	if err := insertMany(ctx, db.Collection(names.Reviews), toAnySlice(docs.reviews)); err != nil {
		return fmt.Errorf("レビューデータの挿入: %w", err)
	}
	if err := insertMany(ctx, db.Collection(names.Banners), toAnySlice(docs.banners)); err != nil {
		return fmt.Errorf("バナーデータの挿入: %w", err)
	}

	logger.Infow("Seed 完了",
		"shops", len(docs.shops), "prices", len(docs.prices), "reviews", len(docs.reviews), "banners", len(docs.banners))
	return nil
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.file, "file", "seed/shops.yaml", "投入する YAML シードファイル")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	flag.BoolVar(&opts.watch, "watch", false, "シードファイルの変更を監視して再投入する")
	flag.DurationVar(&opts.settle, "settle", selection.DefaultQuietPeriod, "変更検知から再投入までの待ち時間")
	flag.Parse()
	return opts
}

func loadFixture(path string) (fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, err
	}
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fixture{}, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// buildDocuments assigns ids and converts fixtures into collection documents.
// Fixture order becomes sortOrder.
func buildDocuments(fx fixture, now time.Time) (seedDocuments, error) {
	var out seedDocuments
	seen := make(map[string]struct{}, len(fx.Shops))
	for i, sf := range fx.Shops {
		shop := sf.ShopDocument
		shop.Slug = strings.TrimSpace(shop.Slug)
		if shop.Slug == "" || strings.TrimSpace(shop.Name) == "" {
			return seedDocuments{}, fmt.Errorf("shops[%d]: slug と name は必須です", i)
		}
		if _, dup := seen[shop.Slug]; dup {
			return seedDocuments{}, fmt.Errorf("shops[%d]: slug %q が重複しています", i, shop.Slug)
		}
		seen[shop.Slug] = struct{}{}
		if shop.Region != "" {
			if _, ok := domain.ParseRegion(shop.Region); !ok {
				return seedDocuments{}, fmt.Errorf("shops[%d]: 不明な地域 %q", i, shop.Region)
			}
		}

		shop.ID = primitive.NewObjectID()
		shop.Location = mongodoc.NewGeoPoint(domain.LatLng{Lat: sf.Lat, Lng: sf.Lng})
		shop.SortOrder = i
		shop.CreatedAt = now
		shop.UpdatedAt = now
		out.shops = append(out.shops, shop)

		for pos, p := range sf.Prices {
			out.prices = append(out.prices, mongodoc.PriceDocument{
				ID:          primitive.NewObjectID(),
				ShopID:      shop.ID,
				Service:     p.Service,
				Price:       p.Price,
				Description: p.Description,
				Position:    pos,
			})
		}
		for _, r := range sf.Reviews {
			createdAt := r.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			out.reviews = append(out.reviews, mongodoc.ReviewDocument{
				ID:        primitive.NewObjectID(),
				ShopID:    shop.ID,
				Title:     r.Title,
				Author:    r.Author,
				Source:    r.Source,
				URL:       r.URL,
				CreatedAt: createdAt.UTC(),
			})
		}
	}
	for _, b := range fx.Banners {
		out.banners = append(out.banners, mongodoc.BannerDocument{
			ID:        primitive.NewObjectID(),
			Placement: b.Placement,
			HTML:      b.HTML,
			Active:    b.Active,
		})
	}
	return out, nil
}

func dropCollections(ctx context.Context, db *mongo.Database, names mongodoc.Collections, logger *zap.SugaredLogger) {
	for _, name := range []string{names.Shops, names.Prices, names.Reviews, names.Banners} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			// Drop は存在しない場合も err を返すので warning ログにとどめる
			logger.Warnw("コレクションの削除に失敗", "collection", name, "error", err)
		}
	}
}

func insertMany(ctx context.Context, col *mongo.Collection, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := col.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
