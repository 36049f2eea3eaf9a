// Package cache shares catalog snapshots and review lists between API
// instances through Redis. Every Redis failure is treated as a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// Options configures the Redis connection and key layout.
type Options struct {
	Addr       string
	Password   string
	DB         int
	Prefix     string
	CatalogTTL time.Duration
	ReviewTTL  time.Duration
}

// NewClient connects to Redis and pings it. It returns nil when addr is empty
// or the server cannot be reached, which disables the shared cache.
func NewClient(ctx context.Context, opts Options, logger *zap.SugaredLogger) *redis.Client {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger != nil {
			logger.Warnw("redis unavailable, shared cache disabled", "addr", opts.Addr, "error", err)
		}
		_ = client.Close()
		return nil
	}
	return client
}

// Snapshots implements application.SnapshotCache. A nil client is valid and
// makes every call a miss.
type Snapshots struct {
	rdb        *redis.Client
	prefix     string
	catalogTTL time.Duration
	reviewTTL  time.Duration
	logger     *zap.SugaredLogger
}

var _ application.SnapshotCache = (*Snapshots)(nil)

// NewSnapshots wraps rdb.
func NewSnapshots(rdb *redis.Client, opts Options, logger *zap.SugaredLogger) *Snapshots {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "reedge"
	}
	catalogTTL := opts.CatalogTTL
	if catalogTTL <= 0 {
		catalogTTL = time.Minute
	}
	reviewTTL := opts.ReviewTTL
	if reviewTTL <= 0 {
		reviewTTL = 10 * time.Minute
	}
	return &Snapshots{rdb: rdb, prefix: prefix, catalogTTL: catalogTTL, reviewTTL: reviewTTL, logger: logger}
}

// Enabled reports whether a Redis client is attached.
func (s *Snapshots) Enabled() bool {
	return s != nil && s.rdb != nil
}

func (s *Snapshots) catalogKey() string {
	return s.prefix + ":catalog:v1"
}

func (s *Snapshots) reviewKey(shopID string) string {
	return s.prefix + ":reviews:v1:" + shopID
}

func (s *Snapshots) LoadCatalog(ctx context.Context) ([]domain.Shop, bool) {
	var shops []domain.Shop
	if !s.load(ctx, s.catalogKey(), &shops) {
		return nil, false
	}
	return shops, true
}

func (s *Snapshots) StoreCatalog(ctx context.Context, shops []domain.Shop) {
	s.store(ctx, s.catalogKey(), shops, s.catalogTTL)
}

func (s *Snapshots) LoadReviews(ctx context.Context, shopID string) ([]domain.Review, bool) {
	var reviews []domain.Review
	if !s.load(ctx, s.reviewKey(shopID), &reviews) {
		return nil, false
	}
	return reviews, true
}

func (s *Snapshots) StoreReviews(ctx context.Context, shopID string, reviews []domain.Review) {
	s.store(ctx, s.reviewKey(shopID), reviews, s.reviewTTL)
}

func (s *Snapshots) load(ctx context.Context, key string, out any) bool {
	if !s.Enabled() {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnw("redis get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warnw("discarding undecodable cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Snapshots) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warnw("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.rdb.SetEx(ctx, key, raw, ttl).Err(); err != nil {
		s.logger.Warnw("redis set failed", "key", key, "error", err)
	}
}
