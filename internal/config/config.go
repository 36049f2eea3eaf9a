package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names the external data collaborator.
type Backend string

const (
	BackendSupabase Backend = "supabase"
	BackendMongo    Backend = "mongo"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr           string
	Env            string
	Backend        Backend
	SiteName       string
	Timezone       string
	AllowedOrigins []string

	SupabaseURL     string
	SupabaseAnonKey string
	SupabaseTimeout time.Duration

	MongoURI         string
	MongoDatabase    string
	MongoTimeout     time.Duration
	ShopCollection   string
	PriceCollection  string
	ReviewCollection string
	BannerCollection string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CachePrefix   string
	CatalogTTL    time.Duration
	ReviewTTL     time.Duration

	NaverMapClientID string
}

// Load reads .env.local and .env when present, then the environment.
// Variables already set in the process win over the files.
func Load() (Config, error) {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", file, err)
			}
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:           envOrDefault("HTTP_ADDR", ":8080"),
		Env:            envOrDefault("APP_ENV", "local"),
		Backend:        Backend(strings.ToLower(envOrDefault("BACKEND", string(BackendSupabase)))),
		SiteName:       envOrDefault("SITE_NAME", "Re:Edge"),
		Timezone:       envOrDefault("TIMEZONE", "Asia/Seoul"),
		AllowedOrigins: parseList("API_ALLOWED_ORIGINS", []string{"*"}),

		SupabaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/"),
		SupabaseAnonKey: strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),

		MongoURI:         envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:    envOrDefault("MONGO_DB", "reedge"),
		ShopCollection:   envOrDefault("SHOP_COLLECTION", "shops"),
		PriceCollection:  envOrDefault("PRICE_COLLECTION", "shop_prices"),
		ReviewCollection: envOrDefault("REVIEW_COLLECTION", "shop_reviews"),
		BannerCollection: envOrDefault("BANNER_COLLECTION", "affiliate_products"),

		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CachePrefix:   envOrDefault("CACHE_PREFIX", "reedge"),

		NaverMapClientID: strings.TrimSpace(os.Getenv("NAVER_MAP_CLIENT_ID")),
	}

	var err error
	if cfg.SupabaseTimeout, err = parseDuration("SUPABASE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MongoTimeout, err = parseDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CatalogTTL, err = parseDuration("CATALOG_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ReviewTTL, err = parseDuration("REVIEW_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		if cfg.RedisDB, err = strconv.Atoi(raw); err != nil {
			return Config{}, fmt.Errorf("REDIS_DB: %w", err)
		}
	}

	switch cfg.Backend {
	case BackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
			return Config{}, fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY must be configured for backend %q", cfg.Backend)
		}
	case BackendMongo:
	default:
		return Config{}, fmt.Errorf("unknown BACKEND %q", cfg.Backend)
	}

	return cfg, nil
}

// Production reports whether APP_ENV selects production logging.
func (c Config) Production() bool {
	return c.Env != "local" && c.Env != "development"
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
