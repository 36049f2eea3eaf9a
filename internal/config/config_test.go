package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSupabase(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
}

func TestFromEnvDefaults(t *testing.T) {
	setSupabase(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendSupabase, cfg.Backend)
	assert.Equal(t, "https://example.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, time.Minute, cfg.CatalogTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "shops", cfg.ShopCollection)
	assert.False(t, cfg.Production())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND", "mongo")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CATALOG_TTL", "5m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("API_ALLOWED_ORIGINS", "https://reedge.kr, ,https://www.reedge.kr")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.Backend)
	assert.True(t, cfg.Production())
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"https://reedge.kr", "https://www.reedge.kr"}, cfg.AllowedOrigins)
}

func TestFromEnvErrors(t *testing.T) {
	t.Run("supabase without credentials", func(t *testing.T) {
		t.Setenv("BACKEND", "supabase")
		t.Setenv("SUPABASE_URL", "")
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("BACKEND", "sqlite")
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("bad duration", func(t *testing.T) {
		setSupabase(t)
		t.Setenv("CATALOG_TTL", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "CATALOG_TTL")
	})
}
