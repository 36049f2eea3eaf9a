package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reedge/reedge-services/api/internal/config"
	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

type fakeBackend struct {
	pingErr error
}

func (f fakeBackend) ListShops(context.Context) ([]domain.Shop, error) {
	return []domain.Shop{{ID: "1", Slug: "shumaster", Name: "슈마스터", Location: domain.LatLng{Lat: 37.5, Lng: 127}}}, nil
}

func (f fakeBackend) ListPrices(context.Context) (map[string][]domain.PriceItem, error) {
	return nil, nil
}

func (f fakeBackend) ListRegions(context.Context) (map[string]domain.Region, error) {
	return map[string]domain.Region{"1": "서울"}, nil
}

func (f fakeBackend) FindByShop(context.Context, string) ([]domain.Review, error) {
	return nil, nil
}

func (f fakeBackend) FindMarkup(context.Context, string) (string, error) {
	return "", publicapp.ErrBannerNotFound
}

func (f fakeBackend) Ping(context.Context) error {
	return f.pingErr
}

func testConfig() config.Config {
	return config.Config{
		Addr:           ":0",
		Timezone:       "Asia/Seoul",
		AllowedOrigins: []string{"https://reedge.kr"},
		CatalogTTL:     time.Minute,
	}
}

func TestHealthz(t *testing.T) {
	router := New(testConfig(), fakeBackend{}, nil, nil).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	router = New(testConfig(), fakeBackend{pingErr: errors.New("down")}, nil, nil).Router()
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestCORS(t *testing.T) {
	router := New(testConfig(), fakeBackend{}, nil, nil).Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/shops", nil)
	req.Header.Set("Origin", "https://reedge.kr")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://reedge.kr", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/regions", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterServesPublicRoutes(t *testing.T) {
	router := New(testConfig(), fakeBackend{}, nil, nil).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shops/shumaster", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"region":"서울"`)
}

func TestShutdownRunsClosers(t *testing.T) {
	srv := New(testConfig(), fakeBackend{}, nil, nil)
	var called []string
	srv.OnShutdown(func(context.Context) error { called = append(called, "mongo"); return nil })
	srv.OnShutdown(func(context.Context) error { called = append(called, "redis"); return errors.New("ignored") })

	srv.shutdown(context.Background())
	assert.Equal(t, []string{"mongo", "redis"}, called)
}
