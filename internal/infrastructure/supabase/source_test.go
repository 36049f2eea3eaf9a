package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	publicapp "github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

const testKey = "anon-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/rpc/get_shops_with_coords", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`[
			{"id": 1, "slug": "shumaster", "name": "슈마스터", "address": "서울 성동구", "lat": 37.54, "lng": 127.05,
			 "turnaround": "약 2주 (https://blog.example.com/1)", "process_steps": ["접수", " ", "발송"], "business_hours": "10:00-19:00"},
			{"id": 2, "slug": "", "name": "no slug", "lat": 0, "lng": 0},
			{"id": "3", "slug": "bigstone", "name": "빅스톤", "lat": 37.6, "lng": 126.7}
		]`))
	})
	mux.HandleFunc("/rest/v1/shop_prices", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"shop_id": 1, "service_name": "창갈이", "price": "45,000원", "description": "비브람 (https://blog.example.com/p)"},
			{"shop_id": 1, "service_name": "", "price": "0"},
			{"shop_id": 3, "service_name": "앞창", "price": "25,000원"}
		]`))
	})
	mux.HandleFunc("/rest/v1/shops", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("select") == "id" {
			_, _ = w.Write([]byte(`[{"id": 1}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id": 1, "region": "서울"}, {"id": 3, "region": "경기"}, {"id": 4, "region": "도쿄"}]`))
	})
	mux.HandleFunc("/rest/v1/shop_reviews", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.1", r.URL.Query().Get("shop_id"))
		assert.Equal(t, "created_at.desc.nullslast", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[
			{"shop_id": 1, "title": "리솔 후기", "url": "https://blog.example.com/r", "created_at": "2025-05-01T10:00:00+09:00"},
			{"shop_id": 1, "title": "broken", "url": "not a url"}
		]`))
	})
	mux.HandleFunc("/rest/v1/affiliate_products", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("placement") == "eq.sidebar" {
			_, _ = w.Write([]byte(`[{"placement": "sidebar", "html_content": "<a href=\"https://x.example.com\"><img src=\"https://x.example.com/i.png\"></a>"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != testKey || r.Header.Get("Authorization") != "Bearer "+testKey {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid API key"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRepository(t *testing.T, key string) *Repository {
	srv := newTestServer(t)
	return NewRepository(NewClient(srv.URL+"/", key, time.Second, nil), nil)
}

func TestListShops(t *testing.T) {
	repo := newTestRepository(t, testKey)

	shops, err := repo.ListShops(context.Background())
	require.NoError(t, err)
	require.Len(t, shops, 2)

	assert.Equal(t, "1", shops[0].ID)
	require.NotNil(t, shops[0].Turnaround)
	assert.Equal(t, "약 2주", shops[0].Turnaround.Text)
	assert.Equal(t, "https://blog.example.com/1", shops[0].Turnaround.SourceURL)
	require.NotNil(t, shops[0].Process)
	assert.Equal(t, []string{"접수", "발송"}, shops[0].Process.Steps)
	require.NotNil(t, shops[0].Hours)

	assert.Equal(t, "3", shops[1].ID)
	assert.Nil(t, shops[1].Turnaround)
	assert.Nil(t, shops[1].Hours)
}

func TestListPricesAndRegions(t *testing.T) {
	repo := newTestRepository(t, testKey)

	prices, err := repo.ListPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, prices["1"], 1)
	assert.Equal(t, "비브람", prices["1"][0].Description)
	assert.Equal(t, "https://blog.example.com/p", prices["1"][0].SourceURL)

	regions, err := repo.ListRegions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Region{"1": "서울", "3": "경기"}, regions)
}

func TestCatalogFromSupabase(t *testing.T) {
	svc := publicapp.NewShopQueryService(newTestRepository(t, testKey), time.Minute, nil)

	listing := svc.Browse(context.Background(), publicapp.ShopFilter{Region: "경기"})
	require.Len(t, listing.Shops, 1)
	assert.Equal(t, "bigstone", listing.Shops[0].Slug)
	assert.Len(t, listing.Shops[0].Prices, 1)
}

func TestFindByShop(t *testing.T) {
	repo := newTestRepository(t, testKey)

	reviews, err := repo.FindByShop(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "리솔 후기", reviews[0].Title)
	assert.Equal(t, 2025, reviews[0].CreatedAt.Year())
}

func TestFindMarkup(t *testing.T) {
	repo := newTestRepository(t, testKey)

	markup, err := repo.FindMarkup(context.Background(), "sidebar")
	require.NoError(t, err)
	assert.Contains(t, markup, "https://x.example.com")

	_, err = repo.FindMarkup(context.Background(), "body")
	assert.ErrorIs(t, err, publicapp.ErrBannerNotFound)
}

func TestClientReportsAPIError(t *testing.T) {
	repo := newTestRepository(t, "wrong")

	_, err := repo.ListShops(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid API key", apiErr.Message)

	assert.Error(t, repo.Ping(context.Background()))
}

func TestClientHonoursContext(t *testing.T) {
	repo := newTestRepository(t, testKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.ListRegions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	assert.NoError(t, newTestRepository(t, testKey).Ping(context.Background()))
}
