package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

func TestSnapshotsWithoutClientMiss(t *testing.T) {
	s := NewSnapshots(nil, Options{}, nil)
	assert.False(t, s.Enabled())

	s.StoreCatalog(context.Background(), []domain.Shop{{ID: "1"}})
	_, ok := s.LoadCatalog(context.Background())
	assert.False(t, ok)

	s.StoreReviews(context.Background(), "1", []domain.Review{{Title: "x"}})
	_, ok = s.LoadReviews(context.Background(), "1")
	assert.False(t, ok)
}

func TestSnapshotsUnreachableServerMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewSnapshots(rdb, Options{Prefix: "test"}, nil)
	assert.True(t, s.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.StoreCatalog(ctx, []domain.Shop{{ID: "1"}})
	_, ok := s.LoadCatalog(ctx)
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	s := NewSnapshots(nil, Options{Prefix: "re"}, nil)
	assert.Equal(t, "re:catalog:v1", s.catalogKey())
	assert.Equal(t, "re:reviews:v1:42", s.reviewKey("42"))
}

func TestNewClientWithoutAddr(t *testing.T) {
	assert.Nil(t, NewClient(context.Background(), Options{}, nil))
}
