package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

var testCollections = Collections{
	Shops:   "shops",
	Prices:  "shop_prices",
	Reviews: "shop_reviews",
	Banners: "affiliate_products",
}

func newMockRepository(mt *mtest.T) *ShopRepository {
	return NewShopRepository(mt.DB, testCollections)
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func TestShopRepositoryListShops(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sorted by sortOrder then name", func(mt *mtest.T) {
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "shops"), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: first},
				{Key: "slug", Value: "shumaster"},
				{Key: "name", Value: " 슈마스터 "},
				{Key: "location", Value: bson.D{{Key: "type", Value: "Point"}, {Key: "coordinates", Value: bson.A{127.05, 37.54}}}},
				{Key: "turnaround", Value: bson.D{{Key: "text", Value: "약 2주"}}},
				{Key: "sortOrder", Value: 0},
			},
			bson.D{
				{Key: "_id", Value: second},
				{Key: "slug", Value: "bigstone"},
				{Key: "name", Value: "빅스톤"},
				{Key: "sortOrder", Value: 1},
			},
		))

		shops, err := newMockRepository(mt).ListShops(context.Background())
		require.NoError(mt, err)
		require.Len(mt, shops, 2)
		assert.Equal(mt, first.Hex(), shops[0].ID)
		assert.Equal(mt, "슈마스터", shops[0].Name)
		assert.Equal(mt, domain.LatLng{Lat: 37.54, Lng: 127.05}, shops[0].Location)
		require.NotNil(mt, shops[0].Turnaround)
		assert.Equal(mt, "bigstone", shops[1].Slug)
		assert.Nil(mt, shops[1].Turnaround)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		order := started.Command.Lookup("sort").Document()
		keys, err := order.Elements()
		require.NoError(mt, err)
		require.Len(mt, keys, 2)
		assert.Equal(mt, "sortOrder", keys[0].Key())
		assert.Equal(mt, "name", keys[1].Key())
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		_, err := newMockRepository(mt).ListShops(context.Background())
		assert.ErrorContains(mt, err, "find shops")
	})
}

func TestShopRepositoryListPrices(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("grouped by shop", func(mt *mtest.T) {
		shopA, shopB := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "shop_prices"), mtest.FirstBatch,
			bson.D{{Key: "shopId", Value: shopA}, {Key: "service", Value: "창갈이"}, {Key: "price", Value: "45,000원"}, {Key: "position", Value: 0}},
			bson.D{{Key: "shopId", Value: shopA}, {Key: "service", Value: "앞창"}, {Key: "price", Value: "25,000원"}, {Key: "position", Value: 1}},
			bson.D{{Key: "shopId", Value: shopB}, {Key: "service", Value: "창갈이"}, {Key: "price", Value: "50,000원"}, {Key: "position", Value: 0}},
		))

		prices, err := newMockRepository(mt).ListPrices(context.Background())
		require.NoError(mt, err)
		require.Len(mt, prices[shopA.Hex()], 2)
		assert.Equal(mt, "앞창", prices[shopA.Hex()][1].Service)
		assert.Len(mt, prices[shopB.Hex()], 1)
	})
}

func TestShopRepositoryListRegions(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown regions are skipped", func(mt *mtest.T) {
		seoul, tokyo, blank := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "shops"), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: seoul}, {Key: "region", Value: "서울"}},
			bson.D{{Key: "_id", Value: tokyo}, {Key: "region", Value: "도쿄"}},
			bson.D{{Key: "_id", Value: blank}},
		))

		regions, err := newMockRepository(mt).ListRegions(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, map[string]domain.Region{seoul.Hex(): "서울"}, regions)
	})
}

func TestShopRepositoryFindByShop(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reviews of one shop", func(mt *mtest.T) {
		shopID := primitive.NewObjectID()
		created := time.Date(2025, 5, 1, 1, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "shop_reviews"), mtest.FirstBatch,
			bson.D{
				{Key: "shopId", Value: shopID},
				{Key: "title", Value: "리솔 후기"},
				{Key: "url", Value: "https://blog.example.com/r"},
				{Key: "createdAt", Value: created},
			},
		))

		reviews, err := newMockRepository(mt).FindByShop(context.Background(), shopID.Hex())
		require.NoError(mt, err)
		require.Len(mt, reviews, 1)
		assert.Equal(mt, shopID.Hex(), reviews[0].ShopID)
		assert.Equal(mt, "리솔 후기", reviews[0].Title)
		assert.True(mt, created.Equal(reviews[0].CreatedAt))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		filter := started.Command.Lookup("filter").Document()
		assert.Equal(mt, shopID, filter.Lookup("shopId").ObjectID())
	})

	mt.Run("id that is not an ObjectID", func(mt *mtest.T) {
		// モックに応答が無いので、問い合わせが飛べばエラーになる。
		reviews, err := newMockRepository(mt).FindByShop(context.Background(), "shumaster")
		require.NoError(mt, err)
		assert.Empty(mt, reviews)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestShopRepositoryFindMarkup(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("active banner", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "affiliate_products"), mtest.FirstBatch,
			bson.D{{Key: "placement", Value: "sidebar"}, {Key: "html", Value: `<a href="https://x.example.com"><img src="https://x.example.com/i.png"></a>`}, {Key: "active", Value: true}},
		))

		markup, err := newMockRepository(mt).FindMarkup(context.Background(), "sidebar")
		require.NoError(mt, err)
		assert.Contains(mt, markup, "https://x.example.com")
	})

	mt.Run("no document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "affiliate_products"), mtest.FirstBatch))

		_, err := newMockRepository(mt).FindMarkup(context.Background(), "body")
		assert.ErrorIs(mt, err, application.ErrBannerNotFound)
	})

	mt.Run("empty markup", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "affiliate_products"), mtest.FirstBatch,
			bson.D{{Key: "placement", Value: "body"}, {Key: "html", Value: ""}, {Key: "active", Value: true}},
		))

		_, err := newMockRepository(mt).FindMarkup(context.Background(), "body")
		assert.ErrorIs(mt, err, application.ErrBannerNotFound)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		_, err := newMockRepository(mt).FindMarkup(context.Background(), "body")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, application.ErrBannerNotFound)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates every index", func(mt *mtest.T) {
		for i := 0; i < 5; i++ {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}

		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB, testCollections))

		var targets []string
		for _, started := range mt.GetAllStartedEvents() {
			require.Equal(mt, "createIndexes", started.CommandName)
			targets = append(targets, started.Command.Lookup("createIndexes").StringValue())
		}
		assert.Equal(mt, []string{"shops", "shops", "shop_prices", "shop_reviews", "affiliate_products"}, targets)
	})

	mt.Run("stops at the first failure", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 85, Name: "IndexOptionsConflict", Message: "conflict"}),
		)

		err := EnsureIndexes(context.Background(), mt.DB, testCollections)
		assert.ErrorContains(mt, err, "create index on shops")
		assert.Len(mt, mt.GetAllStartedEvents(), 2)
	})
}
