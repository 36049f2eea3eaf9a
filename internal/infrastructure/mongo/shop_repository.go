package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// Collections names the four collections the repository reads.
type Collections struct {
	Shops   string
	Prices  string
	Reviews string
	Banners string
}

// ShopRepository implements the public read ports using MongoDB.
type ShopRepository struct {
	client  *mongo.Client
	shops   *mongo.Collection
	prices  *mongo.Collection
	reviews *mongo.Collection
	banners *mongo.Collection
}

// NewShopRepository creates a new Mongo-backed shop repository.
func NewShopRepository(db *mongo.Database, names Collections) *ShopRepository {
	return &ShopRepository{
		client:  db.Client(),
		shops:   db.Collection(names.Shops),
		prices:  db.Collection(names.Prices),
		reviews: db.Collection(names.Reviews),
		banners: db.Collection(names.Banners),
	}
}

var (
	_ application.ShopRepository   = (*ShopRepository)(nil)
	_ application.ReviewRepository = (*ShopRepository)(nil)
	_ application.BannerRepository = (*ShopRepository)(nil)
)

// ListShops returns every shop ordered by sortOrder then name. Region is left
// empty; ListRegions supplies it.
func (r *ShopRepository) ListShops(ctx context.Context) ([]domain.Shop, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.shops.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find shops: %w", err)
	}
	defer cursor.Close(ctx)

	shops := make([]domain.Shop, 0)
	for cursor.Next(ctx) {
		var doc ShopDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode shop: %w", err)
		}
		shops = append(shops, mapShopDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return shops, nil
}

// ListPrices groups shop_prices by shop id in position order.
func (r *ShopRepository) ListPrices(ctx context.Context) (map[string][]domain.PriceItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "shopId", Value: 1}, {Key: "position", Value: 1}})
	cursor, err := r.prices.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find prices: %w", err)
	}
	defer cursor.Close(ctx)

	out := make(map[string][]domain.PriceItem)
	for cursor.Next(ctx) {
		var doc PriceDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode price: %w", err)
		}
		id := doc.ShopID.Hex()
		out[id] = append(out[id], domain.NewPriceItem(doc.Service, doc.Price, doc.Description))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRegions projects the region field of every shop.
func (r *ShopRepository) ListRegions(ctx context.Context) (map[string]domain.Region, error) {
	opts := options.Find().SetProjection(bson.M{"region": 1})
	cursor, err := r.shops.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find regions: %w", err)
	}
	defer cursor.Close(ctx)

	out := make(map[string]domain.Region)
	for cursor.Next(ctx) {
		var doc struct {
			ID     primitive.ObjectID `bson:"_id"`
			Region string             `bson:"region"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode region: %w", err)
		}
		if region, ok := domain.ParseRegion(doc.Region); ok {
			out[doc.ID.Hex()] = region
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByShop returns reviews of one shop, newest first. An id that is not an
// ObjectID cannot match anything.
func (r *ShopRepository) FindByShop(ctx context.Context, shopID string) ([]domain.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return []domain.Review{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.reviews.Find(ctx, bson.M{"shopId": objectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode review: %w", err)
		}
		reviews = append(reviews, mapReviewDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// FindMarkup returns the active affiliate markup for placement.
func (r *ShopRepository) FindMarkup(ctx context.Context, placement string) (string, error) {
	var doc BannerDocument
	err := r.banners.FindOne(ctx, bson.M{"placement": placement, "active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", application.ErrBannerNotFound
		}
		return "", fmt.Errorf("find banner: %w", err)
	}
	if doc.HTML == "" {
		return "", application.ErrBannerNotFound
	}
	return doc.HTML, nil
}

// Ping は MongoDB への疎通確認を行う。
func (r *ShopRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
