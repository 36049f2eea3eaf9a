package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repository relies on. Slugs are unique.
func EnsureIndexes(ctx context.Context, db *mongo.Database, names Collections) error {
	specs := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{names.Shops, mongo.IndexModel{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{names.Shops, mongo.IndexModel{Keys: bson.D{{Key: "location", Value: "2dsphere"}}}},
		{names.Prices, mongo.IndexModel{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "position", Value: 1}}}},
		{names.Reviews, mongo.IndexModel{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{names.Banners, mongo.IndexModel{Keys: bson.D{{Key: "placement", Value: 1}}}},
	}
	for _, spec := range specs {
		if _, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model); err != nil {
			return fmt.Errorf("create index on %s: %w", spec.collection, err)
		}
	}
	return nil
}
