package repository

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// createIndex best-effort creates an index, logging instead of failing so a
// replica without index rights can still serve reads.
func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, opts *options.IndexOptions) {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		log.Printf("Warning: failed to create index on %s: %v", coll.Name(), err)
	}
}

func uniqueIndex() *options.IndexOptions {
	return options.Index().SetUnique(true)
}
