package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cliplabel/internal/apperr"
	"cliplabel/internal/model"
)

type SchemaRepo interface {
	Create(ctx context.Context, schema *model.Schema) error
	GetByID(ctx context.Context, id string) (*model.Schema, error)
	Update(ctx context.Context, schema *model.Schema) error
	List(ctx context.Context, activeOnly bool) ([]*model.Schema, error)
}

type schemaRepo struct {
	collection *mongo.Collection
}

// NewSchemaRepo creates the schema repository and ensures its indexes.
func NewSchemaRepo(db *mongo.Database) SchemaRepo {
	repo := &schemaRepo{collection: db.Collection("schemas")}
	createIndex(context.Background(), repo.collection, bson.D{{Key: "name", Value: 1}}, uniqueIndex())
	return repo
}

func (r *schemaRepo) Create(ctx context.Context, schema *model.Schema) error {
	if schema.ID == "" {
		schema.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	schema.CreatedAt = now
	schema.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, schema)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("schema with name %q already exists", schema.Name)
	}
	return err
}

func (r *schemaRepo) GetByID(ctx context.Context, id string) (*model.Schema, error) {
	var schema model.Schema
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&schema)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

func (r *schemaRepo) Update(ctx context.Context, schema *model.Schema) error {
	schema.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": schema.ID}, schema)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("schema with name %q already exists", schema.Name)
	}
	return err
}

func (r *schemaRepo) List(ctx context.Context, activeOnly bool) ([]*model.Schema, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isArchived"] = false
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schemas []*model.Schema
	if err := cursor.All(ctx, &schemas); err != nil {
		return nil, err
	}
	return schemas, nil
}
