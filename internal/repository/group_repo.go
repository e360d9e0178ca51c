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

type GroupRepo interface {
	Create(ctx context.Context, group *model.QuestionGroup) error
	GetByID(ctx context.Context, id string) (*model.QuestionGroup, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.QuestionGroup, error)
	GetByTitle(ctx context.Context, title string) (*model.QuestionGroup, error)
	Update(ctx context.Context, group *model.QuestionGroup) error
	List(ctx context.Context, activeOnly bool) ([]*model.QuestionGroup, error)
}

type groupRepo struct {
	collection *mongo.Collection
}

// NewGroupRepo creates the question-group repository and ensures its indexes.
func NewGroupRepo(db *mongo.Database) GroupRepo {
	repo := &groupRepo{collection: db.Collection("question_groups")}
	createIndex(context.Background(), repo.collection, bson.D{{Key: "title", Value: 1}}, uniqueIndex())
	return repo
}

func (r *groupRepo) Create(ctx context.Context, group *model.QuestionGroup) error {
	if group.ID == "" {
		group.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, group)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("question group with title %q already exists", group.Title)
	}
	return err
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.QuestionGroup, error) {
	var group model.QuestionGroup
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.QuestionGroup, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []*model.QuestionGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepo) GetByTitle(ctx context.Context, title string) (*model.QuestionGroup, error) {
	var group model.QuestionGroup
	err := r.collection.FindOne(ctx, bson.M{"title": title}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) Update(ctx context.Context, group *model.QuestionGroup) error {
	group.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": group.ID}, group)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("question group with title %q already exists", group.Title)
	}
	return err
}

func (r *groupRepo) List(ctx context.Context, activeOnly bool) ([]*model.QuestionGroup, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isArchived"] = false
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []*model.QuestionGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
