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

type QuestionRepo interface {
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error)
	GetByText(ctx context.Context, text string) (*model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	List(ctx context.Context, activeOnly bool) ([]*model.Question, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

// NewQuestionRepo creates the question repository and ensures its indexes.
func NewQuestionRepo(db *mongo.Database) QuestionRepo {
	repo := &questionRepo{collection: db.Collection("questions")}
	createIndex(context.Background(), repo.collection, bson.D{{Key: "text", Value: 1}}, uniqueIndex())
	return repo
}

func (r *questionRepo) Create(ctx context.Context, question *model.Question) error {
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, question)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("question with text %q already exists", question.Text)
	}
	return err
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetByText(ctx context.Context, text string) (*model.Question, error) {
	var question model.Question
	err := r.collection.FindOne(ctx, bson.M{"text": text}).Decode(&question)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) Update(ctx context.Context, question *model.Question) error {
	question.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": question.ID}, question)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("question with text %q already exists", question.Text)
	}
	return err
}

func (r *questionRepo) List(ctx context.Context, activeOnly bool) ([]*model.Question, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isArchived"] = false
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
