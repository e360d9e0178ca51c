package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cliplabel/internal/model"
)

// LedgerRepo holds the two append-only audit collections: the override log
// that backs reviewer accuracy, and the review decisions on annotator
// answers.
type LedgerRepo interface {
	AppendOverride(ctx context.Context, entry *model.OverrideEntry) error
	ListOverridesByProject(ctx context.Context, projectID string) ([]*model.OverrideEntry, error)
	CreateReview(ctx context.Context, review *model.Review) error
	ListReviewsByAnswer(ctx context.Context, answerID string) ([]*model.Review, error)
	ListReviewsByProject(ctx context.Context, projectID string) ([]*model.Review, error)
}

type ledgerRepo struct {
	overrides *mongo.Collection
	reviews   *mongo.Collection
}

// NewLedgerRepo creates the ledger repository and ensures its indexes.
func NewLedgerRepo(db *mongo.Database) LedgerRepo {
	repo := &ledgerRepo{
		overrides: db.Collection("override_log"),
		reviews:   db.Collection("reviews"),
	}

	ctx := context.Background()
	createIndex(ctx, repo.overrides, bson.D{{Key: "projectId", Value: 1}}, options.Index())
	createIndex(ctx, repo.overrides, bson.D{{Key: "answerId", Value: 1}}, options.Index())
	createIndex(ctx, repo.reviews, bson.D{{Key: "answerId", Value: 1}}, options.Index())
	createIndex(ctx, repo.reviews, bson.D{{Key: "projectId", Value: 1}}, options.Index())

	return repo
}

func (r *ledgerRepo) AppendOverride(ctx context.Context, entry *model.OverrideEntry) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.overrides.InsertOne(ctx, entry)
	return err
}

func (r *ledgerRepo) ListOverridesByProject(ctx context.Context, projectID string) ([]*model.OverrideEntry, error) {
	cursor, err := r.overrides.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*model.OverrideEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepo) CreateReview(ctx context.Context, review *model.Review) error {
	if review.ID == "" {
		review.ID = primitive.NewObjectID().Hex()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	_, err := r.reviews.InsertOne(ctx, review)
	return err
}

func (r *ledgerRepo) ListReviewsByAnswer(ctx context.Context, answerID string) ([]*model.Review, error) {
	return r.findReviews(ctx, bson.M{"answerId": answerID})
}

func (r *ledgerRepo) ListReviewsByProject(ctx context.Context, projectID string) ([]*model.Review, error) {
	return r.findReviews(ctx, bson.M{"projectId": projectID})
}

func (r *ledgerRepo) findReviews(ctx context.Context, filter bson.M) ([]*model.Review, error) {
	cursor, err := r.reviews.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []*model.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
