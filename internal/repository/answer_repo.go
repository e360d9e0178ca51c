package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cliplabel/internal/apperr"
	"cliplabel/internal/model"
)

type AnswerRepo interface {
	// WithTransaction runs fn inside a mongo transaction. Every repository
	// call made with the callback's context joins the same transaction, so
	// a group submission's row upserts commit or roll back together.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	UpsertAnswer(ctx context.Context, answer *model.Answer) error
	UpsertGroundTruth(ctx context.Context, answer *model.Answer) (*model.Answer, error)
	GetByID(ctx context.Context, id string) (*model.Answer, error)
	GetGroundTruth(ctx context.Context, videoID, questionID, projectID string) (*model.Answer, error)
	ListGroundTruth(ctx context.Context, projectID string, videoID string, questionIDs []string) ([]*model.Answer, error)
	ListGroundTruthByProject(ctx context.Context, projectID string) ([]*model.Answer, error)
	ListAnnotatorAnswers(ctx context.Context, projectID string) ([]*model.Answer, error)
	ListVotes(ctx context.Context, videoID, projectID string, questionIDs, userIDs []string) ([]*model.Answer, error)
}

type answerRepo struct {
	collection *mongo.Collection
	client     *mongo.Client
}

// NewAnswerRepo creates the answer repository and ensures the uniqueness
// indexes that close races between concurrent submitters: one partial unique
// index per annotator key and one per ground-truth key.
func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	repo := &answerRepo{
		collection: db.Collection("answers"),
		client:     db.Client(),
	}

	ctx := context.Background()
	createIndex(ctx, repo.collection,
		bson.D{{Key: "videoId", Value: 1}, {Key: "questionId", Value: 1}, {Key: "projectId", Value: 1}, {Key: "userId", Value: 1}},
		uniqueIndex().SetPartialFilterExpression(bson.M{"isGroundTruth": false}))
	createIndex(ctx, repo.collection,
		bson.D{{Key: "videoId", Value: 1}, {Key: "questionId", Value: 1}, {Key: "projectId", Value: 1}},
		uniqueIndex().SetPartialFilterExpression(bson.M{"isGroundTruth": true}))
	createIndex(ctx, repo.collection, bson.D{{Key: "projectId", Value: 1}}, options.Index())

	return repo
}

func (r *answerRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("concurrent write on the same answer key, retry the submission")
	}
	return err
}

// UpsertAnswer writes the per-user answer slot. The key fields and creation
// timestamp are set only on insert; resubmission overwrites value, confidence
// and notes in place.
func (r *answerRepo) UpsertAnswer(ctx context.Context, answer *model.Answer) error {
	now := time.Now()
	filter := bson.M{
		"videoId":       answer.VideoID,
		"questionId":    answer.QuestionID,
		"projectId":     answer.ProjectID,
		"userId":        answer.UserID,
		"isGroundTruth": false,
	}
	update := bson.M{
		"$set": bson.M{
			"value":           answer.Value,
			"confidenceScore": answer.ConfidenceScore,
			"notes":           answer.Notes,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID().Hex(),
			"videoId":       answer.VideoID,
			"questionId":    answer.QuestionID,
			"projectId":     answer.ProjectID,
			"userId":        answer.UserID,
			"isGroundTruth": false,
			"createdAt":     now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("concurrent submission for the same answer key")
	}
	return err
}

// UpsertGroundTruth writes the single ground-truth slot and returns the row
// after the write. ReviewerID sticks from the initial commit; AttributedTo
// always tracks the last writer.
func (r *answerRepo) UpsertGroundTruth(ctx context.Context, answer *model.Answer) (*model.Answer, error) {
	now := time.Now()
	filter := bson.M{
		"videoId":       answer.VideoID,
		"questionId":    answer.QuestionID,
		"projectId":     answer.ProjectID,
		"isGroundTruth": true,
	}
	update := bson.M{
		"$set": bson.M{
			"value":        answer.Value,
			"notes":        answer.Notes,
			"attributedTo": answer.AttributedTo,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID().Hex(),
			"videoId":       answer.VideoID,
			"questionId":    answer.QuestionID,
			"projectId":     answer.ProjectID,
			"isGroundTruth": true,
			"reviewerId":    answer.ReviewerID,
			"createdAt":     now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var written model.Answer
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&written)
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperr.Conflict("concurrent ground-truth write for the same key")
	}
	if err != nil {
		return nil, err
	}
	return &written, nil
}

func (r *answerRepo) GetByID(ctx context.Context, id string) (*model.Answer, error) {
	var answer model.Answer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&answer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepo) GetGroundTruth(ctx context.Context, videoID, questionID, projectID string) (*model.Answer, error) {
	var answer model.Answer
	err := r.collection.FindOne(ctx, bson.M{
		"videoId":       videoID,
		"questionId":    questionID,
		"projectId":     projectID,
		"isGroundTruth": true,
	}).Decode(&answer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepo) ListGroundTruth(ctx context.Context, projectID string, videoID string, questionIDs []string) ([]*model.Answer, error) {
	return r.find(ctx, bson.M{
		"projectId":     projectID,
		"videoId":       videoID,
		"questionId":    bson.M{"$in": questionIDs},
		"isGroundTruth": true,
	})
}

func (r *answerRepo) ListGroundTruthByProject(ctx context.Context, projectID string) ([]*model.Answer, error) {
	return r.find(ctx, bson.M{"projectId": projectID, "isGroundTruth": true})
}

func (r *answerRepo) ListAnnotatorAnswers(ctx context.Context, projectID string) ([]*model.Answer, error) {
	return r.find(ctx, bson.M{"projectId": projectID, "isGroundTruth": false})
}

// ListVotes returns the annotator answers feeding a consensus computation,
// restricted to the given questions and users.
func (r *answerRepo) ListVotes(ctx context.Context, videoID, projectID string, questionIDs, userIDs []string) ([]*model.Answer, error) {
	return r.find(ctx, bson.M{
		"videoId":       videoID,
		"projectId":     projectID,
		"questionId":    bson.M{"$in": questionIDs},
		"userId":        bson.M{"$in": userIDs},
		"isGroundTruth": false,
	})
}

func (r *answerRepo) find(ctx context.Context, filter bson.M) ([]*model.Answer, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []*model.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
