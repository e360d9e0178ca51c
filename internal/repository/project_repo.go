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

type ProjectRepo interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	SetMode(ctx context.Context, id string, mode model.ProjectMode) error
	List(ctx context.Context, activeOnly bool) ([]*model.Project, error)
}

type projectRepo struct {
	collection *mongo.Collection
}

// NewProjectRepo creates the project repository and ensures its indexes.
func NewProjectRepo(db *mongo.Database) ProjectRepo {
	repo := &projectRepo{collection: db.Collection("projects")}
	createIndex(context.Background(), repo.collection, bson.D{{Key: "name", Value: 1}}, uniqueIndex())
	return repo
}

func (r *projectRepo) Create(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		project.ID = primitive.NewObjectID().Hex()
	}
	if project.Mode == "" {
		project.Mode = model.ModeAnnotation
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, project)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("project with name %q already exists", project.Name)
	}
	return err
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) Update(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("project with name %q already exists", project.Name)
	}
	return err
}

func (r *projectRepo) SetMode(ctx context.Context, id string, mode model.ProjectMode) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"mode": mode, "updatedAt": time.Now()},
	})
	return err
}

func (r *projectRepo) List(ctx context.Context, activeOnly bool) ([]*model.Project, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isArchived"] = false
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var projects []*model.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
