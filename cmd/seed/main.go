package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cliplabel/internal/cache"
	"cliplabel/internal/config"
	"cliplabel/internal/model"
	"cliplabel/internal/repository"
	"cliplabel/internal/service"
	"cliplabel/internal/verify"
)

// Seeds a small demo catalog and one project so the API is usable right
// after first boot.
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)

	questionRepo := repository.NewQuestionRepo(db)
	groupRepo := repository.NewGroupRepo(db)
	schemaRepo := repository.NewSchemaRepo(db)
	projectRepo := repository.NewProjectRepo(db)
	answerRepo := repository.NewAnswerRepo(db)

	verifiers := verify.NewRegistry()
	catalogSvc := service.NewCatalogService(questionRepo, groupRepo, schemaRepo, verifiers)
	projectSvc := service.NewProjectService(projectRepo, schemaRepo, groupRepo, questionRepo, answerRepo, cache.NoopProgressCache())

	countQ := &model.Question{
		Text:          "How many people are visible?",
		DisplayText:   "People count",
		Type:          model.QuestionTypeSingle,
		Options:       []string{"0", "1", "2", "3+"},
		DisplayValues: []string{"none", "one", "two", "three or more"},
		OptionWeights: []float64{1.0, 1.0, 1.0, 1.0},
		DefaultOption: "0",
	}
	if err := catalogSvc.CreateQuestion(ctx, countQ); err != nil {
		log.Fatalf("Failed to create count question: %v", err)
	}

	sceneQ := &model.Question{
		Text:        "Describe the scene",
		DisplayText: "Scene description",
		Type:        model.QuestionTypeDescription,
	}
	if err := catalogSvc.CreateQuestion(ctx, sceneQ); err != nil {
		log.Fatalf("Failed to create scene question: %v", err)
	}

	group := &model.QuestionGroup{
		Title:                "scene-basics",
		DisplayTitle:         "Scene basics",
		Description:          "Headcount and a free-form scene description.",
		IsReusable:           true,
		VerificationFunction: "all_non_empty",
		QuestionIDs:          []string{countQ.ID, sceneQ.ID},
	}
	if err := catalogSvc.CreateGroup(ctx, group); err != nil {
		log.Fatalf("Failed to create group: %v", err)
	}

	schema := &model.Schema{
		Name:             "demo-scene-schema",
		QuestionGroupIDs: []string{group.ID},
	}
	if err := catalogSvc.CreateSchema(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	project, err := projectSvc.Create(ctx, "demo-project", schema.ID, []string{"clip_001", "clip_002", "clip_003"})
	if err != nil {
		log.Fatalf("Failed to create project: %v", err)
	}

	assignments := []struct {
		userID string
		role   model.Role
		weight float64
	}{
		{"annotator_alice", model.RoleAnnotator, 1.0},
		{"annotator_bob", model.RoleAnnotator, 1.0},
		{"annotator_senior", model.RoleAnnotator, 2.0},
		{"model_headcount_v1", model.RoleModel, 0},
		{"reviewer_rita", model.RoleReviewer, 0},
	}
	for _, a := range assignments {
		if err := projectSvc.Assign(ctx, project.ID, a.userID, a.role, a.weight); err != nil {
			log.Fatalf("Failed to assign %s: %v", a.userID, err)
		}
	}

	fmt.Printf("Seeded project %q (%s) with schema %q and %d assignments\n",
		project.Name, project.ID, schema.Name, len(assignments))
}
