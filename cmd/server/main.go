package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cliplabel/internal/cache"
	"cliplabel/internal/config"
	"cliplabel/internal/repository"
	"cliplabel/internal/service"
	"cliplabel/internal/transport/rest"
	"cliplabel/internal/verify"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories
	questionRepo := repository.NewQuestionRepo(db)
	groupRepo := repository.NewGroupRepo(db)
	schemaRepo := repository.NewSchemaRepo(db)
	projectRepo := repository.NewProjectRepo(db)
	answerRepo := repository.NewAnswerRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)

	// Initialize caches
	leaderboard := cache.NewLeaderboardCache(rdb)
	progressCache := cache.NewProgressCache(rdb)

	// Initialize verification registry
	verifiers := verify.NewRegistry()

	// Initialize services
	authSvc := service.NewAuthService(cfg)
	catalogSvc := service.NewCatalogService(questionRepo, groupRepo, schemaRepo, verifiers)
	projectSvc := service.NewProjectService(projectRepo, schemaRepo, groupRepo, questionRepo, answerRepo, progressCache)
	answerSvc := service.NewAnswerService(projectSvc, groupRepo, schemaRepo, questionRepo, answerRepo, ledgerRepo, verifiers)
	consensusSvc := service.NewConsensusService(projectSvc, answerSvc, groupRepo, questionRepo, answerRepo)
	accuracySvc := service.NewAccuracyService(projectSvc, answerRepo, ledgerRepo, leaderboard)

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		CatalogService:   catalogSvc,
		ProjectService:   projectSvc,
		AnswerService:    answerSvc,
		ConsensusService: consensusSvc,
		AccuracyService:  accuracySvc,
		DefaultThreshold: cfg.ConsensusThreshold,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Printf("Operator auth: username=%s", cfg.AdminUsername)
		log.Printf("Consensus threshold: %.2f", cfg.ConsensusThreshold)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
