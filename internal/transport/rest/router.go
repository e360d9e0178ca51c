package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"cliplabel/internal/service"
	"cliplabel/internal/transport/rest/handler"
	"cliplabel/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	CatalogService   *service.CatalogService
	ProjectService   *service.ProjectService
	AnswerService    *service.AnswerService
	ConsensusService *service.ConsensusService
	AccuracyService  *service.AccuracyService
	DefaultThreshold float64
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	catalogHandler := handler.NewCatalogHandler(c.CatalogService)
	projectHandler := handler.NewProjectHandler(c.ProjectService, c.AccuracyService)
	answerHandler := handler.NewAnswerHandler(c.AnswerService, c.AccuracyService)
	consensusHandler := handler.NewConsensusHandler(c.ConsensusService, c.DefaultThreshold)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require operator auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/auth/tokens", authHandler.MintToken).Methods("POST", "OPTIONS")

	adminRoutes.HandleFunc("/catalog/questions", catalogHandler.CreateQuestion).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/questions/{id}/display", catalogHandler.UpdateQuestionDisplayText).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/questions/{id}/options", catalogHandler.AppendOption).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/questions/{id}/archive", catalogHandler.ArchiveQuestion).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/groups", catalogHandler.CreateGroup).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/groups/{id}/archive", catalogHandler.ArchiveGroup).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/schemas", catalogHandler.CreateSchema).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/schemas/{id}/groups", catalogHandler.UpdateSchemaGroups).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/catalog/schemas/{id}/archive", catalogHandler.ArchiveSchema).Methods("POST", "OPTIONS")

	adminRoutes.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/projects/{id}/archive", projectHandler.ArchiveProject).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/projects/{id}/videos/{videoId}/archive", projectHandler.ArchiveVideo).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/projects/{id}/assignments", projectHandler.Assign).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/projects/{id}/assignments/{userId}", projectHandler.Revoke).Methods("DELETE", "OPTIONS")

	// User routes (require user auth; project roles checked per call)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/catalog/questions", catalogHandler.ListQuestions).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/catalog/questions/{id}", catalogHandler.GetQuestion).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/catalog/groups", catalogHandler.ListGroups).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/catalog/groups/{id}", catalogHandler.GetGroup).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/catalog/groups/{id}/questions", catalogHandler.GroupQuestions).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/catalog/schemas", catalogHandler.ListSchemas).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/catalog/schemas/{id}", catalogHandler.GetSchema).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/projects/{id}/progress", projectHandler.Progress).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/projects/{id}/accuracy", projectHandler.Accuracy).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/projects/{id}/leaderboard", projectHandler.Leaderboard).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/projects/{id}/reviews", answerHandler.ReviewsByProject).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/answers", answerHandler.SubmitAnswers).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/answers/{id}/reviews", answerHandler.ReviewsByAnswer).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/ground-truth", answerHandler.SubmitGroundTruth).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/ground-truth/overrides", answerHandler.OverrideGroundTruth).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/reviews", answerHandler.SubmitReview).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/consensus/preview", consensusHandler.Preview).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/consensus/auto-submit", consensusHandler.AutoSubmit).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
