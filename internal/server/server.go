package server

import (
	"context"
	"log"
	"net/http"

	"algoprep/configs"
	"algoprep/internal/dbs"
	"algoprep/internal/handlers"
	"algoprep/internal/logger"
	"algoprep/internal/middlewares"
	"algoprep/internal/repositories"
	"algoprep/internal/services"
	"algoprep/internal/workerpool"

	"github.com/gin-gonic/gin"
)

func StartServer() {
	logger.InitLogger()
	defer logger.SyncLogger()

	config := configs.LoadConfig()

	db, err := dbs.Init(config)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := dbs.InitRedis(ctx, config); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer dbs.CloseRedis()

	cache := services.NewRedisCache(dbs.RedisClient)
	identity := services.NewIdentityService(config.JWTSecret, config.IdentityAdminURL, config.IdentityTimeout)

	problemRepo := repositories.NewProblemRepository(db, cache)
	completionRepo := repositories.NewCompletionRepository(db)
	userRepo := repositories.NewUserRepository(db)

	pool := workerpool.NewProgressWorkerPool(config.NumberOfWorkers, dbs.RedisClient,
		config.ProgressStream, config.ProgressGroup, completionRepo, cache)
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}
	defer pool.Stop()

	var limiter middlewares.Limiter
	if config.RateLimitBackend == "redis" {
		limiter = middlewares.NewRedisLimiter(dbs.RedisClient,
			config.ReadLimitPerMin, config.WriteLimitPerMin, config.RateLimitWindow)
	} else {
		limiter = middlewares.NewMemoryLimiter(
			config.ReadLimitPerMin, config.WriteLimitPerMin, config.RateLimitWindow)
	}

	problemHandler := handlers.NewProblemHandler(problemRepo)
	notifier := workerpool.NewProgressNotifier(dbs.RedisClient, config.ProgressStream)
	completionHandler := handlers.NewCompletionHandler(completionRepo, notifier)
	userHandler := handlers.NewUserHandler(userRepo, completionRepo, identity, cache)

	router := gin.New()
	router.Use(middlewares.ErrorHandlerMiddleware())

	requireAuth := middlewares.RequireAuth(identity)
	optionalAuth := middlewares.OptionalAuth(identity)
	readLimit := middlewares.RateLimit(limiter, middlewares.ReadBucket)
	writeLimit := middlewares.RateLimit(limiter, middlewares.WriteBucket)
	adminKey := middlewares.RequireAdminKey(config.AdminSecret)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Catalog reads
	router.GET("/problems", optionalAuth, readLimit, problemHandler.GetProblems)
	router.GET("/problems/roadmap/:roadmap", problemHandler.GetProblemsByRoadmap)
	router.GET("/problems/:id", readLimit, problemHandler.GetProblemByID)
	router.GET("/api/roadmap-progress", userHandler.GetRoadmapProgress)

	// Per-user progress
	router.GET("/completed-problems", requireAuth, readLimit, completionHandler.GetCompletedProblems)
	router.POST("/log-user", requireAuth, writeLimit, userHandler.LogUser)
	router.POST("/api/toggle-complete", optionalAuth, completionHandler.ToggleComplete)
	router.POST("/batch-toggle-complete", requireAuth, writeLimit, completionHandler.BatchToggleComplete)
	router.POST("/reset-progress", requireAuth, writeLimit, completionHandler.ResetProgress)
	router.POST("/delete-user", requireAuth, writeLimit, userHandler.DeleteUser)

	// Admin catalog writes
	router.PUT("/problems/:id", adminKey, problemHandler.UpdateProblem)
	router.DELETE("/problems/:id", adminKey, problemHandler.DeleteProblem)
	router.POST("/admin/post", adminKey, problemHandler.CreateProblem)

	port := ":" + config.ServerPort
	log.Printf("Starting server on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
