package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/handlers"
	"github.com/gitfolio/gitfolio/internal/middleware"
	"github.com/gitfolio/gitfolio/internal/repositories"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/config"
	"github.com/gitfolio/gitfolio/pkg/database"
	"github.com/gitfolio/gitfolio/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Server.Mode)

	logger.Init()

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	profileCacheRepo := repositories.NewProfileCacheRepository(database.DB)
	githubService := services.NewGitHubService(config.AppConfig.GitHub.Token)
	profileService := services.NewProfileService(profileCacheRepo, githubService, config.AppConfig.Cache.TTLHours)
	analysisService := services.NewAnalysisService(config.AppConfig.AI)

	// Initialize router
	router := gin.Default()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	setupRoutes(router, profileService, analysisService)

	// Setup server
	server := &http.Server{
		Addr:    ":" + config.AppConfig.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	log.Println("Server stopped")
}

func setupRoutes(router *gin.Engine, profileService *services.ProfileService, analysisService *services.AnalysisService) {
	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(profileService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	healthHandler := handlers.NewHealthHandler()

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	{
		api.POST("/profile", profileHandler.GetProfile)
		api.POST("/analyze", analysisHandler.Analyze)
	}
}
