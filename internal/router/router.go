package router

import (
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/collabhub/backend/internal/broker"
	"github.com/anonto42/collabhub/backend/internal/handlers"
	"github.com/anonto42/collabhub/backend/internal/middleware"
	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
	"github.com/anonto42/collabhub/backend/internal/services"
	"github.com/anonto42/collabhub/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Membership{},
		&models.Engagement{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	projectRepo := repositories.NewMongoProjectRepository(mgClient.Database(cfg.MongoDatabase))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	engagementRepo := repositories.NewPostgresEngagementRepository(pgdb)
	teamRepo := repositories.NewPostgresTeamRepository(pgdb)
	membershipRepo := repositories.NewPostgresMembershipRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	// --- Initialize the notification broker and services ---
	bus := broker.New(cfg.BrokerBuffer)
	notificationService := services.NewNotificationService(notificationRepo, bus)
	engagementService := services.NewEngagementService(engagementRepo, projectRepo)
	membershipService := services.NewMembershipService(membershipRepo, teamRepo, notificationService)
	heartbeat := time.Duration(cfg.HeartbeatSeconds) * time.Second

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Project routes
	projectHandler := handlers.NewProjectHandler(projectRepo, commentRepo, engagementRepo, notificationService)
	projectHandler.RegisterProjectRoutes(api)
	log.Println("Project routes configured.")

	// Engagement routes
	engagementHandler := handlers.NewEngagementHandler(engagementService, projectRepo, notificationService)
	engagementHandler.RegisterEngagementRoutes(api)
	log.Println("Engagement routes configured.")

	// Team routes
	teamHandler := handlers.NewTeamHandler(teamRepo, membershipService, userRepo)
	teamHandler.RegisterTeamRoutes(api)
	log.Println("Team routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationService, bus, heartbeat)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
