package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/waymark-app/waymark-backend/internal/handlers"
	"github.com/waymark-app/waymark-backend/internal/middleware"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, firebaseAuthClient *auth.Client) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Board{},
		&models.BoardMember{},
		&models.Pin{},
		&models.PinImage{},
		&models.Tag{},
		&models.PinLike{},
		&models.SavedPin{},
		&models.BoardPin{},
		&models.BoardActivity{},
		&models.BoardComment{},
		&models.CommentReaction{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	boardRepo := repositories.NewPostgresBoardRepository(db)
	memberRepo := repositories.NewPostgresMemberRepository(db)
	pinRepo := repositories.NewPostgresPinRepository(db)
	boardPinRepo := repositories.NewPostgresBoardPinRepository(db)
	activityRepo := repositories.NewPostgresActivityRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)

	// --- Unprotected routes for session exchange ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// Read surfaces carry optional auth so anonymous access works where
	// visibility rules allow it; mutations require a session.
	public := e.Group("/api/v1", middleware.OptionalJWTAuth())
	protected := e.Group("/api/v1", middleware.JWTAuth())

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(protected)
	userHandler.RegisterPublicRoutes(public)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(protected)

	boardHandler := handlers.NewBoardHandler(boardRepo, memberRepo, boardPinRepo)
	boardHandler.RegisterBoardRoutes(public, protected)

	memberHandler := handlers.NewMemberHandler(boardRepo, memberRepo, userRepo)
	memberHandler.RegisterMemberRoutes(public, protected)

	boardPinHandler := handlers.NewBoardPinHandler(boardRepo, memberRepo, boardPinRepo, pinRepo)
	boardPinHandler.RegisterBoardPinRoutes(protected)

	pinHandler := handlers.NewPinHandler(pinRepo, boardRepo, memberRepo)
	pinHandler.RegisterPinRoutes(public, protected)

	feedHandler := handlers.NewFeedHandler(pinRepo, followRepo)
	feedHandler.RegisterFeedRoutes(public)

	commentHandler := handlers.NewCommentHandler(commentRepo, boardRepo, memberRepo)
	commentHandler.RegisterCommentRoutes(public, protected)

	analyticsHandler := handlers.NewAnalyticsHandler(boardRepo, memberRepo, boardPinRepo, activityRepo)
	analyticsHandler.RegisterAnalyticsRoutes(public)

	log.Println("All routes configured.")
}
