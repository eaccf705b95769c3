package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/app"
	iauth "github.com/sergiovidalh/recluta/internal/auth"
	"github.com/sergiovidalh/recluta/internal/handlers"
	"github.com/sergiovidalh/recluta/internal/middleware"
	"github.com/sergiovidalh/recluta/internal/realtime"
	"github.com/sergiovidalh/recluta/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, hub *realtime.Hub, hiring *services.HiringService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if hub == nil {
		return nil, fmt.Errorf("realtime hub must be provided")
	}
	if hiring == nil {
		return nil, fmt.Errorf("hiring service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	if cfg.Monitoring.Prometheus.Enabled {
		r.Use(middleware.Metrics())
	}

	// Health endpoint (public)
	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}

	authHandler, err := handlers.NewAuthHandler(db, jwt)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}

	// Protected routes
	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)

	stageHandler, err := handlers.NewStageHandler(db)
	if err != nil {
		return nil, err
	}
	registerStageRoutes(api, stageHandler)

	directoryHandler, err := handlers.NewDirectoryHandler(db)
	if err != nil {
		return nil, err
	}
	registerDirectoryRoutes(api, directoryHandler)

	applicationHandler, err := handlers.NewApplicationHandler(db, hiring)
	if err != nil {
		return nil, err
	}
	registerApplicationRoutes(api, applicationHandler)

	interviewHandler, err := handlers.NewInterviewHandler(db, hiring)
	if err != nil {
		return nil, err
	}
	registerInterviewRoutes(api, interviewHandler)

	notificationHandler := handlers.NewNotificationHandler(hiring.Notifications())
	registerNotificationRoutes(api, notificationHandler)

	// Realtime websocket entry point. Authenticates via query token because
	// browsers cannot set headers on upgrade requests.
	realtimeHandler := handlers.NewRealtimeHandler(hub, jwt,
		realtime.StreamNotifications, realtime.StreamPipeline)
	r.GET("/api/ws", realtimeHandler.Stream)
	r.GET("/api/ws/:stream", realtimeHandler.Stream)

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
