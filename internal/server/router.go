package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harmonia-app/harmonia-backend/internal/handlers"
	"github.com/harmonia-app/harmonia-backend/internal/middleware"
)

type RouterConfig struct {
	Mode                  string
	AllowedOrigins        []string
	AuthMiddleware        *middleware.AuthMiddleware
	StressHandler         *handlers.StressHandler
	WellbeingHandler      *handlers.WellbeingHandler
	MoodHandler           *handlers.MoodHandler
	RecommendationHandler *handlers.RecommendationHandler
	AlertHandler          *handlers.AlertHandler
	SessionHandler        *handlers.SessionHandler
	InsightsHandler       *handlers.InsightsHandler
	ExerciseHandler       *handlers.ExerciseHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	daily := api.Group("/daily")
	{
		daily.GET("", cfg.WellbeingHandler.Range)
		daily.GET("/today", cfg.WellbeingHandler.Today)
		daily.POST("/wellbeing", cfg.WellbeingHandler.SaveManual)
		daily.POST("/wellbeing/sync", cfg.WellbeingHandler.Sync)
		daily.POST("/mood", cfg.MoodHandler.Add)

		daily.POST("/stress/predict", cfg.StressHandler.Predict)
		daily.GET("/stress/today", cfg.StressHandler.Today)
		daily.GET("/stress/history", cfg.StressHandler.History)

		daily.GET("/recommendations", cfg.RecommendationHandler.Active)
		daily.PATCH("/recommendations/:id/complete", cfg.RecommendationHandler.Complete)

		daily.GET("/alerts", cfg.AlertHandler.Active)
		daily.PATCH("/alerts/:id/acknowledge", cfg.AlertHandler.Acknowledge)

		daily.POST("/sessions", cfg.SessionHandler.Record)
		daily.GET("/sessions", cfg.SessionHandler.List)

		daily.GET("/summary/weekly", cfg.InsightsHandler.WeeklySummary)
		daily.GET("/insights", cfg.InsightsHandler.Insights)
	}

	exercises := api.Group("/exercises")
	{
		exercises.GET("", cfg.ExerciseHandler.List)
		exercises.GET("/:id", cfg.ExerciseHandler.Get)
	}

	return router
}
