package app

import (
	"github.com/gin-gonic/gin"

	"github.com/harmonia-app/harmonia-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Mode:                  cfg.Mode,
		AllowedOrigins:        cfg.AllowedOrigins,
		AuthMiddleware:        mw.Auth,
		StressHandler:         handlerset.Stress,
		WellbeingHandler:      handlerset.Wellbeing,
		MoodHandler:           handlerset.Mood,
		RecommendationHandler: handlerset.Recommendation,
		AlertHandler:          handlerset.Alert,
		SessionHandler:        handlerset.Session,
		InsightsHandler:       handlerset.Insights,
		ExerciseHandler:       handlerset.Exercise,
	})
}
