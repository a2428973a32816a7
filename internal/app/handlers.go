package app

import (
	"github.com/harmonia-app/harmonia-backend/internal/handlers"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
)

type Handlers struct {
	Stress         *handlers.StressHandler
	Wellbeing      *handlers.WellbeingHandler
	Mood           *handlers.MoodHandler
	Recommendation *handlers.RecommendationHandler
	Alert          *handlers.AlertHandler
	Session        *handlers.SessionHandler
	Insights       *handlers.InsightsHandler
	Exercise       *handlers.ExerciseHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Stress:         handlers.NewStressHandler(log, serviceset.Prediction, serviceset.Analytics),
		Wellbeing:      handlers.NewWellbeingHandler(log, serviceset.Daily),
		Mood:           handlers.NewMoodHandler(log, serviceset.Daily),
		Recommendation: handlers.NewRecommendationHandler(log, serviceset.Daily),
		Alert:          handlers.NewAlertHandler(log, serviceset.Alerts),
		Session:        handlers.NewSessionHandler(log, serviceset.Daily),
		Insights:       handlers.NewInsightsHandler(log, serviceset.Analytics),
		Exercise:       handlers.NewExerciseHandler(log, serviceset.Catalog),
	}
}
