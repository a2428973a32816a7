package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
)

type StressHandler struct {
	log        *logger.Logger
	prediction services.PredictionService
	analytics  services.AnalyticsService
}

func NewStressHandler(log *logger.Logger, prediction services.PredictionService, analytics services.AnalyticsService) *StressHandler {
	return &StressHandler{
		log:        log.With("handler", "StressHandler"),
		prediction: prediction,
		analytics:  analytics,
	}
}

// POST /api/daily/stress/predict
// Runs the prediction pipeline for today. Always returns a usable result.
func (h *StressHandler) Predict(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body struct {
		ForceRefresh bool `json:"force_refresh"`
	}
	// An empty body means default options.
	_ = c.ShouldBindJSON(&body)

	result := h.prediction.ComputePrediction(c.Request.Context(), userID, time.Now(), body.ForceRefresh)
	RespondOK(c, result)
}

// GET /api/daily/stress/today
func (h *StressHandler) Today(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := h.prediction.Today(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/daily/stress/history?days=30
func (h *StressHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	days := queryInt(c, "days", 30)
	history, stats, err := h.analytics.StressHistory(c.Request.Context(), userID, days)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "stats": stats})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
