package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
)

type InsightsHandler struct {
	log       *logger.Logger
	analytics services.AnalyticsService
}

func NewInsightsHandler(log *logger.Logger, analytics services.AnalyticsService) *InsightsHandler {
	return &InsightsHandler{
		log:       log.With("handler", "InsightsHandler"),
		analytics: analytics,
	}
}

// GET /api/daily/summary/weekly?week_start=YYYY-MM-DD
func (h *InsightsHandler) WeeklySummary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var weekStart *time.Time
	if raw := c.Query("week_start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		weekStart = &parsed
	}
	summary, err := h.analytics.WeeklySummary(c.Request.Context(), userID, weekStart)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

// GET /api/daily/insights?days=30
func (h *InsightsHandler) Insights(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	insights, err := h.analytics.Insights(c.Request.Context(), userID, queryInt(c, "days", 30))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"insights": insights})
}
