package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
)

type RecommendationHandler struct {
	log   *logger.Logger
	daily services.DailyService
}

func NewRecommendationHandler(log *logger.Logger, daily services.DailyService) *RecommendationHandler {
	return &RecommendationHandler{
		log:   log.With("handler", "RecommendationHandler"),
		daily: daily,
	}
}

// GET /api/daily/recommendations
// Today's uncompleted recommendations.
func (h *RecommendationHandler) Active(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	recs, err := h.daily.ActiveRecommendations(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recommendations": recs, "count": len(recs)})
}

// PATCH /api/daily/recommendations/:id/complete
func (h *RecommendationHandler) Complete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rec, err := h.daily.CompleteRecommendation(c.Request.Context(), userID, recID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recommendation": rec})
}
