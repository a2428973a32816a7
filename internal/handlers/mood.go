package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
)

type MoodHandler struct {
	log   *logger.Logger
	daily services.DailyService
}

func NewMoodHandler(log *logger.Logger, daily services.DailyService) *MoodHandler {
	return &MoodHandler{
		log:   log.With("handler", "MoodHandler"),
		daily: daily,
	}
}

// POST /api/daily/mood
// Appends a mood entry to today's record.
func (h *MoodHandler) Add(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body struct {
		MoodScore *int   `json:"mood_score" binding:"required"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	record, err := h.daily.AddMoodEntry(c.Request.Context(), userID, *body.MoodScore, body.Note)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record, "mood_entries": len(record.MoodEntries)})
}
