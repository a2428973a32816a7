package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
)

type SessionHandler struct {
	log   *logger.Logger
	daily services.DailyService
}

func NewSessionHandler(log *logger.Logger, daily services.DailyService) *SessionHandler {
	return &SessionHandler{
		log:   log.With("handler", "SessionHandler"),
		daily: daily,
	}
}

// POST /api/daily/sessions
// Records an exercise session on today's record.
func (h *SessionHandler) Record(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body struct {
		ExerciseID      string `json:"exercise_id" binding:"required"`
		DurationMinutes *int   `json:"duration_minutes"`
		StressBefore    *int   `json:"stress_before"`
		StressAfter     *int   `json:"stress_after"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	exerciseID, err := uuid.Parse(body.ExerciseID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	record, err := h.daily.RecordSession(c.Request.Context(), userID, services.SessionInput{
		ExerciseID:   exerciseID,
		DurationMin:  body.DurationMinutes,
		StressBefore: body.StressBefore,
		StressAfter:  body.StressAfter,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record, "sessions": len(record.Sessions)})
}

// GET /api/daily/sessions?days=7
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessions, err := h.daily.ListSessions(c.Request.Context(), userID, queryInt(c, "days", 7))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions, "count": len(sessions)})
}
