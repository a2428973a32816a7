package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
)

type AlertHandler struct {
	log    *logger.Logger
	alerts services.AlertService
}

func NewAlertHandler(log *logger.Logger, alerts services.AlertService) *AlertHandler {
	return &AlertHandler{
		log:    log.With("handler", "AlertHandler"),
		alerts: alerts,
	}
}

// GET /api/daily/alerts
// Today's unacknowledged alerts, newest first.
func (h *AlertHandler) Active(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	alerts, err := h.alerts.ActiveAlerts(c.Request.Context(), userID, time.Now())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"alerts": alerts, "count": len(alerts)})
}

// PATCH /api/daily/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	alert, err := h.alerts.Acknowledge(c.Request.Context(), userID, time.Now(), alertID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"alert": alert})
}
