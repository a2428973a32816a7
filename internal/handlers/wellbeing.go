package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

type WellbeingHandler struct {
	log   *logger.Logger
	daily services.DailyService
}

func NewWellbeingHandler(log *logger.Logger, daily services.DailyService) *WellbeingHandler {
	return &WellbeingHandler{
		log:   log.With("handler", "WellbeingHandler"),
		daily: daily,
	}
}

type wellbeingRequest struct {
	SleepHours *float64 `json:"sleep_hours"`
	Steps      *int     `json:"steps"`
	Source     string   `json:"source"`
	Date       string   `json:"date"`
}

// POST /api/daily/wellbeing/sync
// Device-originated sync. Date defaults to today; merge is field-wise.
func (h *WellbeingHandler) Sync(c *gin.Context) {
	h.save(c, types.SourceGoogleFit)
}

// POST /api/daily/wellbeing
// Manual entry from the app.
func (h *WellbeingHandler) SaveManual(c *gin.Context) {
	h.save(c, types.SourceManual)
}

func (h *WellbeingHandler) save(c *gin.Context, defaultSource types.DataSource) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body wellbeingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if body.SleepHours == nil && body.Steps == nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", apperrors.ErrInvalidArgument)
		return
	}

	day := time.Now()
	if body.Date != "" {
		parsed, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		day = parsed
	}

	source := defaultSource
	if body.Source != "" {
		source = types.DataSource(body.Source)
	}

	record, err := h.daily.SyncWellbeing(c.Request.Context(), userID, day, services.WellbeingInput{
		SleepHours: body.SleepHours,
		Steps:      body.Steps,
		Source:     source,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record})
}

// GET /api/daily/today
func (h *WellbeingHandler) Today(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	record, err := h.daily.Today(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record})
}

// GET /api/daily?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=30
func (h *WellbeingHandler) Range(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		to = &parsed
	}
	records, err := h.daily.Range(c.Request.Context(), userID, from, to, queryInt(c, "limit", 30))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"records": records, "count": len(records)})
}
