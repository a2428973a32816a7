package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

type ExerciseHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewExerciseHandler(log *logger.Logger, catalog services.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{
		log:     log.With("handler", "ExerciseHandler"),
		catalog: catalog,
	}
}

// GET /api/exercises?category=breathing&limit=20
func (h *ExerciseHandler) List(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	category := types.ExerciseCategory(c.Query("category"))
	exercises, err := h.catalog.List(c.Request.Context(), category, queryInt(c, "limit", 20))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"exercises": exercises, "count": len(exercises)})
}

// GET /api/exercises/:id
func (h *ExerciseHandler) Get(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	exercise, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"exercise": exercise})
}
