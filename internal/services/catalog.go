package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// CatalogService fronts the exercise catalog. The recommendation selector
// only ever sees this interface, so a remote catalog deployment can replace
// the local table without touching the selector.
type CatalogService interface {
	// PickForLevel returns one active catalog item matching the category
	// associated with a stress level.
	PickForLevel(ctx context.Context, level types.StressLevel) (*types.Exercise, error)
	List(ctx context.Context, category types.ExerciseCategory, limit int) ([]*types.Exercise, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Exercise, error)
	// EnsureSeeded installs the default catalog on an empty table.
	EnsureSeeded(ctx context.Context) error
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	exerciseRepo repos.ExerciseRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, exerciseRepo repos.ExerciseRepo) CatalogService {
	return &catalogService{
		db:           db,
		log:          log.With("service", "CatalogService"),
		exerciseRepo: exerciseRepo,
	}
}

// categoryForLevel mirrors the enrichment mapping of the recommendation
// rules: calm levels get mindfulness, elevated ones breathing or movement.
func categoryForLevel(level types.StressLevel) types.ExerciseCategory {
	switch level {
	case types.StressLow:
		return types.CategoryMindfulness
	case types.StressMedium:
		return types.CategoryBreathing
	case types.StressHigh:
		return types.CategoryMovement
	case types.StressCritical:
		return types.CategoryBreathing
	default:
		return types.CategoryMindfulness
	}
}

func (s *catalogService) PickForLevel(ctx context.Context, level types.StressLevel) (*types.Exercise, error) {
	items, err := s.exerciseRepo.ListActiveByCategory(ctx, nil, categoryForLevel(level), 2)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return items[0], nil
}

func (s *catalogService) List(ctx context.Context, category types.ExerciseCategory, limit int) ([]*types.Exercise, error) {
	if category != "" {
		return s.exerciseRepo.ListActiveByCategory(ctx, nil, category, limit)
	}
	return s.exerciseRepo.List(ctx, nil, true, limit)
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*types.Exercise, error) {
	return s.exerciseRepo.GetByID(ctx, nil, id)
}

func (s *catalogService) EnsureSeeded(ctx context.Context) error {
	count, err := s.exerciseRepo.Count(ctx, nil)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	s.log.Info("Seeding exercise catalog", "items", len(defaultCatalog))
	seed := make([]*types.Exercise, len(defaultCatalog))
	for i := range defaultCatalog {
		ex := defaultCatalog[i]
		seed[i] = &ex
	}
	return s.exerciseRepo.Create(ctx, nil, seed)
}

var defaultCatalog = []types.Exercise{
	{
		Title:           "4-7-8 breathing",
		Description:     "Inhale for 4 seconds, hold for 7, exhale for 8. Calms the nervous system quickly.",
		Category:        types.CategoryBreathing,
		Difficulty:      "beginner",
		DurationSeconds: 300,
		Tags:            datatypes.JSON([]byte(`["calming","quick"]`)),
		Active:          true,
	},
	{
		Title:           "Box breathing",
		Description:     "Equal counts of inhale, hold, exhale and hold, four seconds each.",
		Category:        types.CategoryBreathing,
		Difficulty:      "beginner",
		DurationSeconds: 240,
		Tags:            datatypes.JSON([]byte(`["calming","focus"]`)),
		Active:          true,
	},
	{
		Title:           "5-minute mindfulness meditation",
		Description:     "A short guided attention practice suitable for any time of day.",
		Category:        types.CategoryMindfulness,
		Difficulty:      "beginner",
		DurationSeconds: 300,
		Tags:            datatypes.JSON([]byte(`["meditation","short"]`)),
		Active:          true,
	},
	{
		Title:           "Body scan relaxation",
		Description:     "Move attention slowly through the body, releasing tension as you go.",
		Category:        types.CategoryMindfulness,
		Difficulty:      "intermediate",
		DurationSeconds: 600,
		Tags:            datatypes.JSON([]byte(`["relaxation"]`)),
		Active:          true,
	},
	{
		Title:           "Rain sounds",
		Description:     "Natural rain ambience for winding down or masking distractions.",
		Category:        types.CategorySound,
		Difficulty:      "beginner",
		DurationSeconds: 900,
		Tags:            datatypes.JSON([]byte(`["ambience","sleep"]`)),
		Active:          true,
	},
	{
		Title:           "Stress-relief face yoga",
		Description:     "Gentle facial stretches that release jaw and brow tension.",
		Category:        types.CategoryMovement,
		Difficulty:      "beginner",
		DurationSeconds: 420,
		Tags:            datatypes.JSON([]byte(`["stretching"]`)),
		Active:          true,
	},
	{
		Title:           "Evening wind-down stretches",
		Description:     "Light full-body stretching sequence to prepare for sleep.",
		Category:        types.CategoryMovement,
		Difficulty:      "beginner",
		DurationSeconds: 480,
		Tags:            datatypes.JSON([]byte(`["stretching","sleep"]`)),
		Active:          true,
	},
}
