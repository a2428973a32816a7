package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExerciseCategory string

const (
	CategoryBreathing   ExerciseCategory = "breathing"
	CategoryMindfulness ExerciseCategory = "mindfulness"
	CategorySound       ExerciseCategory = "sound"
	CategoryMovement    ExerciseCategory = "movement"
	CategoryMeditation  ExerciseCategory = "meditation"
)

// Exercise is a catalog item used to enrich recommendations. The catalog is
// owned by a collaborator service in the original deployment; here it lives
// behind CatalogService so the selector never touches the table directly.
type Exercise struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string           `gorm:"column:title;not null" json:"title"`
	Description     string           `gorm:"column:description" json:"description"`
	Category        ExerciseCategory `gorm:"column:category;not null;index:idx_exercise_category_active,priority:1" json:"category"`
	Difficulty      string           `gorm:"column:difficulty;default:beginner" json:"difficulty"`
	DurationSeconds int              `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	Tags            datatypes.JSON   `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`
	Active          bool             `gorm:"column:active;not null;default:true;index:idx_exercise_category_active,priority:2" json:"active"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updated_at"`
}

func (Exercise) TableName() string { return "exercise" }

func (e *Exercise) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
