package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StressLevel string

const (
	StressLow      StressLevel = "low"
	StressMedium   StressLevel = "medium"
	StressHigh     StressLevel = "high"
	StressCritical StressLevel = "critical"
)

type DataSource string

const (
	SourceManual      DataSource = "manual"
	SourceGoogleFit   DataSource = "google_fit"
	SourceAppleHealth DataSource = "apple_health"
	SourceFitbit      DataSource = "fitbit"
	SourceSimulation  DataSource = "simulation"
)

// Wellbeing is the normalized daily snapshot delivered by the (external)
// fitness-data collaborators. Pointer fields distinguish "absent" from zero.
type Wellbeing struct {
	SleepHours *float64   `json:"sleep_hours,omitempty"`
	Steps      *int       `json:"steps,omitempty"`
	Source     DataSource `json:"source,omitempty"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}

// MoodEntry is append-only; invalid scores are kept but skipped by scoring.
type MoodEntry struct {
	MoodScore  *int      `json:"mood_score,omitempty"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type StressFactorName string

const (
	FactorSleep       StressFactorName = "sleep"
	FactorActivity    StressFactorName = "activity"
	FactorMood        StressFactorName = "mood"
	FactorConsistency StressFactorName = "consistency"
	FactorHistorical  StressFactorName = "historical"
	// FactorSystemRecovery marks the canned default prediction.
	FactorSystemRecovery StressFactorName = "system_recovery"
)

type StressFactor struct {
	Factor      StressFactorName `json:"factor"`
	Impact      int              `json:"impact"`
	Description string           `json:"description"`
}

// StressBreakdown holds the five sub-scores that produced the total.
type StressBreakdown struct {
	Sleep       int `json:"sleep"`
	Activity    int `json:"activity"`
	Mood        int `json:"mood"`
	Consistency int `json:"consistency"`
	Historical  int `json:"historical"`
}

type StressPrediction struct {
	Score        int             `json:"score"`
	Level        StressLevel     `json:"level"`
	Factors      []StressFactor  `json:"factors"`
	Confidence   float64         `json:"confidence"`
	ModelVersion string          `json:"model_version"`
	Breakdown    StressBreakdown `json:"breakdown"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// IsFallback reports whether this is the canned default prediction emitted
// when the model could not run.
func (p StressPrediction) IsFallback() bool {
	for _, f := range p.Factors {
		if f.Factor == FactorSystemRecovery {
			return true
		}
	}
	return false
}

type RecommendationType string

const (
	RecExercise    RecommendationType = "exercise"
	RecBreathing   RecommendationType = "breathing"
	RecMindfulness RecommendationType = "mindfulness"
	RecLifestyle   RecommendationType = "lifestyle"
	RecUrgent      RecommendationType = "urgent"
)

type Recommendation struct {
	ID              uuid.UUID          `json:"id"`
	Type            RecommendationType `json:"type"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	ExerciseID      *uuid.UUID         `json:"exercise_id,omitempty"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`
	Priority        int                `json:"priority"`
	Completed       bool               `json:"completed"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
}

type AlertType string

const (
	AlertStress      AlertType = "stress_alert"
	AlertPrevention  AlertType = "prevention_alert"
	AlertImprovement AlertType = "improvement_alert"
)

type Alert struct {
	ID             uuid.UUID   `json:"id"`
	Type           AlertType   `json:"type"`
	Title          string      `json:"title"`
	Message        string      `json:"message"`
	StressLevel    StressLevel `json:"stress_level,omitempty"`
	DeliveredAt    time.Time   `json:"delivered_at"`
	Acknowledged   bool        `json:"acknowledged"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"`
}

type ExerciseSession struct {
	ExerciseID   uuid.UUID  `json:"exercise_id"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	StressBefore *int       `json:"stress_before,omitempty"`
	StressAfter  *int       `json:"stress_after,omitempty"`
}

// DailyRecord is the single per-(user, day) document. The nested collections
// live in jsonb columns; only the orchestrator writes the prediction,
// recommendation and alert fields.
type DailyRecord struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID         `gorm:"type:uuid;not null;index:idx_daily_record_user_day,unique,priority:1" json:"user_id"`
	Day              time.Time         `gorm:"column:day;type:date;not null;index:idx_daily_record_user_day,unique,priority:2" json:"day"`
	Wellbeing        *Wellbeing        `gorm:"column:wellbeing;type:jsonb;serializer:json" json:"wellbeing,omitempty"`
	StressPrediction *StressPrediction `gorm:"column:stress_prediction;type:jsonb;serializer:json" json:"stress_prediction,omitempty"`
	Recommendations  []Recommendation  `gorm:"column:recommendations;type:jsonb;serializer:json" json:"recommendations"`
	Alerts           []Alert           `gorm:"column:alerts;type:jsonb;serializer:json" json:"alerts"`
	Sessions         []ExerciseSession `gorm:"column:sessions;type:jsonb;serializer:json" json:"sessions"`
	MoodEntries      []MoodEntry       `gorm:"column:mood_entries;type:jsonb;serializer:json" json:"mood_entries"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null" json:"updated_at"`
}

func (DailyRecord) TableName() string { return "daily_record" }

func (r *DailyRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasWellbeingData reports whether any signal was recorded for the day.
func (r *DailyRecord) HasWellbeingData() bool {
	if r.Wellbeing != nil && (r.Wellbeing.SleepHours != nil || r.Wellbeing.Steps != nil) {
		return true
	}
	return len(r.MoodEntries) > 0
}
