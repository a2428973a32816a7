package app

import (
	"gorm.io/gorm"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
)

type Repos struct {
	DailyRecord repos.DailyRecordRepo
	Exercise    repos.ExerciseRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		DailyRecord: repos.NewDailyRecordRepo(db, log),
		Exercise:    repos.NewExerciseRepo(db, log),
	}
}
