package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harmonia-app/harmonia-backend/internal/modules/stress"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/services"
)

type Services struct {
	Catalog          services.CatalogService
	Recommendations  services.RecommendationService
	Alerts           services.AlertService
	Prediction       services.PredictionService
	Trigger          services.TriggerService
	Daily            services.DailyService
	Analytics        services.AnalyticsService
	PredictionWorker *services.PredictionWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	modelCfg := stress.DefaultModelConfig()
	if cfg.ModelConfigPath != "" {
		loaded, err := stress.LoadModelConfig(cfg.ModelConfigPath)
		if err != nil {
			return Services{}, fmt.Errorf("load model config: %w", err)
		}
		modelCfg = loaded
	}
	if err := modelCfg.Validate(); err != nil {
		return Services{}, fmt.Errorf("validate model config: %w", err)
	}
	engine := stress.NewEngine(modelCfg, log)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	catalog := services.NewCatalogService(db, log, reposet.Exercise)
	recommendations := services.NewRecommendationService(log, catalog, cfg.CatalogTimeout)
	alerts := services.NewAlertService(db, log, reposet.DailyRecord, cfg.AlertCap)
	prediction := services.NewPredictionService(
		db, log, reposet.DailyRecord, engine, recommendations, alerts,
		cfg.StalenessWindow, cfg.HistoryDays,
	)
	trigger := services.NewTriggerService(
		log, reposet.DailyRecord, prediction, rdb,
		cfg.TriggerDelay, cfg.TriggerRateTTL, cfg.MinPredictionAge,
	)
	daily := services.NewDailyService(db, log, reposet.DailyRecord, trigger)
	analytics := services.NewAnalyticsService(log, reposet.DailyRecord)
	worker := services.NewPredictionWorker(log, reposet.DailyRecord, prediction, cfg.WorkerRunHours)

	return Services{
		Catalog:          catalog,
		Recommendations:  recommendations,
		Alerts:           alerts,
		Prediction:       prediction,
		Trigger:          trigger,
		Daily:            daily,
		Analytics:        analytics,
		PredictionWorker: worker,
	}, nil
}
