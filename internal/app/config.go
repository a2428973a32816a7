package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/utils"
)

type Config struct {
	Mode           string
	Port           string
	AllowedOrigins []string
	JWTSecretKey   string

	ModelConfigPath string
	RedisAddr       string
	RedisPassword   string

	StalenessWindow  time.Duration
	HistoryDays      int
	AlertCap         int
	CatalogTimeout   time.Duration
	TriggerDelay     time.Duration
	TriggerRateTTL   time.Duration
	MinPredictionAge time.Duration
	WorkerRunHours   []int
}

func LoadConfig(log *logger.Logger) Config {
	origins := utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", log)

	return Config{
		Mode:           utils.GetEnv("APP_MODE", "development", log),
		Port:           utils.GetEnv("PORT", "8080", log),
		AllowedOrigins: strings.Split(origins, ","),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),

		ModelConfigPath: utils.GetEnv("MODEL_CONFIG_PATH", "", log),
		RedisAddr:       utils.GetEnv("REDIS_ADDR", "", log),
		RedisPassword:   utils.GetEnv("REDIS_PASSWORD", "", log),

		StalenessWindow:  time.Duration(utils.GetEnvAsInt("PREDICTION_STALENESS_HOURS", 6, log)) * time.Hour,
		HistoryDays:      utils.GetEnvAsInt("PREDICTION_HISTORY_DAYS", 14, log),
		AlertCap:         utils.GetEnvAsInt("ALERT_CAP", 5, log),
		CatalogTimeout:   time.Duration(utils.GetEnvAsInt("CATALOG_TIMEOUT_MS", 2000, log)) * time.Millisecond,
		TriggerDelay:     time.Duration(utils.GetEnvAsInt("TRIGGER_DELAY_MS", 2000, log)) * time.Millisecond,
		TriggerRateTTL:   time.Duration(utils.GetEnvAsInt("TRIGGER_RATE_TTL_SECONDS", 600, log)) * time.Second,
		MinPredictionAge: time.Duration(utils.GetEnvAsInt("TRIGGER_MIN_PREDICTION_AGE_MINUTES", 30, log)) * time.Minute,
		WorkerRunHours:   parseRunHours(utils.GetEnv("WORKER_RUN_HOURS", "8,14,20", log)),
	}
}

func parseRunHours(raw string) []int {
	hours := make([]int, 0, 3)
	for _, part := range strings.Split(raw, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && h >= 0 && h < 24 {
			hours = append(hours, h)
		}
	}
	return hours
}
