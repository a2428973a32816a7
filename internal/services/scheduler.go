package services

import (
	"context"
	"time"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
)

// PredictionWorker refreshes predictions for recently active users at fixed
// hours of the day. Runs are best-effort; a failed user is logged and skipped.
type PredictionWorker struct {
	log        *logger.Logger
	recordRepo repos.DailyRecordRepo
	prediction PredictionService

	runHours       []int
	activeWindow   time.Duration
	perUserTimeout time.Duration
	now            func() time.Time
}

func NewPredictionWorker(log *logger.Logger, recordRepo repos.DailyRecordRepo, prediction PredictionService, runHours []int) *PredictionWorker {
	if len(runHours) == 0 {
		runHours = []int{8, 14, 20}
	}
	return &PredictionWorker{
		log:            log.With("worker", "PredictionWorker"),
		recordRepo:     recordRepo,
		prediction:     prediction,
		runHours:       runHours,
		activeWindow:   7 * 24 * time.Hour,
		perUserTimeout: 30 * time.Second,
		now:            time.Now,
	}
}

// Start blocks until ctx is done, firing one refresh pass at each configured
// hour. Ticks are minute-grained so an hour is never missed by drift.
func (w *PredictionWorker) Start(ctx context.Context) {
	w.log.Info("prediction worker started", "run_hours", w.runHours)
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastRun time.Time
	for {
		select {
		case <-ctx.Done():
			w.log.Info("prediction worker stopped")
			return
		case <-ticker.C:
			now := w.now()
			if !w.shouldRun(now, lastRun) {
				continue
			}
			lastRun = now
			w.runOnce(ctx)
		}
	}
}

func (w *PredictionWorker) shouldRun(now, lastRun time.Time) bool {
	if now.Minute() != 0 {
		return false
	}
	if !lastRun.IsZero() && now.Sub(lastRun) < time.Hour {
		return false
	}
	for _, h := range w.runHours {
		if now.Hour() == h {
			return true
		}
	}
	return false
}

// runOnce refreshes every user who touched a record inside the active window.
func (w *PredictionWorker) runOnce(ctx context.Context) {
	since := w.now().Add(-w.activeWindow)
	userIDs, err := w.recordRepo.RecentActiveUserIDs(ctx, nil, since)
	if err != nil {
		w.log.Error("scheduled run skipped, could not list active users", "error", err)
		return
	}
	w.log.Info("scheduled prediction run starting", "users", len(userIDs))

	refreshed := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		userCtx, cancel := context.WithTimeout(ctx, w.perUserTimeout)
		result := w.prediction.ComputePrediction(userCtx, userID, w.now(), false)
		cancel()
		if !result.Cached {
			refreshed++
		}
	}
	w.log.Info("scheduled prediction run finished", "users", len(userIDs), "refreshed", refreshed)
}
