package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia-backend/internal/modules/stress"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// fakeEngine returns a canned prediction and counts invocations.
type fakeEngine struct {
	pred      types.StressPrediction
	panicking bool
	calls     int
}

func (f *fakeEngine) Predict(in stress.Input) types.StressPrediction {
	f.calls++
	if f.panicking {
		panic("engine exploded")
	}
	pred := f.pred
	pred.GeneratedAt = time.Now().UTC()
	return pred
}

func (f *fakeEngine) DefaultPrediction() types.StressPrediction {
	return types.StressPrediction{
		Score:      50,
		Level:      types.StressMedium,
		Confidence: 0.3,
		Factors: []types.StressFactor{{
			Factor:      types.FactorSystemRecovery,
			Impact:      10,
			Description: "System recovering, basic analysis in use",
		}},
		GeneratedAt: time.Now().UTC(),
	}
}

func testPrediction(t *testing.T, repo *fakeRecordRepo, engine StressEngine) PredictionService {
	t.Helper()
	log := testLogger(t)
	recs := NewRecommendationService(log, nil, 50*time.Millisecond)
	alerts := NewAlertService(nil, log, repo, 5)
	return NewPredictionService(nil, log, repo, engine, recs, alerts, 6*time.Hour, 14)
}

func TestComputePrediction_PersistsAndRecommends(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{pred: types.StressPrediction{Score: 28, Level: types.StressLow}}
	svc := testPrediction(t, repo, engine)
	userID := uuid.New()

	result := svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	if result.Prediction.Score != 28 || result.Prediction.Level != types.StressLow {
		t.Fatalf("unexpected prediction: %+v", result.Prediction)
	}
	if len(result.Recommendations) == 0 {
		t.Fatalf("no recommendations generated")
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning %q", result.Warning)
	}

	stored, _ := repo.FindOrCreate(context.Background(), nil, userID, time.Now())
	if stored.StressPrediction == nil || stored.StressPrediction.Score != 28 {
		t.Fatalf("prediction not persisted: %+v", stored.StressPrediction)
	}
	if len(stored.Recommendations) != len(result.Recommendations) {
		t.Fatalf("recommendations not persisted")
	}
}

func TestComputePrediction_UsesFreshCache(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{pred: types.StressPrediction{Score: 28, Level: types.StressLow}}
	svc := testPrediction(t, repo, engine)
	userID := uuid.New()

	first := svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	second := svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	if engine.calls != 1 {
		t.Fatalf("engine ran %d times, want 1", engine.calls)
	}
	if !second.Cached {
		t.Fatalf("second result not marked cached")
	}
	if second.Prediction.GeneratedAt != first.Prediction.GeneratedAt {
		t.Fatalf("cached prediction differs from original")
	}
}

func TestComputePrediction_ForceRefreshBypassesCache(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{pred: types.StressPrediction{Score: 28, Level: types.StressLow}}
	svc := testPrediction(t, repo, engine)
	userID := uuid.New()

	svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	result := svc.ComputePrediction(context.Background(), userID, time.Now(), true)
	if engine.calls != 2 {
		t.Fatalf("engine ran %d times, want 2", engine.calls)
	}
	if result.Cached {
		t.Fatalf("forced refresh marked cached")
	}
}

func TestComputePrediction_StalePredictionRecomputed(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{pred: types.StressPrediction{Score: 40, Level: types.StressMedium}}
	svc := testPrediction(t, repo, engine)
	userID := uuid.New()

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, time.Now())
	rec.StressPrediction = &types.StressPrediction{
		Score:       70,
		Level:       types.StressHigh,
		GeneratedAt: time.Now().Add(-7 * time.Hour),
	}

	result := svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	if result.Cached {
		t.Fatalf("stale prediction served from cache")
	}
	if result.Prediction.Score != 40 {
		t.Fatalf("score = %d, want recomputed 40", result.Prediction.Score)
	}
}

func TestComputePrediction_EnginePanicDegrades(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{panicking: true}
	svc := testPrediction(t, repo, engine)

	result := svc.ComputePrediction(context.Background(), uuid.New(), time.Now(), false)
	if !result.Prediction.IsFallback() {
		t.Fatalf("expected fallback prediction, got %+v", result.Prediction)
	}
	if result.Warning != DegradedWarning {
		t.Fatalf("warning = %q, want %q", result.Warning, DegradedWarning)
	}
	if result.Prediction.Score != 50 || result.Prediction.Level != types.StressMedium {
		t.Fatalf("fallback shape wrong: %+v", result.Prediction)
	}
}

func TestComputePrediction_RecordFailureDegrades(t *testing.T) {
	repo := newFakeRecordRepo()
	repo.findErr = errUnavailable
	engine := &fakeEngine{pred: types.StressPrediction{Score: 28, Level: types.StressLow}}
	svc := testPrediction(t, repo, engine)

	result := svc.ComputePrediction(context.Background(), uuid.New(), time.Now(), false)
	if result == nil {
		t.Fatalf("ComputePrediction returned nil")
	}
	if result.Warning != DegradedWarning {
		t.Fatalf("warning = %q, want degraded", result.Warning)
	}
	if len(result.Recommendations) == 0 {
		t.Fatalf("degraded result carries no recommendations")
	}
}

func TestComputePrediction_PersistFailureStillReturns(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{pred: types.StressPrediction{Score: 28, Level: types.StressLow}}
	svc := testPrediction(t, repo, engine)
	userID := uuid.New()

	// Record exists, but saving the computed prediction fails.
	repo.FindOrCreate(context.Background(), nil, userID, time.Now())
	repo.saveErr = errUnavailable

	result := svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	if result.Prediction.Score != 28 {
		t.Fatalf("computed prediction lost on persist failure: %+v", result.Prediction)
	}
	if result.Warning != "" {
		t.Fatalf("persist failure must not mark the prediction degraded")
	}
}

func TestComputePrediction_HistoryFailureStillPredicts(t *testing.T) {
	repo := newFakeRecordRepo()
	repo.histErr = errUnavailable
	engine := &fakeEngine{pred: types.StressPrediction{Score: 28, Level: types.StressLow}}
	svc := testPrediction(t, repo, engine)

	result := svc.ComputePrediction(context.Background(), uuid.New(), time.Now(), false)
	if result.Prediction.Score != 28 {
		t.Fatalf("history failure degraded the prediction: %+v", result.Prediction)
	}
}

func TestComputePrediction_CriticalCreatesAlert(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{pred: types.StressPrediction{Score: 85, Level: types.StressCritical}}
	svc := testPrediction(t, repo, engine)
	userID := uuid.New()

	svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	stored, _ := repo.FindOrCreate(context.Background(), nil, userID, time.Now())
	if len(stored.Alerts) != 1 {
		t.Fatalf("critical prediction produced %d alerts, want 1", len(stored.Alerts))
	}
}

func TestToday(t *testing.T) {
	repo := newFakeRecordRepo()
	engine := &fakeEngine{pred: types.StressPrediction{Score: 28, Level: types.StressLow}}
	svc := testPrediction(t, repo, engine)
	userID := uuid.New()

	if _, err := svc.Today(context.Background(), userID); err == nil {
		t.Fatalf("Today before any prediction should fail")
	}

	svc.ComputePrediction(context.Background(), userID, time.Now(), false)
	result, err := svc.Today(context.Background(), userID)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if result.Prediction.Score != 28 {
		t.Fatalf("Today score = %d, want 28", result.Prediction.Score)
	}
}
