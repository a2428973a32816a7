package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

func testAlerts(t *testing.T, repo *fakeRecordRepo) AlertService {
	t.Helper()
	return NewAlertService(nil, testLogger(t), repo, 5)
}

func TestEvaluateAfterPrediction_CriticalAlwaysAlerts(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := testAlerts(t, repo)
	userID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, day)
	svc.EvaluateAfterPrediction(context.Background(), rec.ID, userID, day,
		types.StressPrediction{Level: types.StressCritical})

	if len(rec.Alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(rec.Alerts))
	}
	if rec.Alerts[0].Type != types.AlertStress || rec.Alerts[0].StressLevel != types.StressCritical {
		t.Fatalf("unexpected alert: %+v", rec.Alerts[0])
	}
}

func TestEvaluateAfterPrediction_HighNeedsPersistence(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := testAlerts(t, repo)
	userID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, day)
	svc.EvaluateAfterPrediction(context.Background(), rec.ID, userID, day,
		types.StressPrediction{Level: types.StressHigh})
	if len(rec.Alerts) != 0 {
		t.Fatalf("isolated high day produced an alert")
	}

	// Two prior high days inside the lookback window satisfy the pattern.
	repo.put(predictedRecord(userID, day.AddDate(0, 0, -1), 75, types.StressHigh))
	repo.put(predictedRecord(userID, day.AddDate(0, 0, -2), 72, types.StressHigh))
	svc.EvaluateAfterPrediction(context.Background(), rec.ID, userID, day,
		types.StressPrediction{Level: types.StressHigh})
	if len(rec.Alerts) != 1 {
		t.Fatalf("got %d alerts after persistent high days, want 1", len(rec.Alerts))
	}
	if rec.Alerts[0].StressLevel != types.StressHigh {
		t.Fatalf("alert level = %q, want high", rec.Alerts[0].StressLevel)
	}
}

func TestEvaluateAfterPrediction_MediumIsSilent(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := testAlerts(t, repo)
	userID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, day)
	svc.EvaluateAfterPrediction(context.Background(), rec.ID, userID, day,
		types.StressPrediction{Level: types.StressMedium})
	if len(rec.Alerts) != 0 {
		t.Fatalf("medium level produced alerts")
	}
}

func TestEvaluateAfterPrediction_CapIsEnforced(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := testAlerts(t, repo)
	userID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, day)
	for i := 0; i < 5; i++ {
		rec.Alerts = append(rec.Alerts, types.Alert{ID: uuid.New(), Type: types.AlertStress})
	}
	saves := repo.saves
	svc.EvaluateAfterPrediction(context.Background(), rec.ID, userID, day,
		types.StressPrediction{Level: types.StressCritical})
	if len(rec.Alerts) != 5 {
		t.Fatalf("cap breached: %d alerts", len(rec.Alerts))
	}
	if repo.saves != saves {
		t.Fatalf("record saved even though no alert was appended")
	}
}

func TestEvaluateAfterPrediction_SaveFailureIsSwallowed(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := testAlerts(t, repo)
	userID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, day)
	repo.saveErr = errUnavailable
	// Must not panic or propagate.
	svc.EvaluateAfterPrediction(context.Background(), rec.ID, userID, day,
		types.StressPrediction{Level: types.StressCritical})
}

func TestActiveAlerts_FiltersAcknowledged(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := testAlerts(t, repo)
	userID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, day)
	acked := types.Alert{ID: uuid.New(), Acknowledged: true}
	oldAlert := types.Alert{ID: uuid.New(), DeliveredAt: day.Add(8 * time.Hour)}
	newAlert := types.Alert{ID: uuid.New(), DeliveredAt: day.Add(12 * time.Hour)}
	rec.Alerts = []types.Alert{acked, oldAlert, newAlert}

	active, err := svc.ActiveAlerts(context.Background(), userID, day)
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("got %d active alerts, want 2", len(active))
	}
	if active[0].ID != newAlert.ID {
		t.Fatalf("active alerts not newest first")
	}
}

func TestAcknowledge(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := testAlerts(t, repo)
	userID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, _ := repo.FindOrCreate(context.Background(), nil, userID, day)
	alertID := uuid.New()
	rec.Alerts = []types.Alert{{ID: alertID}}

	got, err := svc.Acknowledge(context.Background(), userID, day, alertID)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if !got.Acknowledged || got.AcknowledgedAt == nil {
		t.Fatalf("alert not marked acknowledged: %+v", got)
	}

	if _, err := svc.Acknowledge(context.Background(), userID, day, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown alert id: err = %v, want ErrNotFound", err)
	}
}
