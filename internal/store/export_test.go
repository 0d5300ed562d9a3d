package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
)

func seedStore(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.PutHealthProfile(ctx, model.DefaultHealthProfile(now), testPass); err != nil {
		t.Fatalf("PutHealthProfile: %v", err)
	}
	if err := s.PutPeriodLog(ctx, testPeriod("period-1", day(2024, 1, 1)), testPass); err != nil {
		t.Fatalf("PutPeriodLog: %v", err)
	}
	if err := s.PutPeriodLog(ctx, testPeriod("period-2", day(2024, 1, 29)), testPass); err != nil {
		t.Fatalf("PutPeriodLog(2): %v", err)
	}
	mood := &model.MoodLog{ID: "mood-1", Date: day(2024, 1, 2), Mood: 4, CreatedAt: now}
	if err := s.PutMoodLog(ctx, mood, testPass); err != nil {
		t.Fatalf("PutMoodLog: %v", err)
	}
	if err := s.ReplacePredictions(ctx, []model.Prediction{
		{ID: "period-start-1", Date: day(2024, 2, 26), Type: model.PredictPeriodStart, Confidence: 0.6, CreatedAt: now},
	}); err != nil {
		t.Fatalf("ReplacePredictions: %v", err)
	}
}

func TestExportImport_Roundtrip(t *testing.T) {
	t.Parallel()
	src := newStore(t)
	seedStore(t, src)
	ctx := context.Background()

	snap, err := src.Export(ctx, testPass)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snap.Version != model.SnapshotVersion {
		t.Fatalf("version=%d, want=%d", snap.Version, model.SnapshotVersion)
	}
	if len(snap.Data.PeriodLogs) != 2 || len(snap.Data.MoodLogs) != 1 || len(snap.Data.Predictions) != 1 {
		t.Fatalf("snapshot incomplete: %+v", snap.Data)
	}
	if snap.Data.HealthProfile == nil {
		t.Fatalf("snapshot missing health profile")
	}

	// Import into a fresh store under a different passphrase.
	dst := newStore(t)
	const newPass = "Another-Passphrase-3!ab"
	if err := dst.Import(ctx, snap, newPass); err != nil {
		t.Fatalf("Import: %v", err)
	}

	logs, err := dst.PeriodLogs(ctx, newPass)
	if err != nil {
		t.Fatalf("PeriodLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("imported periodLogs=%d, want=2", len(logs))
	}
	profile, err := dst.HealthProfile(ctx, newPass)
	if err != nil {
		t.Fatalf("HealthProfile: %v", err)
	}
	if profile.CycleLengthAvg != 28 {
		t.Fatalf("profile avg=%v, want=28", profile.CycleLengthAvg)
	}
	// The old passphrase must not open re-encrypted data.
	if _, err := dst.HealthProfile(ctx, testPass); !errors.Is(err, errs.ErrDecryptFailed) {
		t.Fatalf("old passphrase must fail, got %v", err)
	}
}

func TestExport_EmptyStore(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	snap, err := s.Export(context.Background(), testPass)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snap.Data.HealthProfile != nil {
		t.Fatalf("fresh store must export nil profile")
	}
	if snap.Data.UserPrefs == nil {
		t.Fatalf("prefs are seeded on first access and must be present")
	}
	if len(snap.Data.PeriodLogs) != 0 {
		t.Fatalf("unexpected period logs: %+v", snap.Data.PeriodLogs)
	}
}

func TestImport_AllOrNothing(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	snap, err := s.Export(ctx, testPass)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	// Corrupt one record; the whole import must abort with prior data intact.
	snap.Data.PeriodLogs[1].StartDate = time.Time{}

	if err := s.Import(ctx, snap, testPass); !errors.Is(err, errs.ErrImportAborted) {
		t.Fatalf("want ErrImportAborted, got %v", err)
	}

	logs, err := s.PeriodLogs(ctx, testPass)
	if err != nil {
		t.Fatalf("PeriodLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("aborted import must not touch existing data, got %d logs", len(logs))
	}
}

func TestImport_VersionMismatch(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	snap := &model.Snapshot{Version: 99, ExportDate: time.Now().UTC()}
	if err := s.Import(ctx, snap, testPass); !errors.Is(err, errs.ErrImportAborted) {
		t.Fatalf("want ErrImportAborted on version mismatch, got %v", err)
	}
	if err := s.Import(ctx, nil, testPass); !errors.Is(err, errs.ErrImportAborted) {
		t.Fatalf("want ErrImportAborted on nil snapshot, got %v", err)
	}
}
