package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cyclewise/cyclewise/internal/crypto"
	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
)

func sortPredictions(ps []model.Prediction) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Date.Before(ps[j].Date) })
}

// Export assembles every table into one versioned plaintext snapshot,
// decrypting where necessary. The snapshot itself is the sensitive artifact.
func (s *Store) Export(ctx context.Context, passphrase string) (*model.Snapshot, error) {
	prefs, err := s.UserPrefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("export userPrefs: %w", err)
	}
	profile, err := s.HealthProfile(ctx, passphrase)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("export healthProfile: %w", err)
	}
	periods, err := s.PeriodLogs(ctx, passphrase)
	if err != nil {
		return nil, fmt.Errorf("export periodLogs: %w", err)
	}
	symptoms, err := s.SymptomLogs(ctx, passphrase)
	if err != nil {
		return nil, fmt.Errorf("export symptomLogs: %w", err)
	}
	moods, err := s.MoodLogs(ctx, passphrase)
	if err != nil {
		return nil, fmt.Errorf("export moodLogs: %w", err)
	}
	sessions, err := s.BreathingSessions(ctx, passphrase)
	if err != nil {
		return nil, fmt.Errorf("export breathingSessions: %w", err)
	}
	predictions, err := s.Predictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("export predictions: %w", err)
	}
	reminders, err := s.Reminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("export reminders: %w", err)
	}

	return &model.Snapshot{
		Version:    model.SnapshotVersion,
		ExportDate: time.Now().UTC(),
		Data: model.SnapshotData{
			UserPrefs:         prefs,
			HealthProfile:     profile,
			PeriodLogs:        periods,
			SymptomLogs:       symptoms,
			MoodLogs:          moods,
			BreathingSessions: sessions,
			Predictions:       predictions,
			Reminders:         reminders,
		},
	}, nil
}

// Import replaces all tables with the snapshot's contents, all or nothing.
// The incoming snapshot is validated and re-encrypted in full before any
// table is cleared; the clear+insert then runs in one transaction, so a
// failure anywhere leaves the prior state intact.
func (s *Store) Import(ctx context.Context, snap *model.Snapshot, passphrase string) error {
	if snap == nil || snap.Version != model.SnapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version", errs.ErrImportAborted)
	}

	rows, err := buildImportRows(snap, passphrase)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrImportAborted, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrImportAborted, err)
	}
	const q = `INSERT INTO records (tbl, id, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, q, r.table, r.id, r.payload, now, now); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrImportAborted, err)
		}
	}
	return tx.Commit()
}

type importRow struct {
	table   string
	id      string
	payload []byte
}

// buildImportRows validates and seals the whole snapshot without touching
// storage. Any single bad record aborts the import before the clear.
func buildImportRows(snap *model.Snapshot, passphrase string) ([]importRow, error) {
	var rows []importRow

	add := func(table Table, id string, entity validatable) error {
		if err := entity.Validate(); err != nil {
			return err
		}
		var payload []byte
		var err error
		if table.Encrypted() {
			var enc crypto.EncryptedData
			if enc, err = crypto.EncryptObject(entity, passphrase); err == nil {
				payload, err = json.Marshal(enc)
			}
		} else {
			payload, err = json.Marshal(entity)
		}
		if err != nil {
			return err
		}
		rows = append(rows, importRow{table: table.Name(), id: id, payload: payload})
		return nil
	}

	d := snap.Data
	if d.UserPrefs != nil {
		if err := add(TableUserPrefs, d.UserPrefs.ID, d.UserPrefs); err != nil {
			return nil, err
		}
	}
	if d.HealthProfile != nil {
		if err := add(TableHealthProfile, d.HealthProfile.ID, d.HealthProfile); err != nil {
			return nil, err
		}
	}
	for i := range d.PeriodLogs {
		if err := add(TablePeriodLogs, d.PeriodLogs[i].ID, &d.PeriodLogs[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.SymptomLogs {
		if err := add(TableSymptomLogs, d.SymptomLogs[i].ID, &d.SymptomLogs[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.MoodLogs {
		if err := add(TableMoodLogs, d.MoodLogs[i].ID, &d.MoodLogs[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.BreathingSessions {
		if err := add(TableBreathingSessions, d.BreathingSessions[i].ID, &d.BreathingSessions[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.Predictions {
		if err := add(TablePredictions, d.Predictions[i].ID, &d.Predictions[i]); err != nil {
			return nil, err
		}
	}
	for i := range d.Reminders {
		if err := add(TableReminders, d.Reminders[i].ID, &d.Reminders[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
