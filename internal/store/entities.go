package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
)

// Typed accessors over the generic record operations.

func decodeAll[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// UserPrefs returns preferences, seeding defaults on first access.
func (s *Store) UserPrefs(ctx context.Context) (*model.UserPrefs, error) {
	var prefs model.UserPrefs
	err := s.Get(ctx, TableUserPrefs, model.UserPrefsID, "", &prefs)
	if errors.Is(err, errs.ErrNotFound) {
		p := model.DefaultUserPrefs(time.Now().UTC())
		if err := s.Put(ctx, TableUserPrefs, p.ID, p, ""); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// PutUserPrefs stores preferences (plaintext table).
func (s *Store) PutUserPrefs(ctx context.Context, p *model.UserPrefs) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return s.Put(ctx, TableUserPrefs, p.ID, p, "")
}

// HealthProfile returns the singleton profile. errs.ErrNotFound on a fresh
// store; decrypt failure doubles as passphrase verification.
func (s *Store) HealthProfile(ctx context.Context, passphrase string) (*model.HealthProfile, error) {
	var profile model.HealthProfile
	if err := s.Get(ctx, TableHealthProfile, model.ProfileID, passphrase, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// PutHealthProfile validates and stores the profile.
func (s *Store) PutHealthProfile(ctx context.Context, p *model.HealthProfile, passphrase string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return s.Put(ctx, TableHealthProfile, p.ID, p, passphrase)
}

// PutPeriodLog validates and stores one period log.
func (s *Store) PutPeriodLog(ctx context.Context, log *model.PeriodLog, passphrase string) error {
	if err := log.Validate(); err != nil {
		return err
	}
	log.UpdatedAt = time.Now().UTC()
	return s.Put(ctx, TablePeriodLogs, log.ID, log, passphrase)
}

// PeriodLog loads one period log by id.
func (s *Store) PeriodLog(ctx context.Context, id, passphrase string) (*model.PeriodLog, error) {
	var log model.PeriodLog
	if err := s.Get(ctx, TablePeriodLogs, id, passphrase, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// PeriodLogs loads every readable period log.
func (s *Store) PeriodLogs(ctx context.Context, passphrase string) ([]model.PeriodLog, error) {
	raw, err := s.GetAll(ctx, TablePeriodLogs, passphrase)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.PeriodLog](raw)
}

// DeletePeriodLog removes one period log.
func (s *Store) DeletePeriodLog(ctx context.Context, id string) error {
	return s.Delete(ctx, TablePeriodLogs, id)
}

// PutSymptomLog validates and stores one symptom log.
func (s *Store) PutSymptomLog(ctx context.Context, log *model.SymptomLog, passphrase string) error {
	if err := log.Validate(); err != nil {
		return err
	}
	log.UpdatedAt = time.Now().UTC()
	return s.Put(ctx, TableSymptomLogs, log.ID, log, passphrase)
}

// SymptomLogs loads every readable symptom log.
func (s *Store) SymptomLogs(ctx context.Context, passphrase string) ([]model.SymptomLog, error) {
	raw, err := s.GetAll(ctx, TableSymptomLogs, passphrase)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.SymptomLog](raw)
}

// PutMoodLog validates and stores one mood log.
func (s *Store) PutMoodLog(ctx context.Context, log *model.MoodLog, passphrase string) error {
	if err := log.Validate(); err != nil {
		return err
	}
	return s.Put(ctx, TableMoodLogs, log.ID, log, passphrase)
}

// MoodLogs loads every readable mood log.
func (s *Store) MoodLogs(ctx context.Context, passphrase string) ([]model.MoodLog, error) {
	raw, err := s.GetAll(ctx, TableMoodLogs, passphrase)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.MoodLog](raw)
}

// PutBreathingSession validates and stores one breathing session.
func (s *Store) PutBreathingSession(ctx context.Context, b *model.BreathingSession, passphrase string) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return s.Put(ctx, TableBreathingSessions, b.ID, b, passphrase)
}

// BreathingSessions loads every readable breathing session.
func (s *Store) BreathingSessions(ctx context.Context, passphrase string) ([]model.BreathingSession, error) {
	raw, err := s.GetAll(ctx, TableBreathingSessions, passphrase)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.BreathingSession](raw)
}

// ReplacePredictions discards the stored prediction set and writes the new
// one. Predictions are always regenerated wholesale, never merged.
func (s *Store) ReplacePredictions(ctx context.Context, predictions []model.Prediction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE tbl=?`, TablePredictions.Name()); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	const q = `INSERT INTO records (tbl, id, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	for i := range predictions {
		p := &predictions[i]
		if err := p.Validate(); err != nil {
			return err
		}
		payload, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, TablePredictions.Name(), p.ID, payload, now, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Predictions returns the stored prediction set ordered by date.
func (s *Store) Predictions(ctx context.Context) ([]model.Prediction, error) {
	raw, err := s.GetAll(ctx, TablePredictions, "")
	if err != nil {
		return nil, err
	}
	ps, err := decodeAll[model.Prediction](raw)
	if err != nil {
		return nil, err
	}
	sortPredictions(ps)
	return ps, nil
}

// PutReminder validates and stores one reminder.
func (s *Store) PutReminder(ctx context.Context, r *model.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	return s.Put(ctx, TableReminders, r.ID, r, "")
}

// Reminders loads every reminder.
func (s *Store) Reminders(ctx context.Context) ([]model.Reminder, error) {
	raw, err := s.GetAll(ctx, TableReminders, "")
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Reminder](raw)
}
