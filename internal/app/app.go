// Package app holds explicit application state: the unlocked passphrase,
// loaded entities and the current prediction set. Every mutation writes
// through the store and then reloads; there is no implicit background
// refresh. A single local actor drives an App, so no locking is done here.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/cyclewise/cyclewise/internal/crypto"
	"github.com/cyclewise/cyclewise/internal/cycle"
	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
	"github.com/cyclewise/cyclewise/internal/store"
)

// App is the process-wide state container, passed explicitly to call sites.
type App struct {
	store *store.Store
	log   *zap.Logger

	passphrase    string
	authenticated bool

	Prefs             *model.UserPrefs
	Profile           *model.HealthProfile
	PeriodLogs        []model.PeriodLog
	SymptomLogs       []model.SymptomLog
	MoodLogs          []model.MoodLog
	BreathingSessions []model.BreathingSession
	Predictions       []model.Prediction
}

// New constructs an App over an opened store.
func New(st *store.Store, log *zap.Logger) *App {
	return &App{store: st, log: log}
}

// Authenticated reports whether the store is unlocked.
func (a *App) Authenticated() bool { return a.authenticated }

// Unlock verifies the passphrase by decrypting the health profile (the
// system's passphrase check), seeding a default profile on first run, then
// loads all state. Returns errs.ErrDecryptFailed on a wrong passphrase.
func (a *App) Unlock(ctx context.Context, passphrase string) error {
	profile, err := a.store.HealthProfile(ctx, passphrase)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		// First run: this passphrase becomes the data passphrase.
		if check := crypto.ValidatePassphrase(passphrase); !check.IsValid {
			return fmt.Errorf("weak passphrase: %v", check.Errors)
		}
		profile = model.DefaultHealthProfile(time.Now().UTC())
		if err := a.store.PutHealthProfile(ctx, profile, passphrase); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	a.passphrase = passphrase
	a.authenticated = true
	a.Profile = profile
	return a.Reload(ctx)
}

// Lock forgets the passphrase and drops all decrypted state.
func (a *App) Lock() {
	*a = App{store: a.store, log: a.log}
}

// Reload pulls every table from the store, regenerates the prediction set
// from the latest logs and profile, and persists it (replacing the old set).
func (a *App) Reload(ctx context.Context) error {
	if !a.authenticated {
		return errs.ErrUnauthorized
	}

	prefs, err := a.store.UserPrefs(ctx)
	if err != nil {
		return err
	}
	profile, err := a.store.HealthProfile(ctx, a.passphrase)
	if err != nil {
		return err
	}
	periods, err := a.store.PeriodLogs(ctx, a.passphrase)
	if err != nil {
		return err
	}
	symptoms, err := a.store.SymptomLogs(ctx, a.passphrase)
	if err != nil {
		return err
	}
	moods, err := a.store.MoodLogs(ctx, a.passphrase)
	if err != nil {
		return err
	}
	sessions, err := a.store.BreathingSessions(ctx, a.passphrase)
	if err != nil {
		return err
	}

	predictions := cycle.GeneratePredictions(periods, profile, time.Now())
	if err := a.store.ReplacePredictions(ctx, predictions); err != nil {
		return err
	}

	a.Prefs = prefs
	a.Profile = profile
	a.PeriodLogs = periods
	a.SymptomLogs = symptoms
	a.MoodLogs = moods
	a.BreathingSessions = sessions
	a.Predictions = predictions
	return nil
}

// Stats computes cycle statistics over the loaded period logs.
func (a *App) Stats() cycle.Stats {
	return cycle.CalculateStats(a.PeriodLogs)
}

// Phase classifies the current point in the cycle.
func (a *App) Phase(now time.Time) cycle.PhaseInfo {
	return cycle.CurrentPhase(a.Predictions, now)
}

// Insights returns advisory messages for the loaded data.
func (a *App) Insights() []cycle.Insight {
	return cycle.Insights(a.PeriodLogs, a.Stats())
}

// AddPeriodLog stores a new period log and refreshes state.
func (a *App) AddPeriodLog(ctx context.Context, start time.Time, end *time.Time, flow *int, notes string) (string, error) {
	if !a.authenticated {
		return "", errs.ErrUnauthorized
	}
	now := time.Now().UTC()
	log := &model.PeriodLog{
		ID:        newID("period"),
		StartDate: start,
		EndDate:   end,
		Flow:      flow,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.PutPeriodLog(ctx, log, a.passphrase); err != nil {
		return "", err
	}
	return log.ID, a.Reload(ctx)
}

// UpdatePeriodLog mutates an existing log; the id is immutable and
// UpdatedAt advances.
func (a *App) UpdatePeriodLog(ctx context.Context, id string, mutate func(*model.PeriodLog)) error {
	if !a.authenticated {
		return errs.ErrUnauthorized
	}
	log, err := a.store.PeriodLog(ctx, id, a.passphrase)
	if err != nil {
		return err
	}
	mutate(log)
	log.ID = id
	if err := a.store.PutPeriodLog(ctx, log, a.passphrase); err != nil {
		return err
	}
	return a.Reload(ctx)
}

// DeletePeriodLog removes a log and refreshes state.
func (a *App) DeletePeriodLog(ctx context.Context, id string) error {
	if !a.authenticated {
		return errs.ErrUnauthorized
	}
	if err := a.store.DeletePeriodLog(ctx, id); err != nil {
		return err
	}
	return a.Reload(ctx)
}

// AddSymptomLog stores a new symptom log and refreshes state.
func (a *App) AddSymptomLog(ctx context.Context, date time.Time, tags []string, intensity *int, notes string) (string, error) {
	if !a.authenticated {
		return "", errs.ErrUnauthorized
	}
	now := time.Now().UTC()
	log := &model.SymptomLog{
		ID:        newID("symptom"),
		Date:      date,
		Tags:      tags,
		Intensity: intensity,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.PutSymptomLog(ctx, log, a.passphrase); err != nil {
		return "", err
	}
	return log.ID, a.Reload(ctx)
}

// AddMoodLog stores a new mood log and refreshes state.
func (a *App) AddMoodLog(ctx context.Context, date time.Time, mood int, energy, stress *int, notes string) (string, error) {
	if !a.authenticated {
		return "", errs.ErrUnauthorized
	}
	log := &model.MoodLog{
		ID:        newID("mood"),
		Date:      date,
		Mood:      mood,
		Energy:    energy,
		Stress:    stress,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.PutMoodLog(ctx, log, a.passphrase); err != nil {
		return "", err
	}
	return log.ID, a.Reload(ctx)
}

// AddBreathingSession stores a completed session and refreshes state.
func (a *App) AddBreathingSession(ctx context.Context, b model.BreathingSession) (string, error) {
	if !a.authenticated {
		return "", errs.ErrUnauthorized
	}
	b.ID = newID("breathing")
	b.CreatedAt = time.Now().UTC()
	if err := a.store.PutBreathingSession(ctx, &b, a.passphrase); err != nil {
		return "", err
	}
	return b.ID, a.Reload(ctx)
}

// UpdateHealthProfile applies a mutation to the profile and refreshes state.
func (a *App) UpdateHealthProfile(ctx context.Context, mutate func(*model.HealthProfile)) error {
	if !a.authenticated {
		return errs.ErrUnauthorized
	}
	profile, err := a.store.HealthProfile(ctx, a.passphrase)
	if err != nil {
		return err
	}
	mutate(profile)
	profile.ID = model.ProfileID
	if err := a.store.PutHealthProfile(ctx, profile, a.passphrase); err != nil {
		return err
	}
	return a.Reload(ctx)
}

// Export produces the plaintext snapshot for the unlocked store.
func (a *App) Export(ctx context.Context) (*model.Snapshot, error) {
	if !a.authenticated {
		return nil, errs.ErrUnauthorized
	}
	return a.store.Export(ctx, a.passphrase)
}

// Import replaces all data from a snapshot, then reloads.
func (a *App) Import(ctx context.Context, snap *model.Snapshot) error {
	if !a.authenticated {
		return errs.ErrUnauthorized
	}
	if err := a.store.Import(ctx, snap, a.passphrase); err != nil {
		return err
	}
	return a.Reload(ctx)
}

// Wipe destroys the local store and locks the app. Irreversible; the caller
// must have confirmed with the user.
func (a *App) Wipe(ctx context.Context) error {
	if err := a.store.Wipe(ctx); err != nil {
		return err
	}
	a.Lock()
	return nil
}

func newID(prefix string) string {
	return prefix + "-" + uuid.Must(uuid.NewV4()).String()
}
