package store

import (
	"encoding/json"
	"fmt"

	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
)

// Table is a closed enumeration of store tables. The registry below binds
// each table to its codec and encryption flag at compile time, so a table
// can never silently miss its "encrypted" marking.
type Table int

const (
	TableUserPrefs Table = iota
	TableHealthProfile
	TablePeriodLogs
	TableSymptomLogs
	TableMoodLogs
	TableBreathingSessions
	TablePredictions
	TableReminders
)

type tableSpec struct {
	name      string
	encrypted bool
	validate  func(payload []byte) error
}

// Health, symptom, mood and breathing data stay opaque at rest; preference
// and derived tables remain queryable without touching the KDF path.
var tableSpecs = [...]tableSpec{
	TableUserPrefs:         {name: "userPrefs", validate: validateAs[model.UserPrefs]},
	TableHealthProfile:     {name: "healthProfile", encrypted: true, validate: validateAs[model.HealthProfile]},
	TablePeriodLogs:        {name: "periodLogs", encrypted: true, validate: validateAs[model.PeriodLog]},
	TableSymptomLogs:       {name: "symptomLogs", encrypted: true, validate: validateAs[model.SymptomLog]},
	TableMoodLogs:          {name: "moodLogs", encrypted: true, validate: validateAs[model.MoodLog]},
	TableBreathingSessions: {name: "breathingSessions", encrypted: true, validate: validateAs[model.BreathingSession]},
	TablePredictions:       {name: "predictions", validate: validateAs[model.Prediction]},
	TableReminders:         {name: "reminders", validate: validateAs[model.Reminder]},
}

type validatable interface {
	Validate() error
}

func validateAs[T any, PT interface {
	*T
	validatable
}](payload []byte) error {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRecord, err)
	}
	if err := PT(&v).Validate(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRecord, err)
	}
	return nil
}

// Name returns the wire/storage name of the table.
func (t Table) Name() string { return tableSpecs[t].name }

// Encrypted reports whether the table's records are wrapped before storage.
func (t Table) Encrypted() bool { return tableSpecs[t].encrypted }

// TableByName resolves a wire name to its Table; used by the sync layer.
func TableByName(name string) (Table, bool) {
	for t, s := range tableSpecs {
		if s.name == name {
			return Table(t), true
		}
	}
	return 0, false
}

// Tables returns every table in registry order.
func Tables() []Table {
	out := make([]Table, len(tableSpecs))
	for i := range tableSpecs {
		out[i] = Table(i)
	}
	return out
}
