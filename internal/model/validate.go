package model

import (
	"errors"
	"fmt"
)

// Boundary validation for decrypted payloads: a record that decrypts but does
// not satisfy its schema is corrupt data (same handling as a failed decrypt).
// Each entity validates independently of the storage engine.

var validGoals = map[TrackingGoal]bool{
	GoalTrack: true, GoalTTC: true, GoalPregnant: true,
	GoalPostpartum: true, GoalPerimenopause: true,
}

var validContraception = map[Contraception]bool{
	ContraceptionNone: true, ContraceptionPill: true, ContraceptionIUD: true,
	ContraceptionCondom: true, ContraceptionPatch: true, ContraceptionRing: true,
	ContraceptionInjection: true, ContraceptionImplant: true, ContraceptionOther: true,
}

var validPredictionTypes = map[PredictionType]bool{
	PredictPeriodStart: true, PredictFertileStart: true,
	PredictFertileEnd: true, PredictOvulation: true,
}

func inRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("validation: %s must be between %d and %d, got %d", name, lo, hi, v)
	}
	return nil
}

// Validate checks PeriodLog invariants, including end >= start.
func (p *PeriodLog) Validate() error {
	if p.ID == "" {
		return errors.New("validation: period log id is empty")
	}
	if p.StartDate.IsZero() {
		return errors.New("validation: period log start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return errors.New("validation: period log end date before start date")
	}
	if p.Flow != nil {
		if err := inRange("flow", *p.Flow, 1, 5); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks SymptomLog invariants.
func (s *SymptomLog) Validate() error {
	if s.ID == "" {
		return errors.New("validation: symptom log id is empty")
	}
	if s.Date.IsZero() {
		return errors.New("validation: symptom log date is required")
	}
	if s.Intensity != nil {
		if err := inRange("intensity", *s.Intensity, 1, 5); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks MoodLog invariants.
func (m *MoodLog) Validate() error {
	if m.ID == "" {
		return errors.New("validation: mood log id is empty")
	}
	if m.Date.IsZero() {
		return errors.New("validation: mood log date is required")
	}
	if err := inRange("mood", m.Mood, 1, 5); err != nil {
		return err
	}
	if m.Energy != nil {
		if err := inRange("energy", *m.Energy, 1, 5); err != nil {
			return err
		}
	}
	if m.Stress != nil {
		if err := inRange("stress", *m.Stress, 1, 5); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks BreathingSession invariants.
func (b *BreathingSession) Validate() error {
	if b.ID == "" {
		return errors.New("validation: breathing session id is empty")
	}
	if b.Date.IsZero() {
		return errors.New("validation: breathing session date is required")
	}
	if err := inRange("durationSec", b.DurationSec, 30, 1800); err != nil {
		return err
	}
	if err := inRange("cycles", b.Cycles, 1, 100); err != nil {
		return err
	}
	return nil
}

// Validate checks HealthProfile parameter bounds.
func (h *HealthProfile) Validate() error {
	if h.ID == "" {
		return errors.New("validation: health profile id is empty")
	}
	if h.CycleLengthAvg < 20 || h.CycleLengthAvg > 40 {
		return fmt.Errorf("validation: cycleLengthAvg must be between 20 and 40, got %g", h.CycleLengthAvg)
	}
	if h.CycleLengthStd < 0 || h.CycleLengthStd > 10 {
		return fmt.Errorf("validation: cycleLengthStd must be between 0 and 10, got %g", h.CycleLengthStd)
	}
	if err := inRange("lutealDays", h.LutealDays, 10, 16); err != nil {
		return err
	}
	if !validGoals[h.Goal] {
		return fmt.Errorf("validation: unknown tracking goal %q", h.Goal)
	}
	if !validContraception[h.Contraception] {
		return fmt.Errorf("validation: unknown contraception method %q", h.Contraception)
	}
	return nil
}

// Validate checks Prediction invariants.
func (p *Prediction) Validate() error {
	if p.ID == "" {
		return errors.New("validation: prediction id is empty")
	}
	if p.Date.IsZero() {
		return errors.New("validation: prediction date is required")
	}
	if !validPredictionTypes[p.Type] {
		return fmt.Errorf("validation: unknown prediction type %q", p.Type)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("validation: confidence must be within [0,1], got %g", p.Confidence)
	}
	return nil
}

// Validate checks UserPrefs invariants.
func (u *UserPrefs) Validate() error {
	if u.ID == "" {
		return errors.New("validation: user prefs id is empty")
	}
	switch u.Theme {
	case "light", "dark", "system", "high-contrast":
	default:
		return fmt.Errorf("validation: unknown theme %q", u.Theme)
	}
	return nil
}

// Validate checks Reminder invariants.
func (r *Reminder) Validate() error {
	if r.ID == "" {
		return errors.New("validation: reminder id is empty")
	}
	if r.Title == "" {
		return errors.New("validation: reminder title is empty")
	}
	if r.Schedule == "" {
		return errors.New("validation: reminder schedule is empty")
	}
	return nil
}

// Validate checks a push operation before it is applied or shipped.
func (o *SyncOp) Validate() error {
	if o.ID == "" {
		return errors.New("validation: sync op id is empty")
	}
	if o.Table == "" {
		return errors.New("validation: sync op table is empty")
	}
	switch o.Action {
	case SyncUpsert, SyncDelete:
	default:
		return fmt.Errorf("validation: unknown sync action %q", o.Action)
	}
	if o.Action == SyncUpsert && o.Encrypted.Data == "" {
		return errors.New("validation: sync upsert with empty payload")
	}
	return nil
}
