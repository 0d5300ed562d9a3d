// Package model defines domain entities used by the store, estimator and sync layers.
package model

import (
	"time"

	"github.com/cyclewise/cyclewise/internal/crypto"
)

// TrackingGoal enumerates why the user is tracking.
type TrackingGoal string

const (
	GoalTrack         TrackingGoal = "track"
	GoalTTC           TrackingGoal = "ttc"
	GoalPregnant      TrackingGoal = "pregnant"
	GoalPostpartum    TrackingGoal = "postpartum"
	GoalPerimenopause TrackingGoal = "perimenopause"
)

// Contraception enumerates contraception methods.
type Contraception string

const (
	ContraceptionNone      Contraception = "none"
	ContraceptionPill      Contraception = "pill"
	ContraceptionIUD       Contraception = "iud"
	ContraceptionCondom    Contraception = "condom"
	ContraceptionPatch     Contraception = "patch"
	ContraceptionRing      Contraception = "ring"
	ContraceptionInjection Contraception = "injection"
	ContraceptionImplant   Contraception = "implant"
	ContraceptionOther     Contraception = "other"
)

// PredictionType enumerates forecast event kinds.
type PredictionType string

const (
	PredictPeriodStart  PredictionType = "periodStart"
	PredictFertileStart PredictionType = "fertileStart"
	PredictFertileEnd   PredictionType = "fertileEnd"
	PredictOvulation    PredictionType = "ovulation"
)

// PeriodLog is one observed menstrual period. EndDate absent means ongoing.
type PeriodLog struct {
	ID        string     `json:"id"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Flow      *int       `json:"flow,omitempty"` // 1=spotting .. 5=very heavy
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// SymptomLog records symptom tags for one day.
type SymptomLog struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Tags      []string  `json:"tags"`
	Intensity *int      `json:"intensity,omitempty"` // 1..5
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MoodLog records mood/energy/stress for one day.
type MoodLog struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Mood      int       `json:"mood"` // 1=very low .. 5=very high
	Energy    *int      `json:"energy,omitempty"`
	Stress    *int      `json:"stress,omitempty"`
	Gratitude string    `json:"gratitude,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BreathingSession records one completed breathing exercise.
type BreathingSession struct {
	ID                  string    `json:"id"`
	Date                time.Time `json:"date"`
	Protocol            string    `json:"protocol"` // box, 4-7-8, coherent, custom
	DurationSec         int       `json:"durationSec"`
	Cycles              int       `json:"cycles"`
	PerceivedPainBefore *int      `json:"perceivedPainBefore,omitempty"`
	PerceivedPainAfter  *int      `json:"perceivedPainAfter,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// HealthProfile holds per-user cycle parameters used when history is thin.
// Exactly one instance per user, keyed by ProfileID.
type HealthProfile struct {
	ID             string        `json:"id"`
	CycleLengthAvg float64       `json:"cycleLengthAvg"` // 20..40, default 28
	CycleLengthStd float64       `json:"cycleLengthStd"` // 0..10, default 2
	LutealDays     int           `json:"lutealDays"`     // 10..16, default 14
	Goal           TrackingGoal  `json:"goal"`
	Contraception  Contraception `json:"contraception"`
	LastPeriodDate *time.Time    `json:"lastPeriodDate,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Fixed singleton ids for one-per-user entities.
const (
	ProfileID   = "health-profile"
	UserPrefsID = "user-prefs"
)

// Prediction is a single dated, typed, confidence-scored forecast.
type Prediction struct {
	ID          string         `json:"id"`
	Date        time.Time      `json:"date"`
	Type        PredictionType `json:"type"`
	Confidence  float64        `json:"confidence"` // 0..1
	Explanation string         `json:"explanation"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// QuietHours bounds notification delivery.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // "22:00"
	End     string `json:"end"`   // "07:00"
}

// NotificationPrefs toggles reminder channels.
type NotificationPrefs struct {
	Period     bool       `json:"period"`
	Fertile    bool       `json:"fertile"`
	Pill       bool       `json:"pill"`
	QuietHours QuietHours `json:"quietHours"`
}

// UserPrefs is non-sensitive UI preference data; stored without encryption.
type UserPrefs struct {
	ID            string            `json:"id"`
	Theme         string            `json:"theme"` // light, dark, system, high-contrast
	Locale        string            `json:"locale"`
	DiscreetMode  bool              `json:"discreetMode"`
	Notifications NotificationPrefs `json:"notificationPrefs"`
	CloudSync     bool              `json:"cloudSync"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Reminder is a scheduled nudge; schedule is an RRULE string.
type Reminder struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"` // period, pill, hydration, exercise, custom
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Schedule    string     `json:"schedule"`
	Enabled     bool       `json:"enabled"`
	LastFired   *time.Time `json:"lastFired,omitempty"`
	NextFire    *time.Time `json:"nextFire,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EncryptedRecord is the at-rest and on-the-wire form of any sensitive entity.
// ID matches the plaintext entity's id; the plaintext never touches storage.
type EncryptedRecord struct {
	ID        string               `json:"id"`
	Encrypted crypto.EncryptedData `json:"encrypted"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// SyncAction enumerates push operations.
type SyncAction string

const (
	SyncUpsert SyncAction = "upsert"
	SyncDelete SyncAction = "delete"
)

// SyncOp is one client-side mutation shipped to the sync endpoint.
type SyncOp struct {
	ID        string               `json:"id"`
	Table     string               `json:"table"`
	Encrypted crypto.EncryptedData `json:"encrypted"`
	Action    SyncAction           `json:"action"`
}

// RemoteRecord is an EncryptedRecord as stored by the sync server,
// qualified by owning user and source table.
type RemoteRecord struct {
	ID        string               `json:"id"`
	Table     string               `json:"table"`
	Encrypted crypto.EncryptedData `json:"encrypted"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Snapshot is the versioned plaintext export format. The file itself is the
// sensitive artifact; callers are responsible for where it lands.
type Snapshot struct {
	Version    int          `json:"version"`
	ExportDate time.Time    `json:"exportDate"`
	Data       SnapshotData `json:"data"`
}

// SnapshotData groups every exported table.
type SnapshotData struct {
	UserPrefs         *UserPrefs         `json:"userPrefs,omitempty"`
	HealthProfile     *HealthProfile     `json:"healthProfile,omitempty"`
	PeriodLogs        []PeriodLog        `json:"periodLogs"`
	SymptomLogs       []SymptomLog       `json:"symptomLogs"`
	MoodLogs          []MoodLog          `json:"moodLogs"`
	BreathingSessions []BreathingSession `json:"breathingSessions"`
	Predictions       []Prediction       `json:"predictions"`
	Reminders         []Reminder         `json:"reminders"`
}

// SnapshotVersion is the current export format version.
const SnapshotVersion = 1
