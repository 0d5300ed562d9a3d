package model

import "time"

// DefaultHealthProfile returns the onboarding profile seeded on first unlock.
func DefaultHealthProfile(now time.Time) *HealthProfile {
	return &HealthProfile{
		ID:             ProfileID,
		CycleLengthAvg: 28,
		CycleLengthStd: 2,
		LutealDays:     14,
		Goal:           GoalTrack,
		Contraception:  ContraceptionNone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// DefaultUserPrefs returns preference defaults for a fresh store.
func DefaultUserPrefs(now time.Time) *UserPrefs {
	return &UserPrefs{
		ID:     UserPrefsID,
		Theme:  "system",
		Locale: "en",
		Notifications: NotificationPrefs{
			Period:  true,
			Fertile: true,
			QuietHours: QuietHours{
				Start: "22:00",
				End:   "07:00",
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
