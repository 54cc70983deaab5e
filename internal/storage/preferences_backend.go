package storage

import (
	"math"

	"fyne.io/fyne/v2"
)

const missingInt = math.MinInt32

// PreferencesBackend stores the record in the fyne application preferences,
// the platform's per-user defaults store.
type PreferencesBackend struct {
	prefs fyne.Preferences
}

// NewPreferencesBackend wraps prefs.
func NewPreferencesBackend(prefs fyne.Preferences) *PreferencesBackend {
	return &PreferencesBackend{prefs: prefs}
}

func (backend *PreferencesBackend) ReadRecord() (Record, bool, error) {
	remaining := backend.prefs.IntWithFallback(KeyTimeRemaining, missingInt)
	if remaining == missingInt {
		return Record{}, false, nil
	}
	return Record{
		TimeRemaining:     remaining,
		IsWorkSession:     backend.prefs.Bool(KeyIsWorkSession),
		CompletedSessions: backend.prefs.Int(KeyCompletedSessions),
		IsPaused:          backend.prefs.Bool(KeyIsPaused),
	}, true, nil
}

func (backend *PreferencesBackend) WriteRecord(record Record) error {
	backend.prefs.SetInt(KeyTimeRemaining, record.TimeRemaining)
	backend.prefs.SetBool(KeyIsWorkSession, record.IsWorkSession)
	backend.prefs.SetInt(KeyCompletedSessions, record.CompletedSessions)
	backend.prefs.SetBool(KeyIsPaused, record.IsPaused)
	return nil
}

func (backend *PreferencesBackend) Clear() error {
	for _, key := range []string{KeyTimeRemaining, KeyIsWorkSession, KeyCompletedSessions, KeyIsPaused} {
		backend.prefs.RemoveValue(key)
	}
	return nil
}

func (backend *PreferencesBackend) Close() error { return nil }
