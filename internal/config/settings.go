package config

import (
	"time"

	"pomobar/internal/core/model"
)

// Snapshot backends selectable through settings.yaml.
const (
	BackendPreferences = "preferences"
	BackendYAML        = "yaml"
	BackendSQLite      = "sqlite"
)

// Settings defines user preferences read once at launch.
type Settings struct {
	WorkDuration  time.Duration
	BreakDuration time.Duration
	StateBackend  string
	Notifications bool

	MetricsAddress string
}

// DefaultSettings returns default settings for Pomobar.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:  model.DefaultWorkDuration,
		BreakDuration: model.DefaultBreakDuration,
		StateBackend:  BackendPreferences,
		Notifications: true,
	}
}

// TimerConfig converts settings to TimerConfig.
func (settings Settings) TimerConfig() model.TimerConfig {
	return model.TimerConfig{
		WorkDuration:  settings.WorkDuration,
		BreakDuration: settings.BreakDuration,
	}.Normalized()
}

// ValidBackend reports whether name is a known snapshot backend.
func ValidBackend(name string) bool {
	switch name {
	case BackendPreferences, BackendYAML, BackendSQLite:
		return true
	}
	return false
}
