package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pomobar/internal/config"
	"pomobar/internal/logfields"
)

const (
	settingsFileName  = "settings.yaml"
	stateFileName     = "state.yaml"
	stateDatabaseName = "state.db"
)

// DirProvider resolves the OS-standard configuration directory.
type DirProvider interface {
	GetConfigDir() (string, error)
}

type yamlSettings struct {
	WorkDurationSeconds  int    `yaml:"work_duration_seconds"`
	BreakDurationSeconds int    `yaml:"break_duration_seconds"`
	StateBackend         string `yaml:"state_backend,omitempty"`
	Notifications        *bool  `yaml:"notifications,omitempty"`
	MetricsAddress       string `yaml:"metrics_address,omitempty"`
}

// AppDir returns the per-application directory inside the user config dir.
func AppDir(dirs DirProvider, appName string) (string, error) {
	configDir, err := dirs.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

// SettingsPath returns the settings.yaml location inside appDir.
func SettingsPath(appDir string) string {
	return filepath.Join(appDir, settingsFileName)
}

// LoadSettings reads user preferences from YAML.
// If the settings file does not exist, default settings are returned.
func LoadSettings(path string) (config.Settings, error) {
	settings := config.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(path string, settings config.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	notifications := settings.Notifications
	fileData := yamlSettings{
		WorkDurationSeconds:  int(settings.WorkDuration / time.Second),
		BreakDurationSeconds: int(settings.BreakDuration / time.Second),
		StateBackend:         settings.StateBackend,
		Notifications:        &notifications,
		MetricsAddress:       settings.MetricsAddress,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *config.Settings, fileData yamlSettings) {
	if fileData.WorkDurationSeconds > 0 {
		settings.WorkDuration = time.Duration(fileData.WorkDurationSeconds) * time.Second
	}
	if fileData.BreakDurationSeconds > 0 {
		settings.BreakDuration = time.Duration(fileData.BreakDurationSeconds) * time.Second
	}

	if fileData.StateBackend != "" {
		if config.ValidBackend(fileData.StateBackend) {
			settings.StateBackend = fileData.StateBackend
		} else {
			slog.Warn("Ignoring unknown state backend", logfields.Backend(fileData.StateBackend))
		}
	}
	if fileData.Notifications != nil {
		settings.Notifications = *fileData.Notifications
	}

	settings.MetricsAddress = fileData.MetricsAddress
}
