package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"

	"pomobar/internal/config"
	"pomobar/internal/logfields"
	"pomobar/internal/platform"
	"pomobar/internal/storage"
)

// environment is the resolved settings file, its directory and contents.
type environment struct {
	appDir       string
	settingsPath string
	settings     config.Settings
}

// loadEnvironment reads settings from configPath, or from the user config
// dir when configPath is empty. A missing file is created with defaults so
// it can be edited.
func loadEnvironment(configPath string, logger *slog.Logger) (environment, error) {
	var env environment
	if configPath != "" {
		env.settingsPath = configPath
		env.appDir = filepath.Dir(configPath)
	} else {
		appDir, err := storage.AppDir(platform.NewService(), appName)
		if err != nil {
			return env, err
		}
		env.appDir = appDir
		env.settingsPath = storage.SettingsPath(appDir)
	}

	settings, err := storage.LoadSettings(env.settingsPath)
	if err != nil {
		logger.Warn("Using default settings", logfields.Path(env.settingsPath), logfields.Error(err))
	}
	env.settings = settings

	if _, statErr := os.Stat(env.settingsPath); errors.Is(statErr, os.ErrNotExist) {
		if err := storage.SaveSettings(env.settingsPath, settings); err != nil {
			logger.Warn("Failed to write default settings", logfields.Path(env.settingsPath), logfields.Error(err))
		} else {
			logger.Info("Wrote default settings", logfields.Path(env.settingsPath))
		}
	}
	return env, nil
}

// openGateway opens the configured snapshot backend. The caller closes the
// returned backend.
func (env environment) openGateway(prefs fyne.Preferences, logger *slog.Logger) (*storage.Gateway, storage.Backend, error) {
	backend, err := storage.OpenBackend(env.settings.StateBackend, env.appDir, prefs)
	if err != nil {
		return nil, nil, fmt.Errorf("open state backend: %w", err)
	}
	logger.Debug("State backend opened", logfields.Backend(env.settings.StateBackend))
	return storage.NewGateway(backend, env.settings.TimerConfig(), logger), backend, nil
}
