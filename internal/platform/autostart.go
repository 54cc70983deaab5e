package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	// EnableAutostart registers command (executable first) to run at login.
	EnableAutostart(appName string, command []string) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) (bool, error)
}

var errEmptyAppName = errors.New("app name is empty")

type platformService struct {
	// home overrides the user home directory in tests.
	home string
}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	if service.home == "" {
		if configDir, err := os.UserConfigDir(); err == nil && configDir != "" {
			return configDir, nil
		}
	}
	homeDir, err := service.homeDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return fallbackConfigDir(homeDir), nil
}

func (service *platformService) homeDir() (string, error) {
	if service.home != "" {
		return service.home, nil
	}
	return os.UserHomeDir()
}

// slug turns an application name into a lowercase, dash-separated identifier.
func slug(appName string) string {
	fields := strings.Fields(strings.ToLower(appName))
	if len(fields) == 0 {
		return "pomobar"
	}
	return strings.Join(fields, "-")
}

func validateAutostart(appName string, command []string) error {
	if strings.TrimSpace(appName) == "" {
		return errEmptyAppName
	}
	if len(command) == 0 || command[0] == "" {
		return errors.New("exec path is empty")
	}
	return nil
}

// writeAutostartFile replaces path with content, creating parent directories.
func writeAutostartFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func removeAutostartFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func autostartFileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
