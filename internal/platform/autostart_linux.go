//go:build linux

package platform

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (service *platformService) EnableAutostart(appName string, command []string) error {
	if err := validateAutostart(appName, command); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	path, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := writeAutostartFile(path, desktopEntry(appName, command)); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if strings.TrimSpace(appName) == "" {
		return fmt.Errorf("disable autostart: %w", errEmptyAppName)
	}
	path, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := removeAutostartFile(path); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	path, err := service.desktopEntryPath(appName)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return autostartFileExists(path)
}

func (service *platformService) desktopEntryPath(appName string) (string, error) {
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(appName)+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

// desktopEntry renders an XDG autostart entry. Arguments containing spaces
// are quoted as the Exec key requires.
func desktopEntry(appName string, command []string) string {
	args := make([]string, len(command))
	for i, arg := range command {
		if strings.ContainsAny(arg, " \t\"") {
			arg = `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
		}
		args[i] = arg
	}

	var entry strings.Builder
	entry.WriteString("[Desktop Entry]\n")
	entry.WriteString("Type=Application\n")
	fmt.Fprintf(&entry, "Name=%s\n", appName)
	entry.WriteString("Comment=Pomodoro timer in the system tray\n")
	fmt.Fprintf(&entry, "Exec=%s\n", strings.Join(args, " "))
	entry.WriteString("X-GNOME-Autostart-enabled=true\n")
	entry.WriteString("Terminal=false\n")
	return entry.String()
}
