//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(appName string, command []string) error {
	if err := validateAutostart(appName, command); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := runReg("add", registryRunKey, "/v", appName, "/t", "REG_SZ", "/d", runCommandLine(command), "/f"); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if strings.TrimSpace(appName) == "" {
		return fmt.Errorf("disable autostart: %w", errEmptyAppName)
	}
	enabled, err := service.AutostartEnabled(appName)
	if err != nil || !enabled {
		return err
	}
	if err := runReg("delete", registryRunKey, "/v", appName, "/f"); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

// AutostartEnabled reports whether the Run key holds a value for appName.
// reg query exits non-zero when the value is missing.
func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	if err := exec.Command("reg", "query", registryRunKey, "/v", appName).Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return true, nil
}

func runReg(args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("reg %s: %w: %s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func runCommandLine(command []string) string {
	parts := make([]string, len(command))
	for i, arg := range command {
		arg = strings.Trim(arg, `"`)
		if i == 0 || strings.ContainsAny(arg, " \t") {
			arg = `"` + arg + `"`
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}
