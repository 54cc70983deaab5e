//go:build darwin

package platform

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

func (service *platformService) EnableAutostart(appName string, command []string) error {
	if err := validateAutostart(appName, command); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	path, err := service.launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := writeAutostartFile(path, launchAgentPlist(launchAgentLabel(appName), command)); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if strings.TrimSpace(appName) == "" {
		return fmt.Errorf("disable autostart: %w", errEmptyAppName)
	}
	path, err := service.launchAgentPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := removeAutostartFile(path); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	path, err := service.launchAgentPath(appName)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return autostartFileExists(path)
}

func (service *platformService) launchAgentPath(appName string) (string, error) {
	homeDir, err := service.homeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents", launchAgentLabel(appName)+".plist"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

func launchAgentLabel(appName string) string {
	return "com.pomobar." + slug(appName)
}

func launchAgentPlist(label string, command []string) string {
	var args strings.Builder
	for _, arg := range command {
		args.WriteString("\t\t<string>")
		args.WriteString(escapeXML(arg))
		args.WriteString("</string>\n")
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
%s	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>ProcessType</key>
	<string>Interactive</string>
</dict>
</plist>
`, escapeXML(label), args.String())
}

func escapeXML(value string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(value))
	return escaped.String()
}
