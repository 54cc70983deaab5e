package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type yamlRecord struct {
	TimeRemaining     *int `yaml:"timeRemaining"`
	IsWorkSession     bool `yaml:"isWorkSession"`
	CompletedSessions int  `yaml:"completedSessions"`
	IsPaused          bool `yaml:"isPaused"`
}

// YAMLBackend stores the record as a small YAML document.
type YAMLBackend struct {
	path string
}

// NewYAMLBackend returns a backend writing to path.
func NewYAMLBackend(path string) *YAMLBackend {
	return &YAMLBackend{path: path}
}

// Path returns the state file location.
func (backend *YAMLBackend) Path() string {
	return backend.path
}

func (backend *YAMLBackend) ReadRecord() (Record, bool, error) {
	rawData, err := os.ReadFile(backend.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("read state file: %w", err)
	}

	var fileData yamlRecord
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return Record{}, false, fmt.Errorf("parse state yaml: %w", err)
	}
	if fileData.TimeRemaining == nil {
		return Record{}, false, nil
	}

	return Record{
		TimeRemaining:     *fileData.TimeRemaining,
		IsWorkSession:     fileData.IsWorkSession,
		CompletedSessions: fileData.CompletedSessions,
		IsPaused:          fileData.IsPaused,
	}, true, nil
}

// WriteRecord replaces the state file atomically.
func (backend *YAMLBackend) WriteRecord(record Record) error {
	dir := filepath.Dir(backend.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	remaining := record.TimeRemaining
	serialized, err := yaml.Marshal(yamlRecord{
		TimeRemaining:     &remaining,
		IsWorkSession:     record.IsWorkSession,
		CompletedSessions: record.CompletedSessions,
		IsPaused:          record.IsPaused,
	})
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(serialized); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, backend.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (backend *YAMLBackend) Clear() error {
	if err := os.Remove(backend.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

func (backend *YAMLBackend) Close() error { return nil }
