package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"

	"pomobar/internal/config"
)

// Snapshot keys. Absence of KeyTimeRemaining marks a fresh install.
const (
	KeyTimeRemaining     = "timeRemaining"
	KeyIsWorkSession     = "isWorkSession"
	KeyCompletedSessions = "completedSessions"
	KeyIsPaused          = "isPaused"
)

// ErrUnknownBackend is returned by OpenBackend for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown state backend")

// Record is the flat persisted form of the timer state.
type Record struct {
	TimeRemaining     int
	IsWorkSession     bool
	CompletedSessions int
	IsPaused          bool
}

// Backend is durable key-value storage for a single Record.
type Backend interface {
	// ReadRecord reports false when no record has been written yet.
	ReadRecord() (Record, bool, error)
	WriteRecord(record Record) error
	Clear() error
	Close() error
}

// OpenBackend constructs the named backend. Files live in appDir; prefs is
// only used by the preferences backend.
func OpenBackend(name, appDir string, prefs fyne.Preferences) (Backend, error) {
	switch name {
	case config.BackendPreferences:
		if prefs == nil {
			return nil, fmt.Errorf("open %s backend: no preferences available", name)
		}
		return NewPreferencesBackend(prefs), nil
	case config.BackendYAML:
		return NewYAMLBackend(filepath.Join(appDir, stateFileName)), nil
	case config.BackendSQLite:
		return NewSQLiteBackend(filepath.Join(appDir, stateDatabaseName))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// MemoryBackend keeps the record in memory.
type MemoryBackend struct {
	mu      sync.Mutex
	record  Record
	present bool
	writes  int
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (backend *MemoryBackend) ReadRecord() (Record, bool, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return backend.record, backend.present, nil
}

func (backend *MemoryBackend) WriteRecord(record Record) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.record = record
	backend.present = true
	backend.writes++
	return nil
}

func (backend *MemoryBackend) Clear() error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.record = Record{}
	backend.present = false
	return nil
}

func (backend *MemoryBackend) Close() error { return nil }

// Writes returns how many records have been written.
func (backend *MemoryBackend) Writes() int {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	return backend.writes
}
