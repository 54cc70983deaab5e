//go:build !linux

package platform

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// NewSleepWatcher returns the wall-clock gap detector.
func NewSleepWatcher(logger *slog.Logger) SleepWatcher {
	return NewGapDetector(clockwork.NewRealClock(), 0, 0, logger)
}
