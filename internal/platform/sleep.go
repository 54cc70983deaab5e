package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// SleepHandler receives system power transitions.
type SleepHandler interface {
	OnSleep()
	OnWake()
}

// SleepWatcher reports sleep and wake to a handler until ctx is done.
type SleepWatcher interface {
	Watch(ctx context.Context, handler SleepHandler) error
}

const (
	defaultGapInterval  = 5 * time.Second
	defaultGapThreshold = 30 * time.Second
)

// GapDetector infers a suspend from a wall-clock jump between two polls.
// It can only notice after resume, so OnSleep and OnWake arrive together.
type GapDetector struct {
	clock     clockwork.Clock
	interval  time.Duration
	threshold time.Duration
	logger    *slog.Logger
}

// NewGapDetector polls every interval and treats any extra delay beyond
// threshold as a suspend. Zero values select the defaults.
func NewGapDetector(clock clockwork.Clock, interval, threshold time.Duration, logger *slog.Logger) *GapDetector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = defaultGapInterval
	}
	if threshold <= 0 {
		threshold = defaultGapThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GapDetector{clock: clock, interval: interval, threshold: threshold, logger: logger}
}

func (detector *GapDetector) Watch(ctx context.Context, handler SleepHandler) error {
	last := detector.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-detector.clock.After(detector.interval):
		}

		now := detector.clock.Now()
		if gap := now.Sub(last) - detector.interval; gap > detector.threshold {
			detector.logger.Info("Wall clock jumped, assuming the system slept",
				slog.Duration("gap", gap.Round(time.Second)))
			handler.OnSleep()
			handler.OnWake()
		}
		last = now
	}
}
