package model

import "time"

const (
	// DefaultWorkDuration is the length of a focus session.
	DefaultWorkDuration = 25 * time.Minute
	// DefaultBreakDuration is the length of the break that follows a focus session.
	DefaultBreakDuration = 5 * time.Minute
)

// TimerConfig contains the fixed session lengths for the timer engine.
type TimerConfig struct {
	WorkDuration  time.Duration
	BreakDuration time.Duration
}

// DefaultTimerConfig returns the classic 25/5 Pomodoro schedule.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		WorkDuration:  DefaultWorkDuration,
		BreakDuration: DefaultBreakDuration,
	}
}

// Normalized replaces durations shorter than one second with the defaults
// and truncates the rest to whole seconds.
func (config TimerConfig) Normalized() TimerConfig {
	if config.WorkDuration < time.Second {
		config.WorkDuration = DefaultWorkDuration
	}
	if config.BreakDuration < time.Second {
		config.BreakDuration = DefaultBreakDuration
	}
	config.WorkDuration = config.WorkDuration.Truncate(time.Second)
	config.BreakDuration = config.BreakDuration.Truncate(time.Second)
	return config
}

// DurationFor returns the session length in seconds for the given mode.
func (config TimerConfig) DurationFor(mode Mode) int {
	if mode == ModeBreak {
		return int(config.BreakDuration / time.Second)
	}
	return int(config.WorkDuration / time.Second)
}
