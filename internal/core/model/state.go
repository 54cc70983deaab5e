package model

import "fmt"

// Mode selects which fixed duration the countdown runs from.
type Mode int

const (
	ModeWork Mode = iota
	ModeBreak
)

// String returns the lowercase mode name used in logs and metric labels.
func (mode Mode) String() string {
	if mode == ModeBreak {
		return "break"
	}
	return "work"
}

// Toggle returns the other mode.
func (mode Mode) Toggle() Mode {
	if mode == ModeBreak {
		return ModeWork
	}
	return ModeBreak
}

// IsWork reports whether the mode is a focus session.
func (mode Mode) IsWork() bool {
	return mode == ModeWork
}

// ModeFromWork maps the persisted isWorkSession flag to a Mode.
func ModeFromWork(isWork bool) Mode {
	if isWork {
		return ModeWork
	}
	return ModeBreak
}

// TimerState is the complete countdown state owned by the timer engine.
type TimerState struct {
	RemainingSeconds      int
	Mode                  Mode
	Paused                bool
	CompletedWorkSessions int
	ActiveSessionDuration int
}

// DefaultTimerState is the state of a fresh install: a paused, full work session.
func DefaultTimerState(config TimerConfig) TimerState {
	duration := config.DurationFor(ModeWork)
	return TimerState{
		RemainingSeconds:      duration,
		Mode:                  ModeWork,
		Paused:                true,
		ActiveSessionDuration: duration,
	}
}

// Progress returns the elapsed fraction of the current session in [0,1].
func (state TimerState) Progress() float64 {
	if state.ActiveSessionDuration <= 0 {
		return 0
	}
	progress := 1 - float64(state.RemainingSeconds)/float64(state.ActiveSessionDuration)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// FormattedRemaining renders the countdown as zero-padded MM:SS.
func (state TimerState) FormattedRemaining() string {
	return FormatSeconds(state.RemainingSeconds)
}

// FormatSeconds renders a number of seconds as zero-padded MM:SS.
func FormatSeconds(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
