package storage

import (
	"fmt"
	"log/slog"

	"pomobar/internal/core/model"
	"pomobar/internal/logfields"
)

// Gateway maps TimerState to and from the flat persisted Record.
type Gateway struct {
	backend Backend
	config  model.TimerConfig
	logger  *slog.Logger
}

// NewGateway returns a gateway over backend. config supplies the session
// durations used to recompute the active duration on load.
func NewGateway(backend Backend, config model.TimerConfig, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		backend: backend,
		config:  config.Normalized(),
		logger:  logger,
	}
}

// Save writes the snapshot. The active duration is never persisted.
func (gateway *Gateway) Save(state model.TimerState) error {
	record := Record{
		TimeRemaining:     state.RemainingSeconds,
		IsWorkSession:     state.Mode.IsWork(),
		CompletedSessions: state.CompletedWorkSessions,
		IsPaused:          state.Paused,
	}
	if err := gateway.backend.WriteRecord(record); err != nil {
		return fmt.Errorf("save timer state: %w", err)
	}
	gateway.logger.Debug("Timer state saved",
		logfields.Remaining(record.TimeRemaining),
		logfields.Mode(state.Mode.String()),
		logfields.Completed(record.CompletedSessions),
		logfields.Paused(record.IsPaused))
	return nil
}

// Load reads the snapshot. It reports false when nothing was persisted or
// the stored record could not be read; callers then use the defaults.
func (gateway *Gateway) Load() (model.TimerState, bool) {
	record, ok, err := gateway.backend.ReadRecord()
	if err != nil {
		gateway.logger.Warn("Discarding unreadable timer state", logfields.Error(err))
		return model.TimerState{}, false
	}
	if !ok {
		gateway.logger.Info("No saved timer state found")
		return model.TimerState{}, false
	}

	mode := model.ModeFromWork(record.IsWorkSession)
	duration := gateway.config.DurationFor(mode)
	state := model.TimerState{
		RemainingSeconds:      record.TimeRemaining,
		Mode:                  mode,
		Paused:                record.IsPaused,
		CompletedWorkSessions: record.CompletedSessions,
		ActiveSessionDuration: duration,
	}

	// An expired countdown restarts its session from the top, paused.
	if state.RemainingSeconds <= 0 {
		state.RemainingSeconds = duration
		state.Paused = true
	}
	if state.RemainingSeconds > duration {
		state.RemainingSeconds = duration
	}
	if state.CompletedWorkSessions < 0 {
		state.CompletedWorkSessions = 0
	}

	gateway.logger.Info("Timer state loaded",
		logfields.Remaining(state.RemainingSeconds),
		logfields.Mode(mode.String()),
		logfields.Completed(state.CompletedWorkSessions),
		logfields.Paused(state.Paused))
	return state, true
}

// LoadOrDefault returns the persisted state or the fresh-install defaults.
func (gateway *Gateway) LoadOrDefault() model.TimerState {
	if state, ok := gateway.Load(); ok {
		return state
	}
	return model.DefaultTimerState(gateway.config)
}

// Clear removes the persisted snapshot.
func (gateway *Gateway) Clear() error {
	if err := gateway.backend.Clear(); err != nil {
		return fmt.Errorf("clear timer state: %w", err)
	}
	return nil
}
