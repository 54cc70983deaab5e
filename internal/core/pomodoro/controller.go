package pomodoro

import (
	"context"
	"log/slog"
	"sync"

	"pomobar/internal/core/model"
	"pomobar/internal/core/timer"
	"pomobar/internal/logfields"
	"pomobar/internal/metrics"
)

// Command labels reported to the metrics recorder.
const (
	CommandStart         = "start"
	CommandPause         = "pause"
	CommandReset         = "reset"
	CommandSwitchMode    = "switch_mode"
	CommandResetSessions = "reset_sessions"
)

// View is the read-only projection the UI renders.
type View struct {
	TimeString        string
	IsWorkSession     bool
	IsPaused          bool
	CompletedSessions int
	CurrentProgress   float64
}

// Controls is what the tray and panel may call.
type Controls interface {
	View() View
	StartPauseTimer()
	ResetTimer()
	SwitchMode()
	ResetCompletedSessions()
}

// Controller adapts the engine to the UI and the system lifecycle hooks.
type Controller struct {
	engine   *timer.Engine
	recorder metrics.Recorder
	logger   *slog.Logger

	mu             sync.Mutex
	observers      []func(View)
	pausedForSleep bool
	terminateOnce  sync.Once
}

// NewController wraps engine. recorder and logger may be nil.
func NewController(engine *timer.Engine, recorder metrics.Recorder, logger *slog.Logger) *Controller {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	controller := &Controller{
		engine:   engine,
		recorder: recorder,
		logger:   logger,
	}
	recorder.SetRemainingSeconds(engine.Snapshot().RemainingSeconds)
	return controller
}

var _ Controls = (*Controller)(nil)

// Observe registers fn to receive a fresh View after every command and
// lifecycle hook.
func (controller *Controller) Observe(fn func(View)) {
	controller.mu.Lock()
	controller.observers = append(controller.observers, fn)
	controller.mu.Unlock()
}

// View derives the current projection from the engine.
func (controller *Controller) View() View {
	return viewOf(controller.engine.Snapshot())
}

func viewOf(state model.TimerState) View {
	return View{
		TimeString:        state.FormattedRemaining(),
		IsWorkSession:     state.Mode.IsWork(),
		IsPaused:          state.Paused,
		CompletedSessions: state.CompletedWorkSessions,
		CurrentProgress:   state.Progress(),
	}
}

// StartPauseTimer toggles between running and paused.
func (controller *Controller) StartPauseTimer() {
	if controller.engine.Snapshot().Paused {
		controller.engine.Start()
		controller.command(CommandStart)
		return
	}
	controller.engine.Pause()
	controller.command(CommandPause)
}

// ResetTimer rewinds the current session and pauses.
func (controller *Controller) ResetTimer() {
	controller.engine.Reset()
	controller.command(CommandReset)
}

// SwitchMode jumps to the other session type.
func (controller *Controller) SwitchMode() {
	controller.engine.SwitchMode()
	controller.command(CommandSwitchMode)
}

// ResetCompletedSessions zeroes the work session counter.
func (controller *Controller) ResetCompletedSessions() {
	controller.engine.ResetSessionCount()
	controller.command(CommandResetSessions)
}

// Run keeps the metrics in step with engine events until ctx is done or
// events is closed.
func (controller *Controller) Run(ctx context.Context, events <-chan timer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			controller.recorder.SetRemainingSeconds(event.State.RemainingSeconds)
			if event.Type == timer.EventSessionBoundary {
				controller.recorder.IncSessionCompleted(event.Ended.String())
				controller.push()
			}
		}
	}
}

// OnSleep pauses a running timer and saves the snapshot.
func (controller *Controller) OnSleep() {
	state := controller.engine.Snapshot()
	if !state.Paused {
		controller.engine.Pause()
		controller.mu.Lock()
		controller.pausedForSleep = true
		controller.mu.Unlock()
	}
	controller.persist("sleep")
	controller.logger.Info("System going to sleep, timer paused",
		logfields.Mode(state.Mode.String()),
		logfields.Remaining(state.RemainingSeconds))
	controller.push()
}

// OnWake refreshes observers. The timer stays paused until the user resumes it.
func (controller *Controller) OnWake() {
	controller.mu.Lock()
	wasRunning := controller.pausedForSleep
	controller.pausedForSleep = false
	controller.mu.Unlock()

	if wasRunning {
		controller.logger.Info("System woke up, timer was paused by sleep and can be resumed",
			logfields.Remaining(controller.engine.Snapshot().RemainingSeconds))
	} else {
		controller.logger.Info("System woke up")
	}
	controller.push()
}

// PausedForSleep reports whether the last sleep paused a running timer that
// has not been resumed since wake.
func (controller *Controller) PausedForSleep() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.pausedForSleep
}

// OnTerminate pauses a running timer and saves the final snapshot. Only the
// first call has any effect.
func (controller *Controller) OnTerminate() {
	controller.terminateOnce.Do(func() {
		if !controller.engine.Snapshot().Paused {
			controller.engine.Pause()
		}
		controller.persist("terminate")
		controller.logger.Info("Timer state saved for shutdown")
	})
}

func (controller *Controller) command(name string) {
	controller.mu.Lock()
	controller.pausedForSleep = false
	controller.mu.Unlock()

	controller.recorder.IncCommand(name)
	controller.recorder.SetRemainingSeconds(controller.engine.Snapshot().RemainingSeconds)
	controller.logger.Debug("Command handled", logfields.Command(name))
	controller.push()
}

func (controller *Controller) persist(reason string) {
	if err := controller.engine.Persist(); err != nil {
		controller.logger.Warn("Failed to save timer state",
			slog.String("reason", reason),
			logfields.Error(err))
	}
}

func (controller *Controller) push() {
	controller.mu.Lock()
	observers := append([]func(View){}, controller.observers...)
	controller.mu.Unlock()

	view := controller.View()
	for _, fn := range observers {
		fn(view)
	}
}
