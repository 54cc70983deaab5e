package timer

import (
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"pomobar/internal/core/model"
	"pomobar/internal/logfields"
)

// TickSource delivers the once-per-second callback that drives the countdown.
// Arm replaces any previously armed callback; Disarm stops delivery.
type TickSource interface {
	Arm(tick func()) error
	Disarm()
}

// Store persists engine snapshots.
type Store interface {
	Save(state model.TimerState) error
}

// Option customizes an Engine.
type Option func(*Engine)

// WithState restores a previously persisted state.
func WithState(state model.TimerState) Option {
	return func(engine *Engine) {
		engine.state = state
	}
}

// WithStore saves a snapshot after every state change.
func WithStore(store Store) Option {
	return func(engine *Engine) {
		engine.store = store
	}
}

// WithClock sets the clock used for event timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(engine *Engine) {
		engine.clock = clock
	}
}

// WithLogger sets the logger used for persistence and tick source failures.
func WithLogger(logger *slog.Logger) Option {
	return func(engine *Engine) {
		engine.logger = logger
	}
}

// Engine is the Pomodoro state machine. All methods are safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	config     model.TimerConfig
	state      model.TimerState
	ticks      TickSource
	store      Store
	clock      clockwork.Clock
	logger     *slog.Logger
	armed      bool
	generation uint64
	events     []chan Event
}

// New creates an Engine. Without WithState it starts from the fresh-install
// defaults. A restored state that is not paused resumes ticking immediately.
func New(config model.TimerConfig, ticks TickSource, options ...Option) *Engine {
	config = config.Normalized()
	engine := &Engine{
		config: config,
		state:  model.DefaultTimerState(config),
		ticks:  ticks,
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
	}
	for _, option := range options {
		option(engine)
	}
	engine.normalizeLocked()

	if !engine.state.Paused {
		engine.armLocked()
	}
	return engine
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// Stop disarms the tick source and closes observers. State is left untouched.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	engine.disarmLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Start resumes the countdown and re-arms the tick source.
func (engine *Engine) Start() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.startLocked()
	engine.commitLocked(EventStateChange)
}

// Pause freezes the countdown. Pausing a paused timer does nothing.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.state.Paused && !engine.armed {
		return
	}
	engine.state.Paused = true
	engine.disarmLocked()
	engine.commitLocked(EventStateChange)
}

// Reset pauses and rewinds the current session to its full duration.
func (engine *Engine) Reset() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.state.Paused = true
	engine.disarmLocked()
	engine.rewindLocked()
	engine.commitLocked(EventStateChange)
}

// SwitchMode toggles between work and break at full duration. A running
// timer keeps running in the new mode; a paused one stays paused.
func (engine *Engine) SwitchMode() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	wasPaused := engine.state.Paused
	engine.state.Paused = true
	engine.disarmLocked()

	engine.state.Mode = engine.state.Mode.Toggle()
	engine.rewindLocked()

	if !wasPaused {
		engine.startLocked()
	}
	engine.commitLocked(EventStateChange)
}

// ResetSessionCount clears the completed work session counter.
func (engine *Engine) ResetSessionCount() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.state.CompletedWorkSessions = 0
	engine.commitLocked(EventStateChange)
}

// Tick advances the countdown by one second. It is a no-op while paused.
func (engine *Engine) Tick() {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.tickLocked()
}

// Persist saves the current state through the configured store.
func (engine *Engine) Persist() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.store == nil {
		return nil
	}
	return engine.store.Save(engine.state)
}

// Snapshot returns a copy of the current state.
func (engine *Engine) Snapshot() model.TimerState {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.state
}

// Progress returns the elapsed fraction of the current session.
func (engine *Engine) Progress() float64 {
	return engine.Snapshot().Progress()
}

// FormattedRemaining returns the remaining time as MM:SS.
func (engine *Engine) FormattedRemaining() string {
	return engine.Snapshot().FormattedRemaining()
}

// DurationFor returns the fixed session length in seconds for mode.
func (engine *Engine) DurationFor(mode model.Mode) int {
	return engine.config.DurationFor(mode)
}

// Config returns the normalized configuration.
func (engine *Engine) Config() model.TimerConfig {
	return engine.config
}

// Armed reports whether the tick source is currently delivering ticks.
func (engine *Engine) Armed() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.armed
}

func (engine *Engine) tickGeneration(generation uint64) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	// Callbacks from a disarmed generation arrive late and must not touch the
	// state of the session that replaced it.
	if generation != engine.generation {
		return
	}
	engine.tickLocked()
}

func (engine *Engine) tickLocked() {
	if engine.state.Paused {
		return
	}

	if engine.state.RemainingSeconds > 0 {
		engine.state.RemainingSeconds--
	}
	if engine.state.RemainingSeconds > 0 {
		engine.commitLocked(EventTick)
		return
	}

	ended := engine.state.Mode
	if ended.IsWork() {
		engine.state.CompletedWorkSessions++
	}
	engine.state.Mode = ended.Toggle()
	engine.rewindLocked()
	if !engine.armed {
		engine.armLocked()
	}

	engine.logger.Info("Session complete",
		logfields.Mode(ended.String()),
		logfields.Completed(engine.state.CompletedWorkSessions))

	engine.persistLocked()
	engine.emitLocked(Event{
		Type:  EventSessionBoundary,
		State: engine.state,
		Ended: ended,
		At:    engine.clock.Now(),
	})
}

func (engine *Engine) startLocked() {
	engine.state.Paused = false
	engine.disarmLocked()
	engine.armLocked()
}

func (engine *Engine) armLocked() {
	engine.generation++
	generation := engine.generation
	if err := engine.ticks.Arm(func() { engine.tickGeneration(generation) }); err != nil {
		engine.logger.Error("Failed to arm tick source", logfields.Error(err))
		engine.armed = false
		return
	}
	engine.armed = true
}

func (engine *Engine) disarmLocked() {
	engine.generation++
	if !engine.armed {
		return
	}
	engine.ticks.Disarm()
	engine.armed = false
}

func (engine *Engine) rewindLocked() {
	duration := engine.config.DurationFor(engine.state.Mode)
	engine.state.RemainingSeconds = duration
	engine.state.ActiveSessionDuration = duration
}

func (engine *Engine) normalizeLocked() {
	engine.state.ActiveSessionDuration = engine.config.DurationFor(engine.state.Mode)
	if engine.state.RemainingSeconds > engine.state.ActiveSessionDuration {
		engine.state.RemainingSeconds = engine.state.ActiveSessionDuration
	}
	if engine.state.RemainingSeconds <= 0 {
		engine.state.RemainingSeconds = engine.state.ActiveSessionDuration
	}
	if engine.state.CompletedWorkSessions < 0 {
		engine.state.CompletedWorkSessions = 0
	}
}

func (engine *Engine) commitLocked(eventType EventType) {
	engine.persistLocked()
	engine.emitLocked(Event{
		Type:  eventType,
		State: engine.state,
		At:    engine.clock.Now(),
	})
}

func (engine *Engine) persistLocked() {
	if engine.store == nil {
		return
	}
	if err := engine.store.Save(engine.state); err != nil {
		engine.logger.Warn("Failed to save timer state", logfields.Error(err))
	}
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}
