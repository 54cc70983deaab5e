package timer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomobar/internal/clock"
	"pomobar/internal/core/model"
)

type recordingStore struct {
	mu     sync.Mutex
	saves  []model.TimerState
	failed bool
}

func (store *recordingStore) Save(state model.TimerState) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.saves = append(store.saves, state)
	if store.failed {
		return errors.New("disk full")
	}
	return nil
}

func (store *recordingStore) last() model.TimerState {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.saves[len(store.saves)-1]
}

func (store *recordingStore) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.saves)
}

type failingTicks struct{}

func (failingTicks) Arm(func()) error { return errors.New("no scheduler") }
func (failingTicks) Disarm()          {}

func newTestEngine(t *testing.T, options ...Option) (*Engine, *clock.Manual) {
	t.Helper()
	ticks := clock.NewManual()
	engine := New(model.DefaultTimerConfig(), ticks, options...)
	t.Cleanup(engine.Stop)
	return engine, ticks
}

func drain(events <-chan Event) []Event {
	var out []Event
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, event)
		default:
			return out
		}
	}
}

func boundaries(events []Event) []Event {
	var out []Event
	for _, event := range events {
		if event.Type == EventSessionBoundary {
			out = append(out, event)
		}
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	engine, ticks := newTestEngine(t)

	state := engine.Snapshot()
	assert.Equal(t, model.TimerState{
		RemainingSeconds:      1500,
		Mode:                  model.ModeWork,
		Paused:                true,
		ActiveSessionDuration: 1500,
	}, state)
	assert.Equal(t, "25:00", engine.FormattedRemaining())
	assert.Equal(t, 0.0, engine.Progress())
	assert.False(t, ticks.Armed())
	assert.Equal(t, 300, engine.DurationFor(model.ModeBreak))
}

func TestNewRestoresState(t *testing.T) {
	restored := model.TimerState{
		RemainingSeconds:      120,
		Mode:                  model.ModeBreak,
		Paused:                true,
		CompletedWorkSessions: 4,
	}
	engine, ticks := newTestEngine(t, WithState(restored))

	state := engine.Snapshot()
	assert.Equal(t, 120, state.RemainingSeconds)
	assert.Equal(t, 300, state.ActiveSessionDuration, "active duration is derived from mode")
	assert.Equal(t, 4, state.CompletedWorkSessions)
	assert.False(t, ticks.Armed())
}

func TestNewRestoresRunningStateAndArms(t *testing.T) {
	engine, ticks := newTestEngine(t, WithState(model.TimerState{
		RemainingSeconds: 10,
		Mode:             model.ModeWork,
		Paused:           false,
	}))

	assert.True(t, ticks.Armed())
	assert.True(t, engine.Armed())
	ticks.Fire()
	assert.Equal(t, 9, engine.Snapshot().RemainingSeconds)
}

func TestNewClampsRemaining(t *testing.T) {
	engine, _ := newTestEngine(t, WithState(model.TimerState{
		RemainingSeconds:      5000,
		Mode:                  model.ModeBreak,
		Paused:                true,
		CompletedWorkSessions: -2,
	}))

	state := engine.Snapshot()
	assert.Equal(t, 300, state.RemainingSeconds)
	assert.Zero(t, state.CompletedWorkSessions)
}

func TestStartArmsAndPauseDisarms(t *testing.T) {
	engine, ticks := newTestEngine(t)

	engine.Start()
	assert.False(t, engine.Snapshot().Paused)
	assert.True(t, ticks.Armed())

	assert.Equal(t, 3, ticks.FireN(3))
	assert.Equal(t, 1497, engine.Snapshot().RemainingSeconds)

	engine.Pause()
	assert.True(t, engine.Snapshot().Paused)
	assert.False(t, ticks.Armed())

	engine.Pause()
	assert.True(t, engine.Snapshot().Paused, "pause is idempotent")
}

func TestTickWhilePausedIsNoop(t *testing.T) {
	engine, _ := newTestEngine(t)

	before := engine.Snapshot()
	engine.Tick()
	assert.Equal(t, before, engine.Snapshot())
}

func TestWorkSessionCompletesAfterNTicks(t *testing.T) {
	for _, n := range []int{1, 2, 7, 60} {
		engine, ticks := newTestEngine(t, WithState(model.TimerState{
			RemainingSeconds:      n,
			Mode:                  model.ModeWork,
			Paused:                true,
			CompletedWorkSessions: 2,
		}))
		events := engine.Subscribe(n + 8)
		engine.Start()

		require.Equal(t, n, ticks.FireN(n), "n=%d", n)

		state := engine.Snapshot()
		assert.Equal(t, model.ModeBreak, state.Mode, "n=%d", n)
		assert.Equal(t, 300, state.RemainingSeconds, "n=%d", n)
		assert.Equal(t, 3, state.CompletedWorkSessions, "n=%d", n)
		assert.False(t, state.Paused, "n=%d", n)
		assert.True(t, ticks.Armed(), "next session continues automatically")

		emitted := boundaries(drain(events))
		require.Len(t, emitted, 1, "n=%d", n)
		assert.Equal(t, model.ModeWork, emitted[0].Ended)
	}
}

func TestWorkSessionOneSecondLeft(t *testing.T) {
	engine, ticks := newTestEngine(t, WithState(model.TimerState{
		RemainingSeconds: 1,
		Mode:             model.ModeWork,
		Paused:           false,
	}))
	events := engine.Subscribe(4)

	engine.Tick()

	state := engine.Snapshot()
	assert.Equal(t, model.ModeBreak, state.Mode)
	assert.Equal(t, 300, state.RemainingSeconds)
	assert.Equal(t, 1, state.CompletedWorkSessions)
	assert.True(t, ticks.Armed())

	emitted := boundaries(drain(events))
	require.Len(t, emitted, 1)
	assert.Equal(t, model.ModeWork, emitted[0].Ended)
	assert.Equal(t, model.ModeBreak, emitted[0].State.Mode)
}

func TestBreakCompletionDoesNotCount(t *testing.T) {
	engine, ticks := newTestEngine(t, WithState(model.TimerState{
		RemainingSeconds:      2,
		Mode:                  model.ModeBreak,
		Paused:                false,
		CompletedWorkSessions: 5,
	}))
	events := engine.Subscribe(8)

	ticks.FireN(2)

	state := engine.Snapshot()
	assert.Equal(t, model.ModeWork, state.Mode)
	assert.Equal(t, 1500, state.RemainingSeconds)
	assert.Equal(t, 5, state.CompletedWorkSessions)

	emitted := boundaries(drain(events))
	require.Len(t, emitted, 1)
	assert.Equal(t, model.ModeBreak, emitted[0].Ended)
}

func TestProgressMonotonicAndResetsAtTransition(t *testing.T) {
	config := model.TimerConfig{WorkDuration: 5 * time.Second, BreakDuration: 3 * time.Second}
	ticks := clock.NewManual()
	engine := New(config, ticks)
	t.Cleanup(engine.Stop)
	engine.Start()

	previous := engine.Progress()
	assert.Equal(t, 0.0, previous)
	for i := 0; i < 4; i++ {
		ticks.Fire()
		current := engine.Progress()
		assert.GreaterOrEqual(t, current, previous)
		previous = current
	}
	assert.InDelta(t, 0.8, previous, 1e-9)

	ticks.Fire()
	assert.Equal(t, model.ModeBreak, engine.Snapshot().Mode)
	assert.Equal(t, 0.0, engine.Progress())
}

func TestSwitchModeWhilePaused(t *testing.T) {
	engine, ticks := newTestEngine(t)

	engine.SwitchMode()

	state := engine.Snapshot()
	assert.True(t, state.Paused)
	assert.Equal(t, model.ModeBreak, state.Mode)
	assert.Equal(t, 300, state.RemainingSeconds)
	assert.Equal(t, 300, state.ActiveSessionDuration)
	assert.False(t, ticks.Armed())
}

func TestSwitchModeWhileRunning(t *testing.T) {
	engine, ticks := newTestEngine(t, WithState(model.TimerState{
		RemainingSeconds: 1000,
		Mode:             model.ModeWork,
		Paused:           false,
	}))

	engine.SwitchMode()

	state := engine.Snapshot()
	assert.False(t, state.Paused)
	assert.Equal(t, model.ModeBreak, state.Mode)
	assert.Equal(t, 300, state.RemainingSeconds)
	assert.True(t, ticks.Armed())

	ticks.Fire()
	assert.Equal(t, 299, engine.Snapshot().RemainingSeconds)
}

func TestStaleTickIsIgnored(t *testing.T) {
	engine, ticks := newTestEngine(t)
	engine.Start()
	stale := ticks.Current()
	require.NotNil(t, stale)

	engine.SwitchMode()
	stale()
	assert.Equal(t, 300, engine.Snapshot().RemainingSeconds, "tick from the work session must not touch the break")

	engine.Reset()
	engine.Start()
	ticks.Fire()
	assert.Equal(t, 299, engine.Snapshot().RemainingSeconds)
}

func TestResetKeepsSessionCount(t *testing.T) {
	engine, ticks := newTestEngine(t, WithState(model.TimerState{
		RemainingSeconds:      700,
		Mode:                  model.ModeWork,
		Paused:                false,
		CompletedWorkSessions: 3,
	}))

	engine.Reset()

	state := engine.Snapshot()
	assert.True(t, state.Paused)
	assert.Equal(t, 1500, state.RemainingSeconds)
	assert.Equal(t, 3, state.CompletedWorkSessions)
	assert.False(t, ticks.Armed())
}

func TestResetSessionCountKeepsCountdown(t *testing.T) {
	engine, ticks := newTestEngine(t, WithState(model.TimerState{
		RemainingSeconds:      42,
		Mode:                  model.ModeBreak,
		Paused:                false,
		CompletedWorkSessions: 9,
	}))

	engine.ResetSessionCount()

	state := engine.Snapshot()
	assert.Zero(t, state.CompletedWorkSessions)
	assert.Equal(t, 42, state.RemainingSeconds)
	assert.Equal(t, model.ModeBreak, state.Mode)
	assert.False(t, state.Paused)
	assert.True(t, ticks.Armed())
}

func TestEveryMutationIsPersisted(t *testing.T) {
	store := &recordingStore{}
	engine, ticks := newTestEngine(t, WithStore(store))

	engine.Start()
	ticks.FireN(2)
	engine.Pause()
	engine.SwitchMode()
	engine.Reset()
	engine.ResetSessionCount()

	assert.Equal(t, 7, store.count())
	assert.Equal(t, engine.Snapshot(), store.last())
}

func TestPersistFailureDoesNotAffectState(t *testing.T) {
	store := &recordingStore{failed: true}
	engine, ticks := newTestEngine(t, WithStore(store))

	engine.Start()
	ticks.Fire()

	assert.Equal(t, 1499, engine.Snapshot().RemainingSeconds)
	assert.Error(t, engine.Persist())
}

func TestArmFailureStillStarts(t *testing.T) {
	engine := New(model.DefaultTimerConfig(), failingTicks{})
	t.Cleanup(engine.Stop)

	engine.Start()
	assert.False(t, engine.Snapshot().Paused)
	assert.False(t, engine.Armed())

	engine.Tick()
	assert.Equal(t, 1499, engine.Snapshot().RemainingSeconds)
}

func TestEventsCarryTimestamp(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	engine, _ := newTestEngine(t, WithClock(fakeClock))
	events := engine.Subscribe(2)

	engine.Start()

	event := <-events
	assert.Equal(t, EventStateChange, event.Type)
	assert.Equal(t, fakeClock.Now(), event.At)
	assert.False(t, event.State.Paused)
}

func TestSubscriberOverflowDoesNotBlock(t *testing.T) {
	engine, ticks := newTestEngine(t)
	events := engine.Subscribe(1)

	engine.Start()
	ticks.FireN(50)

	assert.Len(t, drain(events), 1)
	assert.Equal(t, 1450, engine.Snapshot().RemainingSeconds)
}

func TestStopClosesSubscribers(t *testing.T) {
	ticks := clock.NewManual()
	engine := New(model.DefaultTimerConfig(), ticks)
	events := engine.Subscribe(1)
	engine.Start()

	engine.Stop()

	assert.Len(t, drain(events), 1)
	_, open := <-events
	assert.False(t, open)
	assert.False(t, ticks.Armed())
}
