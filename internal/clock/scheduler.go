package clock

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"pomobar/internal/logfields"
)

// Scheduler is a tick source backed by a gocron duration job.
//
// The job only posts a pulse; a dedicated goroutine delivers pulses to the
// armed callback so a callback blocked on its own locks never stalls gocron.
type Scheduler struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
	interval  time.Duration
	job       gocron.Job
	tick      func()
	pulses    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewScheduler creates and starts a gocron scheduler firing every interval.
func NewScheduler(interval time.Duration, options ...gocron.SchedulerOption) (*Scheduler, error) {
	if interval <= 0 {
		interval = time.Second
	}
	s, err := gocron.NewScheduler(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	scheduler := &Scheduler{
		scheduler: s,
		interval:  interval,
		pulses:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go scheduler.deliver()
	s.Start()
	return scheduler, nil
}

// Arm schedules tick every interval, replacing any armed callback. The first
// tick arrives one interval after arming.
func (scheduler *Scheduler) Arm(tick func()) error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.removeJobLocked()
	scheduler.drainPulses()

	job, err := scheduler.scheduler.NewJob(
		gocron.DurationJob(scheduler.interval),
		gocron.NewTask(scheduler.pulse),
		gocron.WithName("timer-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		scheduler.tick = nil
		return fmt.Errorf("failed to create tick job: %w", err)
	}
	scheduler.job = job
	scheduler.tick = tick
	return nil
}

// Disarm removes the tick job. Pulses already in flight are dropped.
func (scheduler *Scheduler) Disarm() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.removeJobLocked()
	scheduler.tick = nil
}

// Shutdown stops the scheduler and the delivery goroutine.
func (scheduler *Scheduler) Shutdown() error {
	scheduler.Disarm()
	scheduler.closeOnce.Do(func() {
		close(scheduler.done)
	})
	if err := scheduler.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down gocron scheduler: %w", err)
	}
	return nil
}

func (scheduler *Scheduler) pulse() {
	select {
	case scheduler.pulses <- struct{}{}:
	default:
	}
}

func (scheduler *Scheduler) deliver() {
	for {
		select {
		case <-scheduler.done:
			return
		case <-scheduler.pulses:
			scheduler.mu.Lock()
			tick := scheduler.tick
			scheduler.mu.Unlock()
			if tick != nil {
				tick()
			}
		}
	}
}

func (scheduler *Scheduler) drainPulses() {
	select {
	case <-scheduler.pulses:
	default:
	}
}

func (scheduler *Scheduler) removeJobLocked() {
	if scheduler.job == nil {
		return
	}
	if err := scheduler.scheduler.RemoveJob(scheduler.job.ID()); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		slog.Warn("Failed to remove tick job", logfields.Error(err))
	}
	scheduler.job = nil
}
