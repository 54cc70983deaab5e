package clock

import "sync"

// Manual is a tick source driven explicitly by the caller. Tests use it to
// step the countdown without waiting on wall-clock time.
type Manual struct {
	mu      sync.Mutex
	tick    func()
	arms    int
	disarms int
}

// NewManual returns a disarmed manual tick source.
func NewManual() *Manual {
	return &Manual{}
}

// Arm stores tick as the callback invoked by Fire.
func (manual *Manual) Arm(tick func()) error {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.tick = tick
	manual.arms++
	return nil
}

// Disarm drops the stored callback.
func (manual *Manual) Disarm() {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.tick = nil
	manual.disarms++
}

// Armed reports whether a callback is stored.
func (manual *Manual) Armed() bool {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.tick != nil
}

// Current returns the stored callback, or nil when disarmed.
func (manual *Manual) Current() func() {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.tick
}

// Fire invokes the stored callback once. It reports false when disarmed.
func (manual *Manual) Fire() bool {
	tick := manual.Current()
	if tick == nil {
		return false
	}
	tick()
	return true
}

// FireN invokes the stored callback up to n times and returns how many fired.
func (manual *Manual) FireN(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		if !manual.Fire() {
			break
		}
		fired++
	}
	return fired
}

// Counts returns how many times Arm and Disarm were called.
func (manual *Manual) Counts() (arms, disarms int) {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.arms, manual.disarms
}
