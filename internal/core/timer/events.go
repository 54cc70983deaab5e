package timer

import (
	"time"

	"pomobar/internal/core/model"
)

// EventType defines the type of Engine event.
type EventType string

const (
	EventStateChange     EventType = "state_change"
	EventTick            EventType = "tick"
	EventSessionBoundary EventType = "session_boundary"
)

// Event represents an Engine update for observers.
type Event struct {
	Type  EventType
	State model.TimerState
	// Ended is the mode whose countdown just reached zero. Only set for
	// EventSessionBoundary.
	Ended model.Mode
	At    time.Time
}
