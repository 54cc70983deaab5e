//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/jonboulle/clockwork"

	"pomobar/internal/logfields"
)

const (
	logindService   = "org.freedesktop.login1"
	logindPath      = dbus.ObjectPath("/org/freedesktop/login1")
	logindManager   = "org.freedesktop.login1.Manager"
	prepareForSleep = logindManager + ".PrepareForSleep"
)

// NewSleepWatcher listens to logind over the system bus and falls back to
// the wall-clock gap detector when the bus is unavailable.
func NewSleepWatcher(logger *slog.Logger) SleepWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := NewLogindWatcher(logger)
	if err != nil {
		logger.Info("logind unavailable, detecting sleep from clock gaps", logfields.Error(err))
		return NewGapDetector(clockwork.NewRealClock(), 0, 0, logger)
	}
	return watcher
}

// LogindWatcher relays PrepareForSleep signals and holds a delay inhibitor
// so the snapshot is written before the machine suspends.
type LogindWatcher struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// NewLogindWatcher connects to the system bus.
func NewLogindWatcher(logger *slog.Logger) (*LogindWatcher, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &LogindWatcher{conn: conn, logger: logger}, nil
}

func (watcher *LogindWatcher) Watch(ctx context.Context, handler SleepHandler) error {
	defer watcher.conn.Close()

	err := watcher.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(logindPath),
		dbus.WithMatchInterface(logindManager),
		dbus.WithMatchMember("PrepareForSleep"),
	)
	if err != nil {
		return fmt.Errorf("subscribe to PrepareForSleep: %w", err)
	}

	signals := make(chan *dbus.Signal, 4)
	watcher.conn.Signal(signals)
	defer watcher.conn.RemoveSignal(signals)

	inhibitor := watcher.inhibit()
	defer func() { releaseInhibitor(inhibitor) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case signal, ok := <-signals:
			if !ok {
				return errors.New("system bus connection closed")
			}
			starting, ok := parsePrepareForSleep(signal)
			if !ok {
				continue
			}
			if starting {
				handler.OnSleep()
				releaseInhibitor(inhibitor)
				inhibitor = nil
				continue
			}
			handler.OnWake()
			if inhibitor == nil {
				inhibitor = watcher.inhibit()
			}
		}
	}
}

// inhibit takes a logind delay lock. A nil file means sleep is not delayed.
func (watcher *LogindWatcher) inhibit() *os.File {
	var fd dbus.UnixFD
	err := watcher.conn.Object(logindService, logindPath).
		Call(logindManager+".Inhibit", 0, "sleep", "Pomobar", "Save timer state", "delay").
		Store(&fd)
	if err != nil {
		watcher.logger.Warn("Failed to take sleep inhibitor", logfields.Error(err))
		return nil
	}
	return os.NewFile(uintptr(fd), "logind-inhibitor")
}

func releaseInhibitor(inhibitor *os.File) {
	if inhibitor != nil {
		_ = inhibitor.Close()
	}
}

// parsePrepareForSleep reports the signal's "start" flag, or false when the
// signal is not a well-formed PrepareForSleep.
func parsePrepareForSleep(signal *dbus.Signal) (starting bool, ok bool) {
	if signal == nil || signal.Name != prepareForSleep || len(signal.Body) != 1 {
		return false, false
	}
	starting, ok = signal.Body[0].(bool)
	return starting, ok
}
