package tray

import (
	"fmt"

	"fyne.io/fyne/v2"

	"pomobar/internal/core/pomodoro"
)

// Host is the part of the desktop app that owns the tray.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Icons selects the tray icon per session type.
type Icons struct {
	Work  fyne.Resource
	Break fyne.Resource
}

// Callbacks defines tray actions that are not timer commands.
type Callbacks struct {
	OnOpenPanel func()
	OnQuit      func()
}

// Manager handles system tray state.
type Manager struct {
	host      Host
	controls  pomodoro.Controls
	icons     Icons
	callbacks Callbacks

	statusItem   *fyne.MenuItem
	sessionsItem *fyne.MenuItem
	toggleItem   *fyne.MenuItem
	switchItem   *fyne.MenuItem
	menu         *fyne.Menu

	rendered pomodoro.View
	hasView  bool
}

// New builds the tray menu and renders the current view.
func New(host Host, controls pomodoro.Controls, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:      host,
		controls:  controls,
		icons:     icons,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.sessionsItem = fyne.NewMenuItem("", nil)
	manager.sessionsItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", controls.StartPauseTimer)
	manager.switchItem = fyne.NewMenuItem("Switch to Break", controls.SwitchMode)

	manager.menu = fyne.NewMenu("Pomobar",
		manager.statusItem,
		manager.sessionsItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Timer", func() {
			if manager.callbacks.OnOpenPanel != nil {
				manager.callbacks.OnOpenPanel()
			}
		}),
		manager.toggleItem,
		fyne.NewMenuItem("Reset Timer", controls.ResetTimer),
		manager.switchItem,
		fyne.NewMenuItem("Reset Sessions", controls.ResetCompletedSessions),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	)

	manager.Render(controls.View())
	return manager
}

// Render updates labels and icon. Unchanged views are skipped so the tray
// is not rebuilt on every poll.
func (manager *Manager) Render(view pomodoro.View) {
	if manager.hasView && manager.rendered == view {
		return
	}
	modeChanged := !manager.hasView || manager.rendered.IsWorkSession != view.IsWorkSession
	manager.rendered = view
	manager.hasView = true

	manager.statusItem.Label = StatusLabel(view)
	manager.sessionsItem.Label = SessionsLabel(view.CompletedSessions)
	manager.toggleItem.Label = ToggleLabel(view)
	manager.switchItem.Label = SwitchLabel(view)
	manager.host.SetSystemTrayMenu(manager.menu)

	if modeChanged {
		if icon := manager.iconFor(view); icon != nil {
			manager.host.SetSystemTrayIcon(icon)
		}
	}
}

func (manager *Manager) iconFor(view pomodoro.View) fyne.Resource {
	if view.IsWorkSession {
		return manager.icons.Work
	}
	return manager.icons.Break
}

// ModeName returns the display name of the current session type.
func ModeName(isWork bool) string {
	if isWork {
		return "Work"
	}
	return "Break"
}

// StatusLabel renders the countdown line, e.g. "Work 24:59 (paused)".
func StatusLabel(view pomodoro.View) string {
	status := fmt.Sprintf("%s %s", ModeName(view.IsWorkSession), view.TimeString)
	if view.IsPaused {
		status += " (paused)"
	}
	return status
}

// SessionsLabel renders the completed work session count.
func SessionsLabel(completed int) string {
	if completed == 1 {
		return "1 session completed"
	}
	return fmt.Sprintf("%d sessions completed", completed)
}

// ToggleLabel names the action of the start/pause command.
func ToggleLabel(view pomodoro.View) string {
	if view.IsPaused {
		return "Start"
	}
	return "Pause"
}

// SwitchLabel names the session the switch command jumps to.
func SwitchLabel(view pomodoro.View) string {
	return "Switch to " + ModeName(!view.IsWorkSession)
}
