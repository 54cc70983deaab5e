package panel

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pomobar/internal/core/pomodoro"
	"pomobar/internal/ui/tray"
)

// Window is the popover shown from the tray: countdown, progress, session
// count and the four timer commands.
type Window struct {
	window   fyne.Window
	controls pomodoro.Controls

	timeLabel     *widget.Label
	modeLabel     *widget.Label
	progress      *widget.ProgressBar
	sessionsLabel *widget.Label
	toggleButton  *widget.Button
	switchButton  *widget.Button
}

// New builds the panel window. It starts hidden; closing it only hides it.
func New(app fyne.App, controls pomodoro.Controls) *Window {
	window := app.NewWindow("Pomobar")

	panel := &Window{
		window:        window,
		controls:      controls,
		timeLabel:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true}),
		modeLabel:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		progress:      widget.NewProgressBar(),
		sessionsLabel: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
	}
	panel.timeLabel.SizeName = theme.SizeNameHeadingText
	panel.progress.TextFormatter = func() string { return "" }

	panel.toggleButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), panel.command(controls.StartPauseTimer))
	panel.toggleButton.Importance = widget.HighImportance
	resetButton := widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), panel.command(controls.ResetTimer))
	panel.switchButton = widget.NewButtonWithIcon("Switch to Break", theme.MediaSkipNextIcon(), panel.command(controls.SwitchMode))
	sessionsButton := widget.NewButtonWithIcon("Reset Sessions", theme.ContentClearIcon(), panel.command(controls.ResetCompletedSessions))

	content := container.NewVBox(
		panel.modeLabel,
		panel.timeLabel,
		panel.progress,
		panel.sessionsLabel,
		container.NewGridWithColumns(2, panel.toggleButton, resetButton),
		container.NewGridWithColumns(2, panel.switchButton, sessionsButton),
		layout.NewSpacer(),
	)
	window.SetContent(container.NewPadded(content))
	window.SetCloseIntercept(window.Hide)
	window.SetFixedSize(true)
	window.Resize(fyne.NewSize(280, 220))

	panel.Render(controls.View())
	return panel
}

// FyneWindow exposes the window so it can be attached to the tray.
func (panel *Window) FyneWindow() fyne.Window {
	return panel.window
}

// Show displays the panel.
func (panel *Window) Show() {
	panel.Render(panel.controls.View())
	panel.window.Show()
	panel.window.RequestFocus()
}

// Render copies view into the widgets.
func (panel *Window) Render(view pomodoro.View) {
	panel.timeLabel.SetText(view.TimeString)
	panel.modeLabel.SetText(modeCaption(view))
	panel.progress.SetValue(view.CurrentProgress)
	panel.sessionsLabel.SetText(tray.SessionsLabel(view.CompletedSessions))
	panel.toggleButton.SetText(tray.ToggleLabel(view))
	if view.IsPaused {
		panel.toggleButton.SetIcon(theme.MediaPlayIcon())
	} else {
		panel.toggleButton.SetIcon(theme.MediaPauseIcon())
	}
	panel.switchButton.SetText(tray.SwitchLabel(view))
}

func (panel *Window) command(run func()) func() {
	return func() {
		run()
		panel.Render(panel.controls.View())
	}
}

func modeCaption(view pomodoro.View) string {
	if view.IsWorkSession {
		return "Focus time"
	}
	return "Break time"
}
