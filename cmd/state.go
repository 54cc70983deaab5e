package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"pomobar/internal/config"
	"pomobar/internal/platform"
	"pomobar/internal/storage"
)

// StateCmd groups the snapshot maintenance commands.
type StateCmd struct {
	Show  StateShowCmd  `cmd:"" help:"Print the saved timer state"`
	Clear StateClearCmd `cmd:"" help:"Delete the saved timer state"`
}

// StateShowCmd implements 'state show'.
type StateShowCmd struct{}

func (s *StateShowCmd) Run(globals *Global, root *CLI) error {
	env, err := loadEnvironment(root.Config, globals.Logger)
	if err != nil {
		return err
	}
	gateway, backend, err := env.openGateway(preferencesFor(env.settings), globals.Logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	fmt.Fprintf(globals.Out, "backend: %s\n", env.settings.StateBackend)
	state, ok := gateway.Load()
	if !ok {
		fmt.Fprintln(globals.Out, "no saved timer state")
		return nil
	}
	fmt.Fprintf(globals.Out, "mode: %s\n", state.Mode)
	fmt.Fprintf(globals.Out, "remaining: %s\n", state.FormattedRemaining())
	fmt.Fprintf(globals.Out, "paused: %t\n", state.Paused)
	fmt.Fprintf(globals.Out, "completed sessions: %d\n", state.CompletedWorkSessions)
	return nil
}

// StateClearCmd implements 'state clear'.
type StateClearCmd struct{}

func (s *StateClearCmd) Run(globals *Global, root *CLI) error {
	env, err := loadEnvironment(root.Config, globals.Logger)
	if err != nil {
		return err
	}
	gateway, backend, err := env.openGateway(preferencesFor(env.settings), globals.Logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := gateway.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(globals.Out, "saved timer state cleared")
	return nil
}

// preferencesFor returns the app preferences only when the preferences
// backend is selected, so file backends work without a display.
func preferencesFor(settings config.Settings) fyne.Preferences {
	if settings.StateBackend != config.BackendPreferences {
		return nil
	}
	return app.NewWithID(appID).Preferences()
}

// AutostartCmd groups the login item commands.
type AutostartCmd struct {
	Enable  AutostartEnableCmd  `cmd:"" help:"Launch Pomobar at login"`
	Disable AutostartDisableCmd `cmd:"" help:"Stop launching Pomobar at login"`
	Status  AutostartStatusCmd  `cmd:"" help:"Report whether Pomobar launches at login"`
}

// AutostartEnableCmd implements 'autostart enable'.
type AutostartEnableCmd struct{}

func (a *AutostartEnableCmd) Run(globals *Global) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := platform.NewService().EnableAutostart(appName, []string{execPath, "run"}); err != nil {
		return err
	}
	fmt.Fprintln(globals.Out, "autostart enabled")
	return nil
}

// AutostartDisableCmd implements 'autostart disable'.
type AutostartDisableCmd struct{}

func (a *AutostartDisableCmd) Run(globals *Global) error {
	if err := platform.NewService().DisableAutostart(appName); err != nil {
		return err
	}
	fmt.Fprintln(globals.Out, "autostart disabled")
	return nil
}

// AutostartStatusCmd implements 'autostart status'.
type AutostartStatusCmd struct{}

func (a *AutostartStatusCmd) Run(globals *Global) error {
	enabled, err := platform.NewService().AutostartEnabled(appName)
	if err != nil {
		return err
	}
	if enabled {
		fmt.Fprintln(globals.Out, "autostart enabled")
	} else {
		fmt.Fprintln(globals.Out, "autostart disabled")
	}
	return nil
}
