package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	prom "github.com/prometheus/client_golang/prometheus"

	"pomobar/internal/clock"
	"pomobar/internal/core/pomodoro"
	"pomobar/internal/core/timer"
	"pomobar/internal/logfields"
	"pomobar/internal/metrics"
	"pomobar/internal/notify"
	"pomobar/internal/platform"
	"pomobar/internal/ui/panel"
	"pomobar/internal/ui/tray"
	"pomobar/resources"
)

const refreshInterval = 500 * time.Millisecond

// RunCmd starts the tray application.
type RunCmd struct{}

func (r *RunCmd) Run(globals *Global, root *CLI) error {
	logger := globals.Logger

	guard, err := platform.AcquireSingleInstance(appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if err := platform.ActivateRunningInstance(appName); err != nil {
			logger.Warn("Failed to reach running instance", logfields.Error(err))
		}
		logger.Info("Pomobar is already running")
		return nil
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconApp))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	env, err := loadEnvironment(root.Config, logger)
	if err != nil {
		return err
	}
	gateway, backend, err := env.openGateway(fyneApp.Preferences(), logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	ticks, err := clock.NewScheduler(time.Second)
	if err != nil {
		return err
	}
	defer func() {
		if err := ticks.Shutdown(); err != nil {
			logger.Warn("Failed to stop tick scheduler", logfields.Error(err))
		}
	}()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if env.settings.MetricsAddress != "" {
		registry := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
		server := serveMetrics(env.settings.MetricsAddress, registry, logger)
		defer shutdownServer(server, logger)
	}

	engine := timer.New(env.settings.TimerConfig(), ticks,
		timer.WithState(gateway.LoadOrDefault()),
		timer.WithStore(gateway),
		timer.WithLogger(logger))
	defer engine.Stop()
	controller := pomodoro.NewController(engine, recorder, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := notify.NewDispatcher(notify.NewAppSender(fyneApp), env.settings.Notifications, recorder, logger)
	go dispatcher.Run(ctx, engine.Subscribe(8))
	go controller.Run(ctx, engine.Subscribe(64))

	panelWindow := panel.New(fyneApp, controller)
	desktopApp.SetSystemTrayWindow(panelWindow.FyneWindow())
	trayManager := tray.New(desktopApp, controller, tray.Icons{
		Work:  resources.MustIcon(resources.IconWork),
		Break: resources.MustIcon(resources.IconBreak),
	}, tray.Callbacks{
		OnOpenPanel: panelWindow.Show,
		OnQuit:      fyneApp.Quit,
	})

	render := func(view pomodoro.View) {
		fyne.Do(func() {
			trayManager.Render(view)
			panelWindow.Render(view)
		})
	}
	controller.Observe(render)
	go refreshLoop(ctx, controller, render)
	go guard.Serve(func() { fyne.Do(panelWindow.Show) })

	go func() {
		if err := platform.NewSleepWatcher(logger).Watch(ctx, controller); err != nil {
			logger.Warn("Sleep detection stopped", logfields.Error(err))
		}
	}()

	go quitOnSignal(ctx, fyneApp, logger)
	fyneApp.Lifecycle().SetOnStopped(controller.OnTerminate)

	logger.Info("Pomobar started",
		logfields.Backend(env.settings.StateBackend),
		logfields.Path(env.settingsPath))
	fyneApp.Run()

	// SetOnStopped is not guaranteed on every driver.
	controller.OnTerminate()
	return nil
}

// refreshLoop pushes the view twice per second so the countdown stays live.
func refreshLoop(ctx context.Context, controls pomodoro.Controls, render func(pomodoro.View)) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			render(controls.View())
		}
	}
}

func quitOnSignal(ctx context.Context, fyneApp fyne.App, logger *slog.Logger) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case <-ctx.Done():
	case received := <-signals:
		logger.Info("Shutdown signal received", slog.String("signal", received.String()))
		fyne.Do(fyneApp.Quit)
	}
}

func serveMetrics(address string, registry *prom.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", logfields.Address(address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped", logfields.Address(address), logfields.Error(err))
		}
	}()
	return server
}

func shutdownServer(server *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("Failed to stop metrics server", logfields.Error(err))
	}
}
