package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomobar/internal/storage"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	out := &bytes.Buffer{}
	globals := &Global{Logger: slog.Default(), Out: out}

	parser, err := newParser(&cli, globals, kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = ctx.Run(globals, &cli)
	return out.String(), err
}

func writeYAMLSettings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state_backend: yaml\nwork_duration_seconds: 1500\n"), 0o644))
	return path
}

func TestDefaultCommandIsRun(t *testing.T) {
	var cli CLI
	parser, err := newParser(&cli, &Global{Logger: slog.Default()})
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"--verbose"})
	require.NoError(t, err)
	assert.Equal(t, "run", ctx.Command())
	assert.True(t, cli.Verbose)
}

func TestStateShowFreshInstall(t *testing.T) {
	path := writeYAMLSettings(t)

	out, err := runCLI(t, "--config", path, "state", "show")
	require.NoError(t, err)
	assert.Equal(t, "backend: yaml\nno saved timer state\n", out)
}

func TestStateShowAndClear(t *testing.T) {
	path := writeYAMLSettings(t)
	backend := storage.NewYAMLBackend(filepath.Join(filepath.Dir(path), "state.yaml"))
	require.NoError(t, backend.WriteRecord(storage.Record{
		TimeRemaining:     125,
		IsWorkSession:     false,
		CompletedSessions: 4,
		IsPaused:          true,
	}))

	out, err := runCLI(t, "--config", path, "state", "show")
	require.NoError(t, err)
	assert.Equal(t, "backend: yaml\nmode: break\nremaining: 02:05\npaused: true\ncompleted sessions: 4\n", out)

	out, err = runCLI(t, "--config", path, "state", "clear")
	require.NoError(t, err)
	assert.Equal(t, "saved timer state cleared\n", out)

	_, ok, err := backend.ReadRecord()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadEnvironmentWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	env, err := loadEnvironment(path, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), env.appDir)
	assert.FileExists(t, path)

	again, err := loadEnvironment(path, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, env.settings, again.settings)
}
