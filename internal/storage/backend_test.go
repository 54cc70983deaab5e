package storage

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomobar/internal/config"
)

func newTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	backend, err := NewSQLiteBackend(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

// exerciseBackend runs the shared contract every backend must satisfy.
func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()

	_, ok, err := backend.ReadRecord()
	require.NoError(t, err)
	assert.False(t, ok, "fresh backend has no record")

	first := Record{TimeRemaining: 1234, IsWorkSession: true, CompletedSessions: 2, IsPaused: false}
	require.NoError(t, backend.WriteRecord(first))
	got, ok, err := backend.ReadRecord()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, got)

	second := Record{TimeRemaining: 0, IsWorkSession: false, CompletedSessions: 3, IsPaused: true}
	require.NoError(t, backend.WriteRecord(second))
	got, ok, err = backend.ReadRecord()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got, "writes replace the previous record")

	require.NoError(t, backend.Clear())
	_, ok, err = backend.ReadRecord()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Clear(), "clearing twice is harmless")
}

func TestMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend()
	exerciseBackend(t, backend)
	assert.Equal(t, 2, backend.Writes())
}

func TestYAMLBackend(t *testing.T) {
	backend := NewYAMLBackend(filepath.Join(t.TempDir(), "nested", "state.yaml"))
	exerciseBackend(t, backend)
}

func TestYAMLBackendFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	backend := NewYAMLBackend(path)
	require.NoError(t, backend.WriteRecord(Record{TimeRemaining: 61, IsWorkSession: true, CompletedSessions: 4, IsPaused: true}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "timeRemaining: 61")
	assert.Contains(t, string(raw), "isWorkSession: true")
	assert.Contains(t, string(raw), "completedSessions: 4")
	assert.Contains(t, string(raw), "isPaused: true")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestYAMLBackendMissingKeyIsFreshInstall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completedSessions: 3\n"), 0o644))

	_, ok, err := NewYAMLBackend(path).ReadRecord()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestYAMLBackendMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeRemaining: [not, a, number"), 0o644))

	_, _, err := NewYAMLBackend(path).ReadRecord()
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	exerciseBackend(t, newTestSQLite(t))
}

func TestSQLiteBackendReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.db")
	backend, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	require.NoError(t, backend.WriteRecord(Record{TimeRemaining: 42, IsWorkSession: true}))
	require.NoError(t, backend.Close())

	reopened, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, ok, err := reopened.ReadRecord()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{TimeRemaining: 42, IsWorkSession: true}, got)
}

func TestSQLiteBackendMigrationIdempotent(t *testing.T) {
	backend := newTestSQLite(t)
	require.NoError(t, backend.migrate())

	var version int
	require.NoError(t, backend.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestSQLiteBackendMalformedValue(t *testing.T) {
	backend := newTestSQLite(t)
	_, err := backend.db.Exec(`INSERT INTO timer_state (key, value) VALUES (?, ?)`, KeyTimeRemaining, "soon")
	require.NoError(t, err)

	_, _, err = backend.ReadRecord()
	assert.ErrorContains(t, err, KeyTimeRemaining)
}

func TestPreferencesBackend(t *testing.T) {
	app := test.NewTempApp(t)
	exerciseBackend(t, NewPreferencesBackend(app.Preferences()))
}

func TestPreferencesBackendUsesSnapshotKeys(t *testing.T) {
	app := test.NewTempApp(t)
	backend := NewPreferencesBackend(app.Preferences())
	require.NoError(t, backend.WriteRecord(Record{TimeRemaining: 90, IsWorkSession: true, CompletedSessions: 6, IsPaused: true}))

	prefs := app.Preferences()
	assert.Equal(t, 90, prefs.Int(KeyTimeRemaining))
	assert.True(t, prefs.Bool(KeyIsWorkSession))
	assert.Equal(t, 6, prefs.Int(KeyCompletedSessions))
	assert.True(t, prefs.Bool(KeyIsPaused))
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()

	backend, err := OpenBackend(config.BackendYAML, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.yaml"), backend.(*YAMLBackend).Path())

	backend, err = OpenBackend(config.BackendSQLite, dir, nil)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = OpenBackend(config.BackendPreferences, dir, nil)
	assert.Error(t, err)

	backend, err = OpenBackend(config.BackendPreferences, dir, test.NewTempApp(t).Preferences())
	require.NoError(t, err)
	assert.IsType(t, &PreferencesBackend{}, backend)

	_, err = OpenBackend("etcd", dir, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
