package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into an empty directory so a developer's local
// config.yaml cannot leak into the assertions.
func chdir(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(orig))
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "http://localhost:3500", cfg.Broker.BaseURL)
	assert.Equal(t, "pubsub-kafka", cfg.Broker.PubSubName)
	assert.Equal(t, "task-events", cfg.Broker.TaskEventsTopic)
	assert.Equal(t, "reminders", cfg.Broker.RemindersTopic)
	assert.Equal(t, 5, cfg.Broker.PublishTimeoutSeconds)
	assert.Equal(t, 5, cfg.Broker.RetryIntervalSeconds)
	assert.Equal(t, 15, cfg.Reminder.ScanIntervalMinutes)
	assert.Equal(t, 24, cfg.Reminder.WindowHours)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t)

	t.Setenv("TODOSTREAM_SERVER_PORT", "9090")
	t.Setenv("TODOSTREAM_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TODOSTREAM_DATABASE_URL", "postgres://localhost:5432/todostream")
	t.Setenv("TODOSTREAM_BROKER_BASE_URL", "http://sidecar:3500")
	t.Setenv("TODOSTREAM_BROKER_RETRY_INTERVAL_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/todostream", cfg.Database.URL)
	assert.Equal(t, "http://sidecar:3500", cfg.Broker.BaseURL)
	assert.Equal(t, 10, cfg.Broker.RetryIntervalSeconds)
}

func TestLoadConfigFile(t *testing.T) {
	chdir(t)

	yaml := `
server:
  port: 7070
  log_level: warn
broker:
  pubsub_name: pubsub-local
`
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "pubsub-local", cfg.Broker.PubSubName)
	// Untouched keys keep their defaults.
	assert.Equal(t, "task-events", cfg.Broker.TaskEventsTopic)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		chdir(t)
		t.Setenv("TODOSTREAM_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		chdir(t)
		t.Setenv("TODOSTREAM_SERVER_PORT", "99999")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("short jwt secret", func(t *testing.T) {
		chdir(t)
		t.Setenv("TODOSTREAM_AUTH_JWT_SECRET", "tooshort")

		_, err := Load()
		assert.Error(t, err)
	})
}
