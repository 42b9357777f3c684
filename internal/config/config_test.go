package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Lookup.MaxSenses)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, 10, cfg.Ladder.Levels())

	assert.Error(t, cfg.ValidateServe(), "serve needs a JWT secret")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOCAPP_HTTP_ADDR", ":9090")
	t.Setenv("VOCAPP_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("VOCAPP_SCHEDULER_INTERVAL", "15m")
	t.Setenv("VOCAPP_LADDER_INTERVALS", "1, 3, 7")
	t.Setenv("VOCAPP_LADDER_DEMOTIONS", "0,1,2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 3, cfg.Ladder.Levels())
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VOCAPP_DATABASE_DRIVER=postgres\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("VOCAPP_DATABASE_DRIVER") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "vocapp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  start_hour: 6\n  end_hour: 22\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Scheduler.StartHour)
	assert.Equal(t, 22, cfg.Scheduler.EndHour)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("ladder length mismatch", func(t *testing.T) {
		t.Setenv("VOCAPP_LADDER_DEMOTIONS", "0,1")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("ladder not numeric", func(t *testing.T) {
		t.Setenv("VOCAPP_LADDER_INTERVALS", "1,two")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("VOCAPP_DATABASE_DRIVER", "mysql")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("hour out of range", func(t *testing.T) {
		t.Setenv("VOCAPP_SCHEDULER_END_HOUR", "24")
		_, err := Load("")
		assert.Error(t, err)
	})
}
