package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hutplan-backend/internal/occupancy"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "file::memory:"
  driver: sqlite
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, occupancy.MasterStackOptions(), cfg.Layout.Master)
	assert.Equal(t, occupancy.RoomStackOptions(), cfg.Layout.Room)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "AT", cfg.Holidays.Country)
	assert.Equal(t, 24*time.Hour, cfg.Holidays.RefreshInterval)
	assert.Equal(t, "assignment.committed", cfg.AMQP.Queue)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoad_CustomLayoutAndEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=db user=hut")
	path := writeConfig(t, `
database:
  dsn: "ignored"
layout:
  room:
    tolerance: 0.2
    padding: 0.01
    inset: 0.05
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "host=db user=hut", cfg.Database.DSN)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, occupancy.StackOptions{Tolerance: 0.2, Padding: 0.01, Inset: 0.05}, cfg.Layout.Room)
	assert.Equal(t, occupancy.MasterStackOptions(), cfg.Layout.Master)
}

func TestLoad_PartialLayout(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected LayoutConfig
	}{
		{
			name:    "Only tolerance set",
			content: "database:\n  dsn: x\nlayout:\n  room:\n    tolerance: 0.2\n",
			expected: LayoutConfig{
				Master: occupancy.MasterStackOptions(),
				Room:   occupancy.StackOptions{Tolerance: 0.2, Padding: 0.05, Inset: 0.1},
			},
		},
		{
			name:    "Explicit zero padding is kept",
			content: "database:\n  dsn: x\nlayout:\n  master:\n    padding: 0\n",
			expected: LayoutConfig{
				Master: occupancy.StackOptions{Tolerance: 0.25, Padding: 0, Inset: 0.1},
				Room:   occupancy.RoomStackOptions(),
			},
		},
		{
			name:    "Empty block falls back to defaults",
			content: "database:\n  dsn: x\nlayout:\n  master:\n",
			expected: LayoutConfig{
				Master: occupancy.MasterStackOptions(),
				Room:   occupancy.RoomStackOptions(),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tc.content))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg.Layout)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "Missing DSN", content: "server:\n  port: 8080\n"},
		{name: "Unknown driver", content: "database:\n  dsn: x\n  driver: oracle\n"},
		{name: "Bad country", content: "database:\n  dsn: x\nholidays:\n  country: AUT\n"},
		{name: "Broken YAML", content: "database: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
