package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ducktracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listen: ":9090"
log_level: "debug"
passwd_file: "/etc/ducktracker.passwd"
default_ttl: "15m"
max_points: 250
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "/etc/ducktracker.passwd", cfg.PasswdFile)
	require.Equal(t, 15*time.Minute, time.Duration(cfg.DefaultTTL))
	require.Equal(t, 250, cfg.MaxPoints)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := &ServerConfig{ListenAddr: ":8080", LogLevel: "info", MaxPoints: 100}

	t.Setenv("DUCKTRACKER_LISTEN", ":1234")
	t.Setenv("DUCKTRACKER_LOG_LEVEL", "warn")
	t.Setenv("DUCKTRACKER_MAX_POINTS", "500")

	ApplyEnvOverrides(cfg)

	require.Equal(t, ":1234", cfg.ListenAddr)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 500, cfg.MaxPoints)
}

func TestEnsureDefaultConfigCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "ducktracker.yaml")

	require.NoError(t, EnsureDefaultConfig(path))
	_, err := os.Stat(path)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, 100, cfg.MaxPoints)
}
