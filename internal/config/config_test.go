package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, int64(32768), cfg.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 30*time.Second, cfg.OfferTimeout)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.STUNServers)
}

func TestLoadFromFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_ENV", "test")

	yaml := `
mode: debug
port: 8081
ping_period: 20s
offer_timeout: 10s
stun_servers:
  - stun:stun.example.org:3478
`
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 20*time.Second, cfg.PingPeriod)
	assert.Equal(t, 10*time.Second, cfg.OfferTimeout)
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, cfg.STUNServers)
	// Unset keys keep their defaults.
	assert.Equal(t, int64(32768), cfg.ReadLimit)
}
