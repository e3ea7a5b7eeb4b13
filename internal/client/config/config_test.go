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
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, "ccxpctl.db", c.DatabasePath)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.NoError(t, c.Validate())
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "proxy:9000",
		"database_path": "/tmp/from-json.db",
		"timeout": "5s"
	}`), 0o600))

	cfg, err := load([]string{"signin", "-u", "107012345", "-c", path, "-a", "proxy:9443"})
	require.NoError(t, err)

	assert.Equal(t, "proxy:9443", cfg.ServerEndpointAddr)
	assert.Equal(t, "/tmp/from-json.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoad_TimeoutFlag(t *testing.T) {
	cfg, err := load([]string{"refresh", "-t", "7", "-f", "x.db"})
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, "x.db", cfg.DatabasePath)
}

func TestLoad_Errors(t *testing.T) {
	_, err := load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = load([]string{"-c", bad})
	assert.Error(t, err)

	_, err = load([]string{"-t", "0"})
	assert.EqualError(t, err, "timeout must be positive")

	_, err = load([]string{"-t", "abc"})
	assert.Error(t, err)
}
