package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", c.DB.Driver)
	assert.Equal(t, 10, c.Community.DefaultPageSize)
	assert.Equal(t, 100, c.Community.MaxPageSize)
	assert.Equal(t, "open", c.Community.DeletePolicy)
	assert.Equal(t, 5000, c.App.HTTP.Port)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  http:
    port: 8080
db:
  driver: sqlite
  dsn: "file::memory:?cache=shared"
community:
  delete_policy: author
  default_page_size: 20
redis:
  addr: "127.0.0.1:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("APP_APP_HTTP_PORT", "9090")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "author", c.Community.DeletePolicy)
	assert.Equal(t, 20, c.Community.DefaultPageSize)
	assert.Equal(t, "127.0.0.1:6379", c.Redis.Addr)
	assert.Equal(t, 300, c.Redis.UserTTLSec)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("community:\n  delete_policy: owner\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
