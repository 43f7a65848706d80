package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	cfg, err := Load(New(), filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 1, cfg.API.QueryRetries)
	assert.Equal(t, time.Minute, cfg.Query.StaleTime)
	assert.Equal(t, "/dashboard", cfg.App.BasePath)
	assert.Equal(t, filepath.Join(dir, "amply"), cfg.State.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `api:
  url: http://localhost:8000/v1
  timeout: 5s
query:
  stale_time: 10s
app:
  base_path: admin/
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("AMPLY_LOG_FORMAT", "text")
	t.Setenv("AMPLY_API_QUERY_RETRIES", "0")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/v1", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 0, cfg.API.QueryRetries)
	assert.Equal(t, 10*time.Second, cfg.Query.StaleTime)
	assert.Equal(t, "/admin", cfg.App.BasePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))

	_, err := Load(New(), path)
	require.Error(t, err)
	assert.Equal(t, amplyerrors.ErrCodeConfigLoad, amplyerrors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.API.URL = "/v1" }, true},
		{"ftp url", func(c *Config) { c.API.URL = "ftp://example.org" }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"two retries", func(c *Config) { c.API.QueryRetries = 2 }, true},
		{"negative stale time", func(c *Config) { c.Query.StaleTime = -time.Second }, true},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"empty state dir", func(c *Config) { c.State.Dir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, amplyerrors.ErrCodeConfigInvalid, amplyerrors.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"/":          "",
		"/dashboard": "/dashboard",
		"dashboard/": "/dashboard",
		" /a/b// ":   "/a/b",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBasePath(in), "input %q", in)
	}
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv("AMPLY_CONFIG", "/tmp/amply.yaml")
	assert.Equal(t, "/tmp/amply.yaml", DefaultPath())
}
