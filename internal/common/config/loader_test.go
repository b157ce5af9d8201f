package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://jobs.example.test/
storage:
  dir: /tmp/jobportal-test
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://jobs.example.test", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.RequestTimeout())
	assert.Equal(t, "remote", cfg.Auth.Mode)
	assert.True(t, cfg.Auth.NotifyLogout)
	assert.Equal(t, "local", cfg.Jobs.SearchMode)
	assert.Equal(t, 4, cfg.Jobs.FeaturedCount)
	assert.Equal(t, int64(5*1024*1024), cfg.CV.MaxUploadBytes)
	assert.Equal(t, []string{".pdf", ".doc", ".docx"}, cfg.CV.AllowedExtensions)
	assert.InDelta(t, 0.6, cfg.CV.MatchThreshold, 1e-9)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/jobportal-test", cfg.Storage.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://jobs.example.test
`)
	t.Setenv("JOBPORTAL_AUTH_MODE", "mock")
	t.Setenv("JOBPORTAL_JOBS_SEARCH_MODE", "remote")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Auth.Mode)
	assert.Equal(t, "remote", cfg.Jobs.SearchMode)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("JOBS_API_HOST", "api.internal.test:8080")
	path := writeConfig(t, `
backend:
  base_url: http://${JOBS_API_HOST}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal.test:8080", cfg.Backend.BaseURL)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "relative base url",
			body:    "backend:\n  base_url: localhost:5000\n",
			wantErr: "backend.base_url",
		},
		{
			name:    "unknown auth mode",
			body:    "auth:\n  mode: oauth\n",
			wantErr: "auth.mode",
		},
		{
			name:    "elasticsearch without addresses",
			body:    "jobs:\n  search_mode: elasticsearch\n",
			wantErr: "database.elasticsearch.addresses",
		},
		{
			name:    "redis storage without address",
			body:    "storage:\n  backend: redis\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "postgres storage without host",
			body:    "storage:\n  backend: postgres\n",
			wantErr: "database.postgres",
		},
		{
			name:    "threshold out of range",
			body:    "cv:\n  match_threshold: 1.5\n",
			wantErr: "cv.match_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNormalize_ExtensionsGetDotPrefix(t *testing.T) {
	path := writeConfig(t, `
cv:
  allowed_extensions: ["PDF", ".Docx"]
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{".pdf", ".docx"}, cfg.CV.AllowedExtensions)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
