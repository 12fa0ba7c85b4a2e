package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: http://localhost:8080/
calendar: team@example.com
user_emails: [me@example.com, me@work.example.com]
sync:
  schedule: "*/15 * * * *"
  show_deleted: false
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	assert.Equal(t, "team@example.com", cfg.Calendar)
	assert.Equal(t, []string{"me@example.com", "me@work.example.com"}, cfg.UserEmails)
	assert.Equal(t, "*/15 * * * *", cfg.Sync.Schedule)
	assert.False(t, cfg.Sync.ShowDeleted)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CALENDART_CALENDAR", "other")
	t.Setenv("GOOGLE_ACCESS_TOKEN", "secret")
	t.Setenv("GOOGLE_CLIENT_ID", "client")

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "other", cfg.Calendar)
	assert.Equal(t, "secret", cfg.AccessToken)
	assert.Equal(t, "client", cfg.ClientID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "other")
	assert.NotContains(t, string(data), "secret")
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.MetricsAddr = ":9090"
	cfg.AccessToken = "not persisted"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", loaded.MetricsAddr)
	assert.Empty(t, loaded.AccessToken)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
