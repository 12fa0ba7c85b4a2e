package syncstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sync.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, s.SyncToken("primary"))

	updated := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put("primary", Entry{SyncToken: "tok", UpdatedAt: updated, Events: 3}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)

	e, ok := reopened.Get("primary")
	require.True(t, ok)
	assert.Equal(t, "tok", e.SyncToken)
	assert.True(t, e.UpdatedAt.Equal(updated))
	assert.Equal(t, 3, e.Events)
}

func TestStore_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Reset("unknown"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Put("a", Entry{SyncToken: "1"}))
	require.NoError(t, s.Put("b", Entry{SyncToken: "2"}))
	require.NoError(t, s.Reset("a"))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, reopened.SyncToken("a"))
	assert.Equal(t, "2", reopened.SyncToken("b"))
}

func TestOpen_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendars: [nope"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)

	_, err = Open("")
	assert.Error(t, err)
}
