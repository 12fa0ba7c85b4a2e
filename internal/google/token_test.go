package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestWriteReadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "google.token")

	require.NoError(t, WriteToken(path, &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := ReadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		access  string
		refresh string
		wantErr bool
	}{
		{name: "access only", content: "abc\n", access: "abc"},
		{name: "access and refresh", content: "abc def", access: "abc", refresh: "def"},
		{name: "empty", content: "", wantErr: true},
		{name: "too many fields", content: "a b c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			tok, err := ReadToken(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.access, tok.AccessToken)
			assert.Equal(t, tt.refresh, tok.RefreshToken)
		})
	}
}

func TestReadToken_Missing(t *testing.T) {
	_, err := ReadToken(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()

	ts, err := TokenSource(ctx, Credentials{AccessToken: "env-token"})
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "env-token", tok.AccessToken)

	path := filepath.Join(t.TempDir(), "google.token")
	require.NoError(t, WriteToken(path, &oauth2.Token{AccessToken: "stored", RefreshToken: "r"}))

	ts, err = TokenSource(ctx, Credentials{TokenFile: path})
	require.NoError(t, err)
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "stored", tok.AccessToken)

	_, err = TokenSource(ctx, Credentials{TokenFile: filepath.Join(t.TempDir(), "absent")})
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "x"}))
	require.NotNil(t, client)

	transport, ok := client.Transport.(*oauth2.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.Base)
}

func TestUser_HasEmail(t *testing.T) {
	u := NewUser("Jane", "Jane@Example.com", "jd@work.example")

	assert.True(t, u.HasEmail("jane@example.com"))
	assert.True(t, u.HasEmail("jd@work.example"))
	assert.False(t, u.HasEmail("other@example.com"))
	assert.Equal(t, "Jane@Example.com", u.Email())
	assert.Equal(t, "", (&User{}).Email())
}
