package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Credentials locate the OAuth2 token used to authenticate requests.
type Credentials struct {
	// AccessToken, when set, is used as is and never refreshed.
	AccessToken string
	// TokenFile holds "<access token> <refresh token>".
	TokenFile string
	// ClientID and ClientSecret allow refreshing the token of TokenFile.
	ClientID     string
	ClientSecret string
}

// ErrNoToken is returned when no token could be found.
var ErrNoToken = errors.New("no Google OAuth token found")

// DefaultTokenFile returns the token path under the user cache directory.
func DefaultTokenFile() string {
	return filepath.Join(userCacheDir(), "calendart", "google.token")
}

// OAuthConfig returns the OAuth2 configuration used to refresh tokens.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       DefaultOAuthScopes,
	}
}

// ReadToken reads a token file written by WriteToken.
func ReadToken(path string) (*oauth2.Token, error) {
	slurp, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNoToken, path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	switch len(f) {
	case 1:
		return &oauth2.Token{AccessToken: f[0], TokenType: "Bearer"}, nil
	case 2:
		return &oauth2.Token{AccessToken: f[0], TokenType: "Bearer", RefreshToken: f[1]}, nil
	default:
		return nil, fmt.Errorf("invalid token format in %s", path)
	}
}

// WriteToken stores tok at path with 0600 permissions.
func WriteToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data := strings.TrimSpace(tok.AccessToken + " " + tok.RefreshToken)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// TokenSource resolves creds into a token source. A stored refresh token is
// used only when client credentials are configured; the stored access token is
// then considered expired so it is refreshed on first use.
func TokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if creds.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"}), nil
	}

	path := creds.TokenFile
	if path == "" {
		path = DefaultTokenFile()
	}

	tok, err := ReadToken(path)
	if err != nil {
		return nil, err
	}

	if tok.RefreshToken == "" || creds.ClientID == "" {
		return oauth2.StaticTokenSource(tok), nil
	}

	tok.Expiry = time.Unix(1, 0)
	return OAuthConfig(creds.ClientID, creds.ClientSecret).TokenSource(ctx, tok), nil
}

// NewHTTPClient returns a client authenticating with ts. HTTP/2 is disabled.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	base := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})

	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = base
	}

	return client
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
