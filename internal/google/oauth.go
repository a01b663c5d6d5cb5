package google

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultAccount is used when no account name is given.
const DefaultAccount = "default"

// Scopes are the OAuth scopes travelcal asks for. Creating events is all the
// remote sink does.
var Scopes = []string{calendar.CalendarEventsScope}

// ErrCredentialsMissing is returned when the OAuth client credentials file
// does not exist.
var ErrCredentialsMissing = errors.New("google OAuth credentials file not found")

var accountNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateAccountName checks that an account name is safe to use in a file name.
func ValidateAccountName(account string) error {
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: use 1-64 letters, digits, '-' or '_'", account)
	}
	return nil
}

// LoadOAuthConfig reads an OAuth client definition (the credentials.json
// downloaded from the Google Cloud console) and returns a config asking for
// the calendar events scope. An empty redirectURL keeps the one from the file.
func LoadOAuthConfig(credentialsFile, redirectURL string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsMissing, credentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	conf, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if redirectURL != "" {
		conf.RedirectURL = redirectURL
	}
	return conf, nil
}

// CredentialsExist reports whether the credentials file is present.
func CredentialsExist(credentialsFile string) bool {
	info, err := os.Stat(credentialsFile)
	return err == nil && !info.IsDir()
}

// AuthCodeURL returns the consent page URL for state. Offline access is
// requested so the stored token carries a refresh token.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// GenerateState returns a random OAuth state value.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ParseAuthCode accepts either a bare authorization code or the full redirect
// URL the browser landed on, and returns the code.
func ParseAuthCode(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("authorization code is empty")
	}
	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URL: %w", err)
	}
	if msg := u.Query().Get("error"); msg != "" {
		return "", fmt.Errorf("authorization denied: %s", msg)
	}
	code := u.Query().Get("code")
	if code == "" {
		return "", errors.New("redirect URL carries no code parameter")
	}
	return code, nil
}

// NewHTTPClient returns an HTTP client authorizing requests with ts.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewHTTPClient(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   &http.Transport{ForceAttemptHTTP2: false, Proxy: http.ProxyFromEnvironment},
		},
	}
}
