// Package auth provides Snyk API authentication and token discovery.
package auth

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Credentials holds a Snyk API token.
type Credentials struct {
	Token string
}

// Apply adds the authorization header to an HTTP request. All three API
// generations use the same token scheme.
func (c *Credentials) Apply(req *http.Request) {
	if c == nil {
		return
	}
	req.Header.Set("Authorization", "token "+c.Token)
}

// Valid reports whether a token is configured.
func (c *Credentials) Valid() bool {
	return c != nil && c.Token != ""
}

// DefaultConfigPath returns the location of the Snyk CLI config store,
// which holds the API token after `snyk auth`.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "configstore", "snyk.json"), nil
}

// TokenFromConfigFile reads the API token from a Snyk CLI config store file.
func TokenFromConfigFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading snyk config: %w", err)
	}
	token := gjson.GetBytes(data, "api").String()
	if token == "" {
		return "", fmt.Errorf("no api token in %s", path)
	}
	return token, nil
}

// TokenFromEnv returns the token from SNYK_TOKEN, falling back to the
// CLI config store when the variable is unset.
func TokenFromEnv() (string, error) {
	if token := os.Getenv("SNYK_TOKEN"); token != "" {
		return token, nil
	}
	path, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	return TokenFromConfigFile(path)
}
