package snyk

import "github.com/tphakala/go-snyk/internal/auth"

// TokenFromEnv returns the API token from the SNYK_TOKEN environment
// variable, falling back to the Snyk CLI config store when the variable
// is unset.
func TokenFromEnv() (string, error) {
	return auth.TokenFromEnv()
}

// TokenFromConfigFile reads the API token from a Snyk CLI config store
// file (the JSON file written by `snyk auth`).
func TokenFromConfigFile(path string) (string, error) {
	return auth.TokenFromConfigFile(path)
}
