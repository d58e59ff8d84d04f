package snyk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	snyk "github.com/tphakala/go-snyk"
)

func TestTokenFromConfigFile(t *testing.T) {
	t.Run("reads the api key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "snyk.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"api": "12345678-aaaa-bbbb-cccc-ddddeeeeffff", "org": "default-org"}`), 0o600))

		token, err := snyk.TokenFromConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, "12345678-aaaa-bbbb-cccc-ddddeeeeffff", token)
	})

	t.Run("error when the api key is absent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "snyk.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"org": "default-org"}`), 0o600))

		_, err := snyk.TokenFromConfigFile(path)
		require.Error(t, err)
	})

	t.Run("error when the file is missing", func(t *testing.T) {
		_, err := snyk.TokenFromConfigFile(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})
}

func TestTokenFromEnv(t *testing.T) {
	t.Setenv("SNYK_TOKEN", "env-token")

	token, err := snyk.TokenFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}
