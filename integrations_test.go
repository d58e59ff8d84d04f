package snyk_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	snyk "github.com/tphakala/go-snyk"
)

func TestIntegrationService_All(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/org/org-1/integrations", r.URL.Path)
		_, _ = w.Write([]byte(`{"github": "int-2", "docker-hub": "int-1", "gitlab": "int-3"}`))
	})

	integrations, err := client.Org("org-1").Integrations().All(context.Background())
	require.NoError(t, err)

	// The name-to-id mapping decodes into records sorted by name.
	require.Len(t, integrations, 3)
	assert.Equal(t, "docker-hub", integrations[0].Name)
	assert.Equal(t, "int-1", integrations[0].ID)
	assert.Equal(t, "github", integrations[1].Name)
	assert.Equal(t, "gitlab", integrations[2].Name)
	for _, integration := range integrations {
		require.NotNil(t, integration.Organization)
		assert.Equal(t, "org-1", integration.Organization.ID)
	}
}

func TestIntegrationService_Get(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"github": "int-2"}`))
	})

	service := client.Org("org-1").Integrations()

	integration, err := service.Get(context.Background(), "int-2")
	require.NoError(t, err)
	assert.Equal(t, "github", integration.Name)

	_, err = service.Get(context.Background(), "int-404")
	require.Error(t, err)

	var notFound *snyk.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestIntegrationService_Filter(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"github": "int-2", "gitlab": "int-3"}`))
	})

	integrations, err := client.Org("org-1").Integrations().Filter(context.Background(), map[string]any{"name": "gitlab"})
	require.NoError(t, err)
	require.Len(t, integrations, 1)
	assert.Equal(t, "int-3", integrations[0].ID)
}

func TestIntegrationSettingService(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/org/org-1/integrations" {
			_, _ = w.Write([]byte(`{"github": "int-2"}`))
			return
		}
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/org/org-1/integrations/int-2/settings", r.URL.Path)
		_, _ = w.Write([]byte(`{"pullRequestTestEnabled": true, "autoDepUpgradeEnabled": false}`))
	})

	integration, err := client.Org("org-1").Integrations().Get(context.Background(), "int-2")
	require.NoError(t, err)

	service := integration.Settings()

	t.Run("all", func(t *testing.T) {
		settings, err := service.All(context.Background())
		require.NoError(t, err)
		require.Len(t, settings, 2)
		assert.Equal(t, true, settings["pullRequestTestEnabled"])
	})

	t.Run("get", func(t *testing.T) {
		value, err := service.Get(context.Background(), "autoDepUpgradeEnabled")
		require.NoError(t, err)
		assert.Equal(t, false, value)

		_, err = service.Get(context.Background(), "missing")
		var notFound *snyk.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "integration setting", notFound.ResourceType)
	})

	t.Run("first is the smallest key", func(t *testing.T) {
		key, value, err := service.First(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "autoDepUpgradeEnabled", key)
		assert.Equal(t, false, value)
	})

	t.Run("filter is not supported", func(t *testing.T) {
		_, err := service.Filter(context.Background(), map[string]any{"x": 1})
		var notImplemented *snyk.NotImplementedError
		require.ErrorAs(t, err, &notImplemented)
	})
}
