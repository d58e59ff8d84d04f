package snyk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	snyk "github.com/tphakala/go-snyk"
)

const licensesFixture = `{"results": [
	{
		"id": "MIT",
		"severity": "none",
		"dependencies": [{"id": "lodash@4.17.15", "name": "lodash", "version": "4.17.15", "packageManager": "npm"}],
		"projects": [{"id": "p-1", "name": "goof"}]
	},
	{"id": "GPL-2.0", "severity": "high"}
]}`

func TestLicenseService_All(t *testing.T) {
	t.Run("organization scope", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/org/org-1/licenses", r.URL.Path)
			assert.Equal(t, "license", r.URL.Query().Get("sortBy"))
			assert.Equal(t, "asc", r.URL.Query().Get("order"))

			var body struct {
				Filters map[string]any `json:"filters"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Empty(t, body.Filters)

			_, _ = w.Write([]byte(licensesFixture))
		})

		licenses, err := client.Org("org-1").Licenses().All(context.Background())
		require.NoError(t, err)

		require.Len(t, licenses, 2)
		assert.Equal(t, "MIT", licenses[0].ID)
		require.Len(t, licenses[0].Dependencies, 1)
		assert.Equal(t, "lodash", licenses[0].Dependencies[0].Name)
	})

	t.Run("project scope adds a filter", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte(`{"data": {"id": "p-1", "type": "project", "attributes": {"name": "scoped"}}}`))
				return
			}

			var body struct {
				Filters struct {
					Projects []string `json:"projects"`
				} `json:"filters"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"p-1"}, body.Filters.Projects)

			_, _ = w.Write([]byte(licensesFixture))
		})

		project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
		require.NoError(t, err)

		licenses, err := project.Licenses().All(context.Background())
		require.NoError(t, err)
		assert.Len(t, licenses, 2)
	})

	t.Run("empty response", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		licenses, err := client.Org("org-1").Licenses().All(context.Background())
		require.NoError(t, err)
		assert.Empty(t, licenses)
	})
}

func TestLicenseService_GetFilter(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(licensesFixture))
	})

	service := client.Org("org-1").Licenses()

	t.Run("get by id", func(t *testing.T) {
		license, err := service.Get(context.Background(), "GPL-2.0")
		require.NoError(t, err)
		assert.Equal(t, "high", license.Severity)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := service.Get(context.Background(), "WTFPL")
		require.Error(t, err)

		var notFound *snyk.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("filter by severity", func(t *testing.T) {
		licenses, err := service.Filter(context.Background(), map[string]any{"severity": "high"})
		require.NoError(t, err)
		require.Len(t, licenses, 1)
		assert.Equal(t, "GPL-2.0", licenses[0].ID)
	})
}
