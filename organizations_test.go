package snyk_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	snyk "github.com/tphakala/go-snyk"
)

const orgsFixture = `{
	"orgs": [
		{
			"id": "689ce7f9-7943-4a71-b704-2ba575f01089",
			"name": "defaultOrg",
			"slug": "default-org",
			"url": "https://api.snyk.io/org/default-org"
		},
		{
			"id": "a04d9cbd-ae6e-44af-b573-0556b31889de",
			"name": "My Other Org",
			"slug": "my-other-org",
			"url": "https://api.snyk.io/org/my-other-org",
			"group": {"id": "4a18d42f-0706-4ad0-b127-24078731fbed", "name": "ACME Inc."}
		}
	]
}`

func TestOrganizationService_All(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/orgs", r.URL.Path)
			_, _ = w.Write([]byte(orgsFixture))
		})

		orgs, err := client.Orgs.All(context.Background())
		require.NoError(t, err)

		require.Len(t, orgs, 2)
		assert.Equal(t, "defaultOrg", orgs[0].Name)
		assert.Nil(t, orgs[0].Group)
		require.NotNil(t, orgs[1].Group)
		assert.Equal(t, "ACME Inc.", orgs[1].Group.Name)
	})

	t.Run("empty", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"orgs": []}`))
		})

		orgs, err := client.Orgs.All(context.Background())
		require.NoError(t, err)
		assert.Empty(t, orgs)
	})

	t.Run("authentication error", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "invalid auth token provided"}`))
		})

		_, err := client.Orgs.All(context.Background())
		require.Error(t, err)

		var authErr *snyk.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "invalid auth token provided", authErr.Message)
	})
}

func TestOrganizationService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(orgsFixture))
		})

		org, err := client.Orgs.Get(context.Background(), "a04d9cbd-ae6e-44af-b573-0556b31889de")
		require.NoError(t, err)
		assert.Equal(t, "My Other Org", org.Name)
	})

	t.Run("not found", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(orgsFixture))
		})

		_, err := client.Orgs.Get(context.Background(), "no-such-org")
		require.Error(t, err)

		var notFound *snyk.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "organization", notFound.ResourceType)
		assert.Equal(t, "no-such-org", notFound.ResourceID)
	})
}

func TestOrganizationService_First(t *testing.T) {
	t.Run("returns first", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(orgsFixture))
		})

		org, err := client.Orgs.First(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "defaultOrg", org.Name)
	})

	t.Run("not found when empty", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"orgs": []}`))
		})

		_, err := client.Orgs.First(context.Background())
		require.Error(t, err)

		var notFound *snyk.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestOrganizationService_Filter(t *testing.T) {
	t.Run("by json field name", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(orgsFixture))
		})

		orgs, err := client.Orgs.Filter(context.Background(), map[string]any{"slug": "my-other-org"})
		require.NoError(t, err)
		require.Len(t, orgs, 1)
		assert.Equal(t, "My Other Org", orgs[0].Name)
	})

	t.Run("empty criteria return everything", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(orgsFixture))
		})

		orgs, err := client.Orgs.Filter(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, orgs, 2)
	})

	t.Run("unknown field fails fast", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(orgsFixture))
		})

		_, err := client.Orgs.Filter(context.Background(), map[string]any{"flavor": "vanilla"})
		require.Error(t, err)

		var validationErr *snyk.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Message, "flavor")
	})
}

func TestClientOrg(t *testing.T) {
	// A handle built from a known id issues no request until a child
	// collection is used.
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/org/org-1/members", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id": "m-1", "username": "admin_user", "role": "admin"}]`))
	})

	members, err := client.Org("org-1").Members().All(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "admin", members[0].Role)
}
