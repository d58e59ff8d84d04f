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

const taggedProjectFixture = `{"data": {
	"id": "p-1",
	"type": "project",
	"attributes": {
		"name": "tagged",
		"tags": [
			{"key": "team", "value": "security"},
			{"key": "env", "value": "prod"}
		]
	}
}}`

// tagTestClient serves a project with two tags and records the tag list of
// every PATCH it receives.
func tagTestClient(t *testing.T, patched *[]snyk.Tag) *snyk.Client {
	t.Helper()
	return setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(taggedProjectFixture))
		case http.MethodPatch:
			var body struct {
				Data struct {
					Attributes struct {
						Tags []snyk.Tag `json:"tags"`
					} `json:"attributes"`
				} `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*patched = body.Data.Attributes.Tags
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected method %q", r.Method)
		}
	})
}

func TestTagService_All(t *testing.T) {
	requests := 0
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(taggedProjectFixture))
	})

	project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
	require.NoError(t, err)

	// All reads the cache populated at fetch time; no extra round trip.
	tags, err := project.Tags().All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []snyk.Tag{
		{Key: "team", Value: "security"},
		{Key: "env", Value: "prod"},
	}, tags)
	assert.Equal(t, 1, requests)
}

func TestTagService_Add(t *testing.T) {
	t.Run("appends and refreshes the cache", func(t *testing.T) {
		var patched []snyk.Tag
		client := tagTestClient(t, &patched)

		project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
		require.NoError(t, err)

		require.NoError(t, project.Tags().Add(context.Background(), "owner", "platform"))

		// The whole list is replaced, existing tags first.
		assert.Equal(t, []snyk.Tag{
			{Key: "team", Value: "security"},
			{Key: "env", Value: "prod"},
			{Key: "owner", Value: "platform"},
		}, patched)

		tags, err := project.Tags().All(context.Background())
		require.NoError(t, err)
		assert.Len(t, tags, 3)
	})

	t.Run("rejects missing key or value", func(t *testing.T) {
		var patched []snyk.Tag
		client := tagTestClient(t, &patched)

		project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
		require.NoError(t, err)

		err = project.Tags().Add(context.Background(), "", "prod")
		require.Error(t, err)

		var validationErr *snyk.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Nil(t, patched)
	})

	t.Run("cache is untouched when the patch fails", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte(taggedProjectFixture))
				return
			}
			w.WriteHeader(http.StatusForbidden)
		})

		project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
		require.NoError(t, err)

		err = project.Tags().Add(context.Background(), "owner", "platform")
		require.Error(t, err)

		tags, err := project.Tags().All(context.Background())
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})
}

func TestTagService_Delete(t *testing.T) {
	t.Run("removes only the exact pair", func(t *testing.T) {
		var patched []snyk.Tag
		client := tagTestClient(t, &patched)

		project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
		require.NoError(t, err)

		require.NoError(t, project.Tags().Delete(context.Background(), "env", "prod"))
		assert.Equal(t, []snyk.Tag{{Key: "team", Value: "security"}}, patched)
	})

	t.Run("key match alone removes nothing", func(t *testing.T) {
		var patched []snyk.Tag
		client := tagTestClient(t, &patched)

		project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
		require.NoError(t, err)

		require.NoError(t, project.Tags().Delete(context.Background(), "env", "staging"))
		assert.Len(t, patched, 2)
	})

	t.Run("rejects missing key or value", func(t *testing.T) {
		var patched []snyk.Tag
		client := tagTestClient(t, &patched)

		project, err := client.Org("org-1").Projects().Get(context.Background(), "p-1")
		require.NoError(t, err)

		err = project.Tags().Delete(context.Background(), "env", "")
		require.Error(t, err)

		var validationErr *snyk.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}
