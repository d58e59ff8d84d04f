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

const issueSetFixture = `{
	"ok": false,
	"packageManager": "npm",
	"dependencyCount": 438,
	"issues": {
		"vulnerabilities": [
			{
				"id": "SNYK-JS-LODASH-567746",
				"title": "Prototype Pollution",
				"from": ["goof@1.0.1", "lodash@4.17.15"],
				"package": "lodash",
				"version": "4.17.15",
				"severity": "medium",
				"isUpgradable": true
			}
		],
		"licenses": []
	}
}`

func TestIssueSetService_All(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(plainProjectFixture))
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/org/org-1/project/p-1/issues", r.URL.Path)

		var body struct {
			Filters map[string]any `json:"filters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		// Defaults: every severity, both issue types, live issues only.
		assert.ElementsMatch(t, []any{"critical", "high", "medium", "low"}, body.Filters["severities"])
		assert.ElementsMatch(t, []any{"vuln", "license"}, body.Filters["types"])
		assert.Equal(t, false, body.Filters["ignored"])
		assert.Equal(t, false, body.Filters["patched"])

		_, _ = w.Write([]byte(issueSetFixture))
	})

	project := fetchProject(t, client)
	issues, err := project.Issues().All(context.Background())
	require.NoError(t, err)

	assert.False(t, issues.OK)
	assert.Equal(t, "npm", issues.PackageManager)
	require.Len(t, issues.Issues.Vulnerabilities, 1)
	assert.Equal(t, []string{"goof@1.0.1", "lodash@4.17.15"}, issues.Issues.Vulnerabilities[0].FromPackages)
}

func TestIssueSetService_Filter(t *testing.T) {
	ignored := true
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(plainProjectFixture))
			return
		}

		var body struct {
			Filters map[string]any `json:"filters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, []any{"high"}, body.Filters["severities"])
		assert.Equal(t, []any{"vuln"}, body.Filters["types"])
		assert.Equal(t, true, body.Filters["ignored"])
		assert.Equal(t, false, body.Filters["patched"])

		_, _ = w.Write([]byte(issueSetFixture))
	})

	project := fetchProject(t, client)
	_, err := project.Issues().Filter(context.Background(), &snyk.IssueFilter{
		Severities: []string{"high"},
		Types:      []string{"vuln"},
		Ignored:    &ignored,
	})
	require.NoError(t, err)
}

func TestIssueSetService_Singleton(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(plainProjectFixture))
	})

	project := fetchProject(t, client)
	service := project.Issues()

	var notImplemented *snyk.NotImplementedError

	_, err := service.Get(context.Background(), "some-id")
	require.ErrorAs(t, err, &notImplemented)

	_, err = service.First(context.Background())
	require.ErrorAs(t, err, &notImplemented)
}

func TestAggregatedIssueService_All(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(plainProjectFixture))
			return
		}
		assert.Equal(t, "/org/org-1/project/p-1/aggregated-issues", r.URL.Path)

		var body struct {
			Filters map[string]any `json:"filters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.ElementsMatch(t, []any{"critical", "high", "medium", "low"}, body.Filters["severities"])
		assert.ElementsMatch(t,
			[]any{"mature", "proof-of-concept", "no-known-exploit", "no-data"},
			body.Filters["exploitMaturity"])

		priority, ok := body.Filters["priority"].(map[string]any)
		require.True(t, ok)
		score, ok := priority["score"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(0), score["min"])
		assert.Equal(t, float64(1000), score["max"])

		_, _ = w.Write([]byte(`{"issues": [
			{"id": "SNYK-JS-LODASH-567746", "issueType": "vuln", "pkgName": "lodash", "priorityScore": 686}
		]}`))
	})

	project := fetchProject(t, client)
	aggregated, err := project.AggregatedIssues().All(context.Background())
	require.NoError(t, err)

	require.Len(t, aggregated.Issues, 1)
	assert.Equal(t, "lodash", aggregated.Issues[0].PkgName)
	assert.Equal(t, 686, aggregated.Issues[0].PriorityScore)
}

func TestAggregatedIssueService_Filter(t *testing.T) {
	minScore := 400
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(plainProjectFixture))
			return
		}

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		filters := body["filters"].(map[string]any)
		assert.Equal(t, []any{"critical"}, filters["severities"])

		priority := filters["priority"].(map[string]any)
		score := priority["score"].(map[string]any)
		assert.Equal(t, float64(400), score["min"])
		assert.Equal(t, float64(1000), score["max"])

		assert.Equal(t, true, body["includeDescription"])

		_, _ = w.Write([]byte(`{"issues": []}`))
	})

	project := fetchProject(t, client)
	_, err := project.AggregatedIssues().Filter(context.Background(), &snyk.AggregatedIssueFilter{
		Severities:         []string{"critical"},
		PriorityScoreMin:   &minScore,
		IncludeDescription: true,
	})
	require.NoError(t, err)
}

func TestAggregatedIssueService_Singleton(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(plainProjectFixture))
	})

	project := fetchProject(t, client)
	service := project.AggregatedIssues()

	var notImplemented *snyk.NotImplementedError

	_, err := service.Get(context.Background(), "some-id")
	require.ErrorAs(t, err, &notImplemented)

	_, err = service.First(context.Background())
	require.ErrorAs(t, err, &notImplemented)
}

func TestIssuePathService_All(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orgs/org-1/projects/p-1" {
			_, _ = w.Write([]byte(plainProjectFixture))
			return
		}
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/org/org-1/project/p-1/issue/npm:qs:20170213/paths", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"snapshotId": "snap-1",
			"total": 2,
			"paths": [
				[{"name": "goof", "version": "1.0.1"}, {"name": "qs", "version": "0.0.6"}],
				[{"name": "goof", "version": "1.0.1"}, {"name": "express", "version": "4.12.4"}, {"name": "qs", "version": "2.4.1"}]
			]
		}`))
	})

	project := fetchProject(t, client)
	paths, err := project.IssuePaths("npm:qs:20170213").All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "snap-1", paths.SnapshotID)
	assert.Equal(t, 2, paths.Total)
	require.Len(t, paths.Paths, 2)
	require.Len(t, paths.Paths[1], 3)
	assert.Equal(t, "express", paths.Paths[1][1].Name)
	assert.Equal(t, "2.4.1", paths.Paths[1][2].Version)
}

func TestIssuePathService_EmptyIssueID(t *testing.T) {
	requests := 0
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(plainProjectFixture))
	})

	project := fetchProject(t, client)
	_, err := project.IssuePaths("").All(context.Background())

	var validation *snyk.ValidationError
	require.ErrorAs(t, err, &validation)
	// Only the project fetch reached the server.
	assert.Equal(t, 1, requests)
}

func TestIssuePathService_Singleton(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(plainProjectFixture))
	})

	project := fetchProject(t, client)
	service := project.IssuePaths("npm:qs:20170213")

	var notImplemented *snyk.NotImplementedError

	_, err := service.Get(context.Background(), "some-id")
	require.ErrorAs(t, err, &notImplemented)

	_, err = service.First(context.Background())
	require.ErrorAs(t, err, &notImplemented)

	_, err = service.Filter(context.Background(), nil)
	require.ErrorAs(t, err, &notImplemented)
}
