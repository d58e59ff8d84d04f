package snyk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tphakala/go-snyk/internal/api"
)

// IssueFilter narrows an issue set fetch. Nil slice fields fall back to the
// upstream defaults (all severities, both issue types); nil pointer fields
// fall back to false. Every fetch is a complete snapshot under the chosen
// filters, never an incremental update.
type IssueFilter struct {
	Severities []string
	Types      []string
	Ignored    *bool
	Patched    *bool
}

// IssueSetService provides the issue snapshot of one project. The snapshot
// is a singleton: there is exactly one instance per project and filter, so
// Get and First fail with a NotImplementedError.
type IssueSetService interface {
	// All returns the complete issue snapshot under the default filters.
	All(ctx context.Context, opts ...RequestOption) (*IssueSet, error)

	// Filter returns the complete issue snapshot under the given filters.
	Filter(ctx context.Context, filter *IssueFilter, opts ...RequestOption) (*IssueSet, error)

	// Get always fails with a NotImplementedError; indexing a singleton by
	// id is meaningless.
	Get(ctx context.Context, id string, opts ...RequestOption) (*IssueSet, error)

	// First always fails with a NotImplementedError.
	First(ctx context.Context, opts ...RequestOption) (*IssueSet, error)
}

type issueSetService struct {
	transport *api.Transport
	project   *Project
}

func (s *issueSetService) All(ctx context.Context, opts ...RequestOption) (*IssueSet, error) {
	return s.Filter(ctx, nil, opts...)
}

func (s *issueSetService) Filter(ctx context.Context, filter *IssueFilter, opts ...RequestOption) (*IssueSet, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	filters := map[string]any{
		"severities": []string{"critical", "high", "medium", "low"},
		"types":      []string{"vuln", "license"},
		"ignored":    false,
		"patched":    false,
	}
	if filter != nil {
		if len(filter.Severities) > 0 {
			filters["severities"] = filter.Severities
		}
		if len(filter.Types) > 0 {
			filters["types"] = filter.Types
		}
		if filter.Ignored != nil {
			filters["ignored"] = *filter.Ignored
		}
		if filter.Patched != nil {
			filters["patched"] = *filter.Patched
		}
	}

	var result IssueSet
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method: http.MethodPost,
		Path: fmt.Sprintf("org/%s/project/%s/issues",
			url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID)),
		Family:  api.FamilyV1,
		Body:    map[string]any{"filters": filters},
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return &result, nil
}

func (s *issueSetService) Get(context.Context, string, ...RequestOption) (*IssueSet, error) {
	return nil, &NotImplementedError{ResourceType: "issue set", Capability: "get"}
}

func (s *issueSetService) First(context.Context, ...RequestOption) (*IssueSet, error) {
	return nil, &NotImplementedError{ResourceType: "issue set", Capability: "first"}
}

// AggregatedIssueFilter narrows an aggregated issue fetch. Nil fields fall
// back to the upstream defaults.
type AggregatedIssueFilter struct {
	Severities       []string
	ExploitMaturity  []string
	Types            []string
	Ignored          *bool
	Patched          *bool
	PriorityScoreMin *int
	PriorityScoreMax *int

	IncludeDescription       bool
	IncludeIntroducedThrough bool
}

// AggregatedIssueService provides the aggregated issue snapshot of one
// project. Like the plain issue set it is a singleton: Get and First fail
// with a NotImplementedError.
type AggregatedIssueService interface {
	// All returns the aggregated snapshot under the default filters.
	All(ctx context.Context, opts ...RequestOption) (*AggregatedIssueSet, error)

	// Filter returns the aggregated snapshot under the given filters.
	Filter(ctx context.Context, filter *AggregatedIssueFilter, opts ...RequestOption) (*AggregatedIssueSet, error)

	// Get always fails with a NotImplementedError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*AggregatedIssueSet, error)

	// First always fails with a NotImplementedError.
	First(ctx context.Context, opts ...RequestOption) (*AggregatedIssueSet, error)
}

type aggregatedIssueService struct {
	transport *api.Transport
	project   *Project
}

func (s *aggregatedIssueService) All(ctx context.Context, opts ...RequestOption) (*AggregatedIssueSet, error) {
	return s.Filter(ctx, nil, opts...)
}

func (s *aggregatedIssueService) Filter(ctx context.Context, filter *AggregatedIssueFilter, opts ...RequestOption) (*AggregatedIssueSet, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	filters := map[string]any{
		"severities":      []string{"critical", "high", "medium", "low"},
		"exploitMaturity": []string{"mature", "proof-of-concept", "no-known-exploit", "no-data"},
		"types":           []string{"vuln", "license"},
		"priority":        map[string]any{"score": map[string]any{"min": 0, "max": 1000}},
	}
	body := map[string]any{"filters": filters}

	if filter != nil {
		if len(filter.Severities) > 0 {
			filters["severities"] = filter.Severities
		}
		if len(filter.ExploitMaturity) > 0 {
			filters["exploitMaturity"] = filter.ExploitMaturity
		}
		if len(filter.Types) > 0 {
			filters["types"] = filter.Types
		}
		if filter.Ignored != nil {
			filters["ignored"] = *filter.Ignored
		}
		if filter.Patched != nil {
			filters["patched"] = *filter.Patched
		}
		if filter.PriorityScoreMin != nil || filter.PriorityScoreMax != nil {
			score := map[string]any{"min": 0, "max": 1000}
			if filter.PriorityScoreMin != nil {
				score["min"] = *filter.PriorityScoreMin
			}
			if filter.PriorityScoreMax != nil {
				score["max"] = *filter.PriorityScoreMax
			}
			filters["priority"] = map[string]any{"score": score}
		}
		if filter.IncludeDescription {
			body["includeDescription"] = true
		}
		if filter.IncludeIntroducedThrough {
			body["includeIntroducedThrough"] = true
		}
	}

	var result AggregatedIssueSet
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method: http.MethodPost,
		Path: fmt.Sprintf("org/%s/project/%s/aggregated-issues",
			url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID)),
		Family:  api.FamilyV1,
		Body:    body,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return &result, nil
}

func (s *aggregatedIssueService) Get(context.Context, string, ...RequestOption) (*AggregatedIssueSet, error) {
	return nil, &NotImplementedError{ResourceType: "aggregated issues", Capability: "get"}
}

func (s *aggregatedIssueService) First(context.Context, ...RequestOption) (*AggregatedIssueSet, error) {
	return nil, &NotImplementedError{ResourceType: "aggregated issues", Capability: "first"}
}

// IssuePathService provides the dependency paths introducing one issue into
// a project. The listing is a singleton snapshot, so Get, First and Filter
// fail with a NotImplementedError.
type IssuePathService interface {
	// All returns every path through which the issue enters the project.
	All(ctx context.Context, opts ...RequestOption) (*IssuePaths, error)

	// Get always fails with a NotImplementedError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*IssuePaths, error)

	// First always fails with a NotImplementedError.
	First(ctx context.Context, opts ...RequestOption) (*IssuePaths, error)

	// Filter always fails with a NotImplementedError.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) (*IssuePaths, error)
}

type issuePathService struct {
	transport *api.Transport
	project   *Project
	issueID   string
}

func (s *issuePathService) All(ctx context.Context, opts ...RequestOption) (*IssuePaths, error) {
	if s.issueID == "" {
		return nil, &ValidationError{APIError: APIError{Message: "issue ID cannot be empty"}}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result IssuePaths
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method: http.MethodGet,
		Path: fmt.Sprintf("org/%s/project/%s/issue/%s/paths",
			url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID),
			url.PathEscape(s.issueID)),
		Family:  api.FamilyV1,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return &result, nil
}

func (s *issuePathService) Get(context.Context, string, ...RequestOption) (*IssuePaths, error) {
	return nil, &NotImplementedError{ResourceType: "issue paths", Capability: "get"}
}

func (s *issuePathService) First(context.Context, ...RequestOption) (*IssuePaths, error) {
	return nil, &NotImplementedError{ResourceType: "issue paths", Capability: "first"}
}

func (s *issuePathService) Filter(context.Context, map[string]any, ...RequestOption) (*IssuePaths, error) {
	return nil, &NotImplementedError{ResourceType: "issue paths", Capability: "filter"}
}
