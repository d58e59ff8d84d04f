package snyk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tphakala/go-snyk/internal/api"
)

// DependencyGraphService provides the resolved dependency graph of one
// project. The graph is a singleton, so Get, First and Filter fail with a
// NotImplementedError.
type DependencyGraphService interface {
	// All returns the project's dependency graph.
	All(ctx context.Context, opts ...RequestOption) (*DependencyGraph, error)

	// Get always fails with a NotImplementedError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*DependencyGraph, error)

	// First always fails with a NotImplementedError.
	First(ctx context.Context, opts ...RequestOption) (*DependencyGraph, error)

	// Filter always fails with a NotImplementedError.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) (*DependencyGraph, error)
}

type dependencyGraphService struct {
	transport *api.Transport
	project   *Project
}

func (s *dependencyGraphService) All(ctx context.Context, opts ...RequestOption) (*DependencyGraph, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		DepGraph DependencyGraph `json:"depGraph"`
	}
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method: http.MethodGet,
		Path: fmt.Sprintf("org/%s/project/%s/dep-graph",
			url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID)),
		Family:  api.FamilyV1,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return &result.DepGraph, nil
}

func (s *dependencyGraphService) Get(context.Context, string, ...RequestOption) (*DependencyGraph, error) {
	return nil, &NotImplementedError{ResourceType: "dependency graph", Capability: "get"}
}

func (s *dependencyGraphService) First(context.Context, ...RequestOption) (*DependencyGraph, error) {
	return nil, &NotImplementedError{ResourceType: "dependency graph", Capability: "first"}
}

func (s *dependencyGraphService) Filter(context.Context, map[string]any, ...RequestOption) (*DependencyGraph, error) {
	return nil, &NotImplementedError{ResourceType: "dependency graph", Capability: "filter"}
}
