package snyk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tphakala/go-snyk/internal/api"
)

// OrgTestResult is the outcome of an on-demand package test. The shape
// matches a project issue snapshot, so the two share a type.
type OrgTestResult = IssueSet

// TestRubygem tests a published Ruby gem at the given version for known
// issues.
func (o *Organization) TestRubygem(ctx context.Context, name, version string, opts ...RequestOption) (*OrgTestResult, error) {
	return o.packageTest(ctx, fmt.Sprintf("test/rubygems/%s/%s",
		url.PathEscape(name), url.PathEscape(version)), opts...)
}

// TestMaven tests a published Maven artifact at the given version for known
// issues.
func (o *Organization) TestMaven(ctx context.Context, groupID, artifactID, version string, opts ...RequestOption) (*OrgTestResult, error) {
	return o.packageTest(ctx, fmt.Sprintf("test/maven/%s/%s/%s",
		url.PathEscape(groupID), url.PathEscape(artifactID), url.PathEscape(version)), opts...)
}

// TestPip tests a published Python package at the given version for known
// issues.
func (o *Organization) TestPip(ctx context.Context, name, version string, opts ...RequestOption) (*OrgTestResult, error) {
	return o.packageTest(ctx, fmt.Sprintf("test/pip/%s/%s",
		url.PathEscape(name), url.PathEscape(version)), opts...)
}

// TestNpm tests a published npm package at the given version for known
// issues.
func (o *Organization) TestNpm(ctx context.Context, name, version string, opts ...RequestOption) (*OrgTestResult, error) {
	return o.packageTest(ctx, fmt.Sprintf("test/npm/%s/%s",
		url.PathEscape(name), url.PathEscape(version)), opts...)
}

func (o *Organization) packageTest(ctx context.Context, path string, opts ...RequestOption) (*OrgTestResult, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	params := url.Values{}
	params.Set("org", o.ID)

	var result OrgTestResult
	resp, err := o.client.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    path,
		Family:  api.FamilyV1,
		Params:  params,
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
