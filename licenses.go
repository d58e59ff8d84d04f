package snyk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tphakala/go-snyk/internal/api"
)

// LicenseService provides license listings for an organization or one of
// its projects. The collection is fetched wholesale; there is no
// pagination on this endpoint.
type LicenseService interface {
	// All returns every license of this binding, in server order.
	All(ctx context.Context, opts ...RequestOption) ([]*License, error)

	// Get returns the license with the given id, or a NotFoundError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*License, error)

	// First returns the first license, or a NotFoundError when none exist.
	First(ctx context.Context, opts ...RequestOption) (*License, error)

	// Filter returns the licenses matching every supplied equality
	// criterion, keyed by JSON field name. Filtering happens client-side on
	// a full fetch.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*License, error)
}

type licenseService struct {
	transport *api.Transport
	org       *Organization
	project   *Project
}

func (s *licenseService) All(ctx context.Context, opts ...RequestOption) ([]*License, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	filters := map[string]any{}
	if s.project != nil {
		filters["projects"] = []string{s.project.ID}
	}

	params := url.Values{}
	params.Set("sortBy", "license")
	params.Set("order", "asc")

	var result struct {
		Results []*License `json:"results"`
	}
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("org/%s/licenses", url.PathEscape(s.org.ID)),
		Family:  api.FamilyV1,
		Body:    map[string]any{"filters": filters},
		Params:  params,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	if result.Results == nil {
		return []*License{}, nil
	}
	return result.Results, nil
}

func (s *licenseService) Get(ctx context.Context, id string, opts ...RequestOption) (*License, error) {
	licenses, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return getByID(licenses, id, "license")
}

func (s *licenseService) First(ctx context.Context, opts ...RequestOption) (*License, error) {
	licenses, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return firstOf(licenses, "license")
}

func (s *licenseService) Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*License, error) {
	licenses, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return filterByFields(licenses, criteria)
}
