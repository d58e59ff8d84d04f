package snyk

import (
	"context"
	"net/http"

	"github.com/tphakala/go-snyk/internal/api"
)

// OrganizationService provides operations on Snyk organizations.
type OrganizationService interface {
	// All returns every organization the token can see, in server order.
	All(ctx context.Context, opts ...RequestOption) ([]*Organization, error)

	// Get returns the organization with the given id, or a NotFoundError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Organization, error)

	// First returns the first organization, or a NotFoundError when none
	// exist.
	First(ctx context.Context, opts ...RequestOption) (*Organization, error)

	// Filter returns the organizations matching every supplied equality
	// criterion, keyed by JSON field name. Filtering happens client-side on
	// a full fetch.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Organization, error)
}

type organizationService struct {
	transport *api.Transport
	client    *Client
}

func newOrganizationService(transport *api.Transport, client *Client) *organizationService {
	return &organizationService{transport: transport, client: client}
}

func (s *organizationService) All(ctx context.Context, opts ...RequestOption) ([]*Organization, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		Orgs []*Organization `json:"orgs"`
	}
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "orgs",
		Family:  api.FamilyV1,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	orgs := result.Orgs
	if orgs == nil {
		orgs = []*Organization{}
	}
	for _, org := range orgs {
		org.client = s.client
	}
	return orgs, nil
}

func (s *organizationService) Get(ctx context.Context, id string, opts ...RequestOption) (*Organization, error) {
	orgs, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return getByID(orgs, id, "organization")
}

func (s *organizationService) First(ctx context.Context, opts ...RequestOption) (*Organization, error) {
	orgs, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return firstOf(orgs, "organization")
}

func (s *organizationService) Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Organization, error) {
	orgs, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return filterByFields(orgs, criteria)
}

// Org returns a lightweight organization handle bound to the client without
// issuing a request. Useful when the organization id is already known and
// only its child collections are of interest.
func (c *Client) Org(id string) *Organization {
	return &Organization{ID: id, client: c}
}

// Projects returns the project service scoped to this organization.
func (o *Organization) Projects() ProjectService {
	return newProjectService(o.client.transport, o.client, o)
}

// Members returns the member service scoped to this organization.
func (o *Organization) Members() MemberService {
	return &memberService{transport: o.client.transport, org: o}
}

// Licenses returns the license service scoped to this organization.
func (o *Organization) Licenses() LicenseService {
	return &licenseService{transport: o.client.transport, org: o}
}

// Dependencies returns the dependency service scoped to this organization.
func (o *Organization) Dependencies() DependencyService {
	return &dependencyService{transport: o.client.transport, org: o}
}

// Entitlements returns the entitlement service scoped to this organization.
func (o *Organization) Entitlements() EntitlementService {
	return &entitlementService{transport: o.client.transport, org: o}
}

// Targets returns the target service scoped to this organization.
func (o *Organization) Targets() TargetService {
	return &targetService{transport: o.client.transport, org: o}
}

// Integrations returns the integration service scoped to this organization.
func (o *Organization) Integrations() IntegrationService {
	return &integrationService{transport: o.client.transport, org: o}
}
