package snyk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/tphakala/go-snyk/internal/api"
)

// IntegrationService provides integration listings for an organization. The
// upstream endpoint returns a name-to-id mapping; it is decoded into
// Integration records sorted by name for deterministic ordering.
type IntegrationService interface {
	// All returns every integration of the organization.
	All(ctx context.Context, opts ...RequestOption) ([]*Integration, error)

	// Get returns the integration with the given id, or a NotFoundError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Integration, error)

	// First returns the first integration, or a NotFoundError when none
	// exist.
	First(ctx context.Context, opts ...RequestOption) (*Integration, error)

	// Filter returns the integrations matching every supplied equality
	// criterion, keyed by JSON field name. Filtering happens client-side on
	// a full fetch.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Integration, error)
}

type integrationService struct {
	transport *api.Transport
	org       *Organization
}

func (s *integrationService) All(ctx context.Context, opts ...RequestOption) ([]*Integration, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var byName map[string]string
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("org/%s/integrations", url.PathEscape(s.org.ID)),
		Family:  api.FamilyV1,
		Headers: reqCfg.headers,
	}, &byName)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	integrations := make([]*Integration, 0, len(names))
	for _, name := range names {
		integrations = append(integrations, &Integration{ID: byName[name], Name: name, Organization: s.org})
	}
	return integrations, nil
}

func (s *integrationService) Get(ctx context.Context, id string, opts ...RequestOption) (*Integration, error) {
	integrations, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return getByID(integrations, id, "integration")
}

func (s *integrationService) First(ctx context.Context, opts ...RequestOption) (*Integration, error) {
	integrations, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return firstOf(integrations, "integration")
}

func (s *integrationService) Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Integration, error) {
	integrations, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return filterByFields(integrations, criteria)
}

// IntegrationSettingService exposes an integration's settings mapping.
type IntegrationSettingService interface {
	// All returns the complete settings mapping.
	All(ctx context.Context, opts ...RequestOption) (map[string]any, error)

	// Get returns one setting, or a NotFoundError.
	Get(ctx context.Context, key string, opts ...RequestOption) (any, error)

	// First returns the entry with the smallest key, or a NotFoundError on
	// an empty mapping.
	First(ctx context.Context, opts ...RequestOption) (string, any, error)

	// Filter always fails with a NotImplementedError; integration settings
	// are not filterable by contract.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) (map[string]any, error)
}

type integrationSettingService struct {
	transport   *api.Transport
	integration *Integration
}

func (s *integrationSettingService) All(ctx context.Context, opts ...RequestOption) (map[string]any, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)
	path := fmt.Sprintf("org/%s/integrations/%s/settings",
		url.PathEscape(s.integration.Organization.ID), url.PathEscape(s.integration.ID))
	return fetchDict[any](ctx, s.transport, path, reqCfg.headers)
}

func (s *integrationSettingService) Get(ctx context.Context, key string, opts ...RequestOption) (any, error) {
	settings, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return dictGet(settings, key, "integration setting")
}

func (s *integrationSettingService) First(ctx context.Context, opts ...RequestOption) (string, any, error) {
	settings, err := s.All(ctx, opts...)
	if err != nil {
		return "", nil, err
	}
	return dictFirst(settings, "integration setting")
}

func (s *integrationSettingService) Filter(context.Context, map[string]any, ...RequestOption) (map[string]any, error) {
	return nil, &NotImplementedError{ResourceType: "integration settings", Capability: "filter"}
}

// Settings returns the settings service bound to this integration.
func (i *Integration) Settings() IntegrationSettingService {
	return &integrationSettingService{transport: i.Organization.client.transport, integration: i}
}
