package snyk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/tphakala/go-snyk/internal/api"
)

const projectPageSize = 100

// ProjectService provides operations on Snyk projects. The service is either
// scoped to one organization (Organization.Projects) or global
// (Client.Projects); a global service unions the projects of every
// organization the token can see, in organization order.
type ProjectService interface {
	// List returns an iterator over all projects of this binding. Pages are
	// fetched lazily as you iterate.
	List(ctx context.Context, opts ...RequestOption) iter.Seq2[*Project, error]

	// All returns every project of this binding across every page, in
	// server order.
	All(ctx context.Context, opts ...RequestOption) ([]*Project, error)

	// Get returns the project with the given id. On an organization-scoped
	// service this issues one direct request; on a global service every
	// organization is consulted.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Project, error)

	// First returns the first project, or a NotFoundError when none exist.
	First(ctx context.Context, opts ...RequestOption) (*Project, error)

	// Filter returns the projects matching the structured criteria. Unlike
	// the simple resource types, project filtering is translated to
	// server-side query parameters because project collections can be too
	// large to filter client-side.
	Filter(ctx context.Context, filter *ProjectListFilter, opts ...RequestOption) ([]*Project, error)

	// Update applies a partial-attribute patch. Only the supplied fields
	// are sent so omitted attributes keep their server-side state.
	Update(ctx context.Context, id string, update *ProjectUpdate, opts ...RequestOption) error

	// Activate marks the project active.
	Activate(ctx context.Context, id string, opts ...RequestOption) error

	// Deactivate marks the project inactive.
	Deactivate(ctx context.Context, id string, opts ...RequestOption) error

	// Delete removes the project.
	Delete(ctx context.Context, id string, opts ...RequestOption) error
}

// ProjectListFilter selects projects server-side. Tag criteria are
// serialized as comma-joined key:value pairs.
type ProjectListFilter struct {
	Tags                []Tag
	Environment         []string
	BusinessCriticality []string
	Lifecycle           []string
	Origins             []string
	Types               []string
}

// ProjectUpdate carries the attributes of a partial project update. Nil or
// empty fields are omitted from the patch body entirely.
type ProjectUpdate struct {
	Tags                []Tag
	Environment         []string
	BusinessCriticality []string
	Lifecycle           []string
	TestFrequency       string
	OwnerID             string
}

type projectService struct {
	transport *api.Transport
	client    *Client
	org       *Organization
}

func newProjectService(transport *api.Transport, client *Client, org *Organization) *projectService {
	return &projectService{transport: transport, client: client, org: org}
}

// serializeTags validates tag criteria and joins them into the wire form.
// Validation failures are reported before any request is issued.
func serializeTags(tags []Tag) (string, error) {
	pairs := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag.Key == "" || tag.Value == "" {
			return "", &ValidationError{
				APIError: APIError{Message: "each tag must contain a key and a value"},
			}
		}
		pairs = append(pairs, tag.Key+":"+tag.Value)
	}
	return strings.Join(pairs, ","), nil
}

func (f *ProjectListFilter) params() (url.Values, error) {
	params := url.Values{}
	if f == nil {
		return params, nil
	}
	if len(f.Tags) > 0 {
		serialized, err := serializeTags(f.Tags)
		if err != nil {
			return nil, err
		}
		params.Set("tags", serialized)
	}
	if len(f.Environment) > 0 {
		params.Set("environment", strings.Join(f.Environment, ","))
	}
	if len(f.BusinessCriticality) > 0 {
		params.Set("business_criticality", strings.Join(f.BusinessCriticality, ","))
	}
	if len(f.Lifecycle) > 0 {
		params.Set("lifecycle", strings.Join(f.Lifecycle, ","))
	}
	if len(f.Origins) > 0 {
		params.Set("origins", strings.Join(f.Origins, ","))
	}
	if len(f.Types) > 0 {
		params.Set("types", strings.Join(f.Types, ","))
	}
	return params, nil
}

func (s *projectService) List(ctx context.Context, opts ...RequestOption) iter.Seq2[*Project, error] {
	return s.list(ctx, nil, opts...)
}

func (s *projectService) list(ctx context.Context, filter *ProjectListFilter, opts ...RequestOption) iter.Seq2[*Project, error] {
	if s.org == nil {
		return s.listAcrossOrgs(ctx, filter, opts...)
	}

	return func(yield func(*Project, error) bool) {
		reqCfg := newRequestConfig()
		reqCfg.apply(opts...)

		params, err := filter.params()
		if err != nil {
			yield(nil, err)
			return
		}
		params.Set("limit", fmt.Sprint(projectPageSize))
		params.Set("meta.latest_issue_counts", "true")
		params.Set("expand", "target")

		pages := cursorPages(s.transport, ctx, &api.Request{
			Method:  http.MethodGet,
			Path:    fmt.Sprintf("orgs/%s/projects", url.PathEscape(s.org.ID)),
			Family:  api.FamilyREST,
			Params:  params,
			Headers: reqCfg.headers,
		})

		for raw, err := range pages {
			if err != nil {
				yield(nil, err)
				return
			}
			project := new(Project)
			if err := json.Unmarshal(raw, project); err != nil {
				yield(nil, fmt.Errorf("decoding project: %w", err))
				return
			}
			project.Organization = s.org
			if !yield(project, nil) {
				return
			}
		}
	}
}

// listAcrossOrgs unions the projects of every organization, preserving the
// organization order and each organization's server order.
func (s *projectService) listAcrossOrgs(ctx context.Context, filter *ProjectListFilter, opts ...RequestOption) iter.Seq2[*Project, error] {
	return func(yield func(*Project, error) bool) {
		orgs, err := s.client.Orgs.All(ctx, opts...)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, org := range orgs {
			scoped := newProjectService(s.transport, s.client, org)
			for project, err := range scoped.list(ctx, filter, opts...) {
				if !yield(project, err) || err != nil {
					return
				}
			}
		}
	}
}

func (s *projectService) All(ctx context.Context, opts ...RequestOption) ([]*Project, error) {
	return Collect(s.List(ctx, opts...))
}

func (s *projectService) Get(ctx context.Context, id string, opts ...RequestOption) (*Project, error) {
	if s.org == nil {
		return s.getAcrossOrgs(ctx, id, opts...)
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	params := url.Values{}
	params.Set("meta.latest_issue_counts", "true")
	params.Set("expand", "target")

	var result struct {
		Data *Project `json:"data"`
	}
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("orgs/%s/projects/%s", url.PathEscape(s.org.ID), url.PathEscape(id)),
		Family:  api.FamilyREST,
		Params:  params,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{
			APIError:     APIError{StatusCode: http.StatusNotFound, Message: "project not found"},
			ResourceType: "project",
			ResourceID:   id,
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	if result.Data == nil {
		return nil, &NotFoundError{ResourceType: "project", ResourceID: id}
	}

	project := result.Data
	project.Organization = s.org
	return project, nil
}

func (s *projectService) getAcrossOrgs(ctx context.Context, id string, opts ...RequestOption) (*Project, error) {
	orgs, err := s.client.Orgs.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	for _, org := range orgs {
		scoped := newProjectService(s.transport, s.client, org)
		project, err := scoped.Get(ctx, id, opts...)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		return project, nil
	}
	return nil, &NotFoundError{ResourceType: "project", ResourceID: id}
}

func (s *projectService) First(ctx context.Context, opts ...RequestOption) (*Project, error) {
	project, err := First(s.List(ctx, opts...))
	if errors.Is(err, ErrEmptyIterator) {
		return nil, &NotFoundError{ResourceType: "project"}
	}
	return project, err
}

func (s *projectService) Filter(ctx context.Context, filter *ProjectListFilter, opts ...RequestOption) ([]*Project, error) {
	// Validate before any request goes out.
	if filter != nil {
		if _, err := serializeTags(filter.Tags); err != nil {
			return nil, err
		}
	}
	return Collect(s.list(ctx, filter, opts...))
}

func (s *projectService) Update(ctx context.Context, id string, update *ProjectUpdate, opts ...RequestOption) error {
	if update == nil {
		return &ValidationError{APIError: APIError{Message: "update cannot be nil"}}
	}

	attributes := map[string]any{}
	if len(update.Tags) > 0 {
		if _, err := serializeTags(update.Tags); err != nil {
			return err
		}
		attributes["tags"] = update.Tags
	}
	if len(update.Environment) > 0 {
		attributes["environment"] = update.Environment
	}
	if len(update.BusinessCriticality) > 0 {
		attributes["business_criticality"] = update.BusinessCriticality
	}
	if len(update.Lifecycle) > 0 {
		attributes["lifecycle"] = update.Lifecycle
	}
	if update.TestFrequency != "" {
		attributes["test_frequency"] = update.TestFrequency
	}

	relationships := map[string]any{}
	if update.OwnerID != "" {
		relationships["owner"] = map[string]any{
			"data": map[string]any{"id": update.OwnerID, "type": "user"},
		}
	}

	return s.patchAttributes(ctx, id, attributes, relationships, opts...)
}

func (s *projectService) Activate(ctx context.Context, id string, opts ...RequestOption) error {
	return s.patchAttributes(ctx, id, map[string]any{"status": "active"}, nil, opts...)
}

func (s *projectService) Deactivate(ctx context.Context, id string, opts ...RequestOption) error {
	return s.patchAttributes(ctx, id, map[string]any{"status": "inactive"}, nil, opts...)
}

// patchAttributes sends a JSON-API partial update carrying only the supplied
// attributes. A global service resolves the owning organization first.
func (s *projectService) patchAttributes(ctx context.Context, id string, attributes, relationships map[string]any, opts ...RequestOption) error {
	org := s.org
	if org == nil {
		project, err := s.getAcrossOrgs(ctx, id, opts...)
		if err != nil {
			return err
		}
		org = project.Organization
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	if relationships == nil {
		relationships = map[string]any{}
	}
	body := map[string]any{
		"data": map[string]any{
			"id":            id,
			"type":          "project",
			"attributes":    attributes,
			"relationships": relationships,
		},
	}

	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPatch,
		Path:    fmt.Sprintf("orgs/%s/projects/%s", url.PathEscape(org.ID), url.PathEscape(id)),
		Family:  api.FamilyREST,
		Body:    body,
		Headers: reqCfg.headers,
	}, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{
			APIError:     APIError{StatusCode: http.StatusNotFound, Message: "project not found"},
			ResourceType: "project",
			ResourceID:   id,
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return nil
}

func (s *projectService) Delete(ctx context.Context, id string, opts ...RequestOption) error {
	org := s.org
	if org == nil {
		project, err := s.getAcrossOrgs(ctx, id, opts...)
		if err != nil {
			return err
		}
		org = project.Organization
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodDelete,
		Path:    fmt.Sprintf("orgs/%s/projects/%s", url.PathEscape(org.ID), url.PathEscape(id)),
		Family:  api.FamilyREST,
		Headers: reqCfg.headers,
	}, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{
			APIError:     APIError{StatusCode: http.StatusNotFound, Message: "project not found"},
			ResourceType: "project",
			ResourceID:   id,
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return nil
}

// Tags returns the tag service bound to this project.
func (p *Project) Tags() TagService {
	return &tagService{transport: p.Organization.client.transport, project: p}
}

// Settings returns the settings service bound to this project.
func (p *Project) Settings() SettingService {
	return &settingService{transport: p.Organization.client.transport, project: p}
}

// Ignores returns the ignore service bound to this project.
func (p *Project) Ignores() IgnoreService {
	return &ignoreService{transport: p.Organization.client.transport, project: p}
}

// JiraIssues returns the Jira issue service bound to this project.
func (p *Project) JiraIssues() JiraIssueService {
	return &jiraIssueService{transport: p.Organization.client.transport, project: p}
}

// Issues returns the issue set service bound to this project.
func (p *Project) Issues() IssueSetService {
	return &issueSetService{transport: p.Organization.client.transport, project: p}
}

// AggregatedIssues returns the aggregated issue service bound to this
// project.
func (p *Project) AggregatedIssues() AggregatedIssueService {
	return &aggregatedIssueService{transport: p.Organization.client.transport, project: p}
}

// IssuePaths returns the issue path service bound to this project and
// issue.
func (p *Project) IssuePaths(issueID string) IssuePathService {
	return &issuePathService{transport: p.Organization.client.transport, project: p, issueID: issueID}
}

// DependencyGraph returns the dependency graph service bound to this
// project.
func (p *Project) DependencyGraph() DependencyGraphService {
	return &dependencyGraphService{transport: p.Organization.client.transport, project: p}
}

// Dependencies returns the dependency service scoped to this project.
func (p *Project) Dependencies() DependencyService {
	return &dependencyService{transport: p.Organization.client.transport, org: p.Organization, project: p}
}

// Licenses returns the license service scoped to this project.
func (p *Project) Licenses() LicenseService {
	return &licenseService{transport: p.Organization.client.transport, org: p.Organization, project: p}
}
