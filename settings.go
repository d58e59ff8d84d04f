package snyk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/tphakala/go-snyk/internal/api"
)

// The dict-shaped services (entitlements, settings, ignores, jira issues)
// expose their payload as a key-to-value mapping instead of a list. By
// contract these collections are not filterable or orderable: Get is a
// direct key lookup, First returns the entry with the smallest key for
// determinism, and Filter fails with a NotImplementedError.

// dictGet looks a key up in a fetched mapping, or returns a NotFoundError.
func dictGet[V any](m map[string]V, key, resourceType string) (V, error) {
	if value, ok := m[key]; ok {
		return value, nil
	}
	var zero V
	return zero, &NotFoundError{ResourceType: resourceType, ResourceID: key}
}

// dictFirst returns the entry with the smallest key, or a NotFoundError on
// an empty mapping.
func dictFirst[V any](m map[string]V, resourceType string) (string, V, error) {
	if len(m) == 0 {
		var zero V
		return "", zero, &NotFoundError{ResourceType: resourceType}
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys[0], m[keys[0]], nil
}

// fetchDict performs the GET shared by all dict-shaped services.
func fetchDict[V any](ctx context.Context, transport *api.Transport, path string, headers http.Header) (map[string]V, error) {
	var result map[string]V
	resp, err := transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    path,
		Family:  api.FamilyV1,
		Headers: headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	if result == nil {
		result = map[string]V{}
	}
	return result, nil
}

// EntitlementService exposes an organization's entitlement flags.
type EntitlementService interface {
	// All returns the complete entitlement mapping.
	All(ctx context.Context, opts ...RequestOption) (map[string]bool, error)

	// Get returns one entitlement flag, or a NotFoundError.
	Get(ctx context.Context, key string, opts ...RequestOption) (bool, error)

	// First returns the entry with the smallest key, or a NotFoundError on
	// an empty mapping.
	First(ctx context.Context, opts ...RequestOption) (string, bool, error)

	// Filter always fails with a NotImplementedError; entitlements are not
	// filterable by contract.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) (map[string]bool, error)
}

type entitlementService struct {
	transport *api.Transport
	org       *Organization
}

func (s *entitlementService) All(ctx context.Context, opts ...RequestOption) (map[string]bool, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)
	path := fmt.Sprintf("org/%s/entitlements", url.PathEscape(s.org.ID))
	return fetchDict[bool](ctx, s.transport, path, reqCfg.headers)
}

func (s *entitlementService) Get(ctx context.Context, key string, opts ...RequestOption) (bool, error) {
	entitlements, err := s.All(ctx, opts...)
	if err != nil {
		return false, err
	}
	return dictGet(entitlements, key, "entitlement")
}

func (s *entitlementService) First(ctx context.Context, opts ...RequestOption) (string, bool, error) {
	entitlements, err := s.All(ctx, opts...)
	if err != nil {
		return "", false, err
	}
	return dictFirst(entitlements, "entitlement")
}

func (s *entitlementService) Filter(context.Context, map[string]any, ...RequestOption) (map[string]bool, error) {
	return nil, &NotImplementedError{ResourceType: "entitlements", Capability: "filter"}
}

// SettingService exposes a project's settings mapping and partial updates
// over the allowed setting keys.
type SettingService interface {
	// All returns the complete settings mapping.
	All(ctx context.Context, opts ...RequestOption) (map[string]any, error)

	// Get returns one setting, or a NotFoundError.
	Get(ctx context.Context, key string, opts ...RequestOption) (any, error)

	// First returns the entry with the smallest key, or a NotFoundError on
	// an empty mapping.
	First(ctx context.Context, opts ...RequestOption) (string, any, error)

	// Filter always fails with a NotImplementedError; settings are not
	// filterable by contract.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) (map[string]any, error)

	// Update writes the supplied settings, identified by their snake_case
	// names. Unknown keys are ignored; only supplied settings are sent.
	Update(ctx context.Context, settings map[string]any, opts ...RequestOption) error
}

type settingService struct {
	transport *api.Transport
	project   *Project
}

// allowedSettings are the snake_case setting names accepted by Update.
var allowedSettings = []string{
	"auto_dep_upgrade_enabled",
	"auto_dep_upgrade_ignored_dependencies",
	"auto_dep_upgrade_min_age",
	"auto_dep_upgrade_limit",
	"pull_request_fail_on_any_vulns",
	"pull_request_fail_only_for_high_severity",
	"pull_request_test_enabled",
	"pull_request_assignment",
	"pull_request_inheritance",
	"pull_request_fail_only_for_issues_with_fix",
	"auto_remediation_prs",
}

func (s *settingService) path() string {
	return fmt.Sprintf("org/%s/project/%s/settings",
		url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID))
}

func (s *settingService) All(ctx context.Context, opts ...RequestOption) (map[string]any, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)
	return fetchDict[any](ctx, s.transport, s.path(), reqCfg.headers)
}

func (s *settingService) Get(ctx context.Context, key string, opts ...RequestOption) (any, error) {
	settings, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return dictGet(settings, key, "setting")
}

func (s *settingService) First(ctx context.Context, opts ...RequestOption) (string, any, error) {
	settings, err := s.All(ctx, opts...)
	if err != nil {
		return "", nil, err
	}
	return dictFirst(settings, "setting")
}

func (s *settingService) Filter(context.Context, map[string]any, ...RequestOption) (map[string]any, error) {
	return nil, &NotImplementedError{ResourceType: "settings", Capability: "filter"}
}

func (s *settingService) Update(ctx context.Context, settings map[string]any, opts ...RequestOption) error {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	body := map[string]any{}
	for _, setting := range allowedSettings {
		if value, ok := settings[setting]; ok {
			body[snakeToCamel(setting)] = value
		}
	}

	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPut,
		Path:    s.path(),
		Family:  api.FamilyV1,
		Body:    body,
		Headers: reqCfg.headers,
	}, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return nil
}

// snakeToCamel converts a snake_case setting name to its camelCase wire
// form.
func snakeToCamel(name string) string {
	parts := strings.Split(name, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// IgnoreService exposes a project's ignore rules keyed by issue id.
type IgnoreService interface {
	// All returns the complete ignore mapping.
	All(ctx context.Context, opts ...RequestOption) (map[string][]json.RawMessage, error)

	// Get returns the ignore rules for one issue id, or a NotFoundError.
	Get(ctx context.Context, issueID string, opts ...RequestOption) ([]json.RawMessage, error)

	// First returns the entry with the smallest key, or a NotFoundError on
	// an empty mapping.
	First(ctx context.Context, opts ...RequestOption) (string, []json.RawMessage, error)

	// Filter always fails with a NotImplementedError; ignores are not
	// filterable by contract.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) (map[string][]json.RawMessage, error)
}

type ignoreService struct {
	transport *api.Transport
	project   *Project
}

func (s *ignoreService) All(ctx context.Context, opts ...RequestOption) (map[string][]json.RawMessage, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)
	path := fmt.Sprintf("org/%s/project/%s/ignores",
		url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID))
	return fetchDict[[]json.RawMessage](ctx, s.transport, path, reqCfg.headers)
}

func (s *ignoreService) Get(ctx context.Context, issueID string, opts ...RequestOption) ([]json.RawMessage, error) {
	ignores, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return dictGet(ignores, issueID, "ignore")
}

func (s *ignoreService) First(ctx context.Context, opts ...RequestOption) (string, []json.RawMessage, error) {
	ignores, err := s.All(ctx, opts...)
	if err != nil {
		return "", nil, err
	}
	return dictFirst(ignores, "ignore")
}

func (s *ignoreService) Filter(context.Context, map[string]any, ...RequestOption) (map[string][]json.RawMessage, error) {
	return nil, &NotImplementedError{ResourceType: "ignores", Capability: "filter"}
}

// JiraIssueService exposes a project's Jira issue links keyed by issue id,
// plus creation of new Jira issues.
type JiraIssueService interface {
	// All returns the complete Jira issue mapping.
	All(ctx context.Context, opts ...RequestOption) (map[string][]json.RawMessage, error)

	// Get returns the Jira issues linked to one issue id, or a
	// NotFoundError.
	Get(ctx context.Context, issueID string, opts ...RequestOption) ([]json.RawMessage, error)

	// First returns the entry with the smallest key, or a NotFoundError on
	// an empty mapping.
	First(ctx context.Context, opts ...RequestOption) (string, []json.RawMessage, error)

	// Filter always fails with a NotImplementedError; Jira issues are not
	// filterable by contract.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) (map[string][]json.RawMessage, error)

	// Create opens a Jira issue for the given Snyk issue and returns the
	// created issue payload.
	Create(ctx context.Context, issueID string, fields any, opts ...RequestOption) (json.RawMessage, error)
}

type jiraIssueService struct {
	transport *api.Transport
	project   *Project
}

func (s *jiraIssueService) All(ctx context.Context, opts ...RequestOption) (map[string][]json.RawMessage, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)
	path := fmt.Sprintf("org/%s/project/%s/jira-issues",
		url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID))
	return fetchDict[[]json.RawMessage](ctx, s.transport, path, reqCfg.headers)
}

func (s *jiraIssueService) Get(ctx context.Context, issueID string, opts ...RequestOption) ([]json.RawMessage, error) {
	issues, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return dictGet(issues, issueID, "jira issue")
}

func (s *jiraIssueService) First(ctx context.Context, opts ...RequestOption) (string, []json.RawMessage, error) {
	issues, err := s.All(ctx, opts...)
	if err != nil {
		return "", nil, err
	}
	return dictFirst(issues, "jira issue")
}

func (s *jiraIssueService) Filter(context.Context, map[string]any, ...RequestOption) (map[string][]json.RawMessage, error) {
	return nil, &NotImplementedError{ResourceType: "jira issues", Capability: "filter"}
}

func (s *jiraIssueService) Create(ctx context.Context, issueID string, fields any, opts ...RequestOption) (json.RawMessage, error) {
	if issueID == "" {
		return nil, &ValidationError{APIError: APIError{Message: "issue ID cannot be empty"}}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	path := fmt.Sprintf("org/%s/project/%s/issue/%s/jira-issue",
		url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID),
		url.PathEscape(issueID))

	var result map[string][]struct {
		JiraIssue json.RawMessage `json:"jiraIssue"`
	}
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    path,
		Family:  api.FamilyV1,
		Body:    map[string]any{"fields": fields},
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	// The response does not follow the documented schema; the created
	// issue hides under the Snyk issue id.
	if created, ok := result[issueID]; ok && len(created) > 0 && len(created[0].JiraIssue) > 0 {
		return created[0].JiraIssue, nil
	}
	return nil, &APIError{StatusCode: resp.StatusCode, Message: "unexpected jira issue response"}
}
