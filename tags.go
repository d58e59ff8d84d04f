package snyk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/tphakala/go-snyk/internal/api"
)

// TagService provides tag operations on one project.
//
// Tags arrive embedded in the project payload and are cached on the project
// when it is fetched, so All reads the cache without a round trip. There is
// no dedicated tag endpoint upstream: Add and Delete recompute the full tag
// list from the cache and patch the whole attributes object, then refresh
// the cache on success. Order of surviving tags is preserved.
type TagService interface {
	// All returns the project's tags from the cache populated at fetch time.
	All(ctx context.Context) ([]Tag, error)

	// Add appends a tag and replaces the server-side tag list.
	Add(ctx context.Context, key, value string, opts ...RequestOption) error

	// Delete removes the matching tag and replaces the server-side tag
	// list. Only tags matching both key and value are removed.
	Delete(ctx context.Context, key, value string, opts ...RequestOption) error
}

type tagService struct {
	transport *api.Transport
	project   *Project
}

func (s *tagService) All(_ context.Context) ([]Tag, error) {
	return slices.Clone(s.project.tags), nil
}

func (s *tagService) Add(ctx context.Context, key, value string, opts ...RequestOption) error {
	if key == "" || value == "" {
		return &ValidationError{
			APIError: APIError{Message: "a tag requires both a key and a value"},
		}
	}

	newTags := append(slices.Clone(s.project.tags), Tag{Key: key, Value: value})
	if err := s.replaceTags(ctx, newTags, opts...); err != nil {
		return err
	}
	s.project.tags = newTags
	return nil
}

func (s *tagService) Delete(ctx context.Context, key, value string, opts ...RequestOption) error {
	if key == "" || value == "" {
		return &ValidationError{
			APIError: APIError{Message: "a tag requires both a key and a value"},
		}
	}

	remaining := make([]Tag, 0, len(s.project.tags))
	for _, tag := range s.project.tags {
		if tag.Key == key && tag.Value == value {
			continue
		}
		remaining = append(remaining, tag)
	}
	if err := s.replaceTags(ctx, remaining, opts...); err != nil {
		return err
	}
	s.project.tags = remaining
	return nil
}

// replaceTags patches the complete tag list. The API only accepts
// whole-list replacement.
func (s *tagService) replaceTags(ctx context.Context, tags []Tag, opts ...RequestOption) error {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	body := map[string]any{
		"data": map[string]any{
			"id":   s.project.ID,
			"type": "project",
			"attributes": map[string]any{
				"tags": tags,
			},
			"relationships": map[string]any{},
		},
	}

	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method: http.MethodPatch,
		Path: fmt.Sprintf("orgs/%s/projects/%s",
			url.PathEscape(s.project.Organization.ID), url.PathEscape(s.project.ID)),
		Family:  api.FamilyREST,
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
