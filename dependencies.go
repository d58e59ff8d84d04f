package snyk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/url"

	"github.com/tphakala/go-snyk/internal/api"
)

const dependencyPageSize = 100

// DependencyService provides dependency listings for an organization or one
// of its projects. The upstream endpoint is a legacy bulk POST paginated by
// page number against a server-declared total.
type DependencyService interface {
	// List returns an iterator over all dependencies of this binding.
	// Pages are fetched lazily as you iterate.
	List(ctx context.Context, opts ...RequestOption) iter.Seq2[*Dependency, error]

	// All returns every dependency across every page, in server order.
	All(ctx context.Context, opts ...RequestOption) ([]*Dependency, error)

	// Get returns the dependency with the given id, or a NotFoundError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Dependency, error)

	// First returns the first dependency, or a NotFoundError when none
	// exist.
	First(ctx context.Context, opts ...RequestOption) (*Dependency, error)

	// Filter returns the dependencies matching every supplied equality
	// criterion, keyed by JSON field name. Filtering happens client-side on
	// a full fetch.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Dependency, error)
}

type dependencyService struct {
	transport *api.Transport
	org       *Organization
	project   *Project
}

func (s *dependencyService) List(ctx context.Context, opts ...RequestOption) iter.Seq2[*Dependency, error] {
	return func(yield func(*Dependency, error) bool) {
		reqCfg := newRequestConfig()
		reqCfg.apply(opts...)

		filters := map[string]any{}
		if s.project != nil {
			filters["projects"] = []string{s.project.ID}
		}
		body := map[string]any{"filters": filters}

		params := url.Values{}
		params.Set("sortBy", "dependency")
		params.Set("order", "asc")

		path := fmt.Sprintf("org/%s/dependencies", url.PathEscape(s.org.ID))
		for raw, err := range numberedPages(s.transport, ctx, path, params, reqCfg.headers, body, dependencyPageSize) {
			if err != nil {
				yield(nil, err)
				return
			}
			dependency := new(Dependency)
			if err := json.Unmarshal(raw, dependency); err != nil {
				yield(nil, fmt.Errorf("decoding dependency: %w", err))
				return
			}
			if !yield(dependency, nil) {
				return
			}
		}
	}
}

func (s *dependencyService) All(ctx context.Context, opts ...RequestOption) ([]*Dependency, error) {
	return Collect(s.List(ctx, opts...))
}

func (s *dependencyService) Get(ctx context.Context, id string, opts ...RequestOption) (*Dependency, error) {
	deps, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return getByID(deps, id, "dependency")
}

func (s *dependencyService) First(ctx context.Context, opts ...RequestOption) (*Dependency, error) {
	dep, err := First(s.List(ctx, opts...))
	if errors.Is(err, ErrEmptyIterator) {
		return nil, &NotFoundError{ResourceType: "dependency"}
	}
	return dep, err
}

func (s *dependencyService) Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Dependency, error) {
	deps, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return filterByFields(deps, criteria)
}
