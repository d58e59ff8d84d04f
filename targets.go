package snyk

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"

	"github.com/tphakala/go-snyk/internal/api"
)

const targetPageSize = 100

// TargetService provides the import targets of an organization. Targets are
// only served by the JSON-API style endpoints, so this is the one collection
// fetched from the v3 family.
type TargetService interface {
	// List returns an iterator over all targets of the organization. Pages
	// are fetched lazily as you iterate.
	List(ctx context.Context, opts ...RequestOption) iter.Seq2[*Target, error]

	// All returns every target across every page, in server order.
	All(ctx context.Context, opts ...RequestOption) ([]*Target, error)

	// Get returns the target with the given id, or a NotFoundError. The
	// lookup scans the listing client-side.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Target, error)

	// First returns the first target, or a NotFoundError when none exist.
	First(ctx context.Context, opts ...RequestOption) (*Target, error)
}

type targetService struct {
	transport *api.Transport
	org       *Organization
}

func (s *targetService) List(ctx context.Context, opts ...RequestOption) iter.Seq2[*Target, error] {
	return func(yield func(*Target, error) bool) {
		reqCfg := newRequestConfig()
		reqCfg.apply(opts...)

		params := url.Values{}
		params.Set("limit", fmt.Sprint(targetPageSize))

		pages := cursorPages(s.transport, ctx, &api.Request{
			Method:  http.MethodGet,
			Path:    fmt.Sprintf("orgs/%s/targets", url.PathEscape(s.org.ID)),
			Family:  api.FamilyV3,
			Params:  params,
			Headers: reqCfg.headers,
		})

		for raw, err := range pages {
			if err != nil {
				yield(nil, err)
				return
			}
			target := new(Target)
			if err := json.Unmarshal(raw, target); err != nil {
				yield(nil, fmt.Errorf("decoding target: %w", err))
				return
			}
			target.Organization = s.org
			if !yield(target, nil) {
				return
			}
		}
	}
}

func (s *targetService) All(ctx context.Context, opts ...RequestOption) ([]*Target, error) {
	return Collect(s.List(ctx, opts...))
}

func (s *targetService) Get(ctx context.Context, id string, opts ...RequestOption) (*Target, error) {
	for target, err := range s.List(ctx, opts...) {
		if err != nil {
			return nil, err
		}
		if target.ID == id {
			return target, nil
		}
	}
	return nil, &NotFoundError{ResourceType: "target", ResourceID: id}
}

func (s *targetService) First(ctx context.Context, opts ...RequestOption) (*Target, error) {
	for target, err := range s.List(ctx, opts...) {
		return target, err
	}
	return nil, &NotFoundError{ResourceType: "target"}
}
