package snyk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tphakala/go-snyk/internal/api"
)

// MemberService provides member listings for an organization.
type MemberService interface {
	// All returns every member of the organization, in server order.
	All(ctx context.Context, opts ...RequestOption) ([]*Member, error)

	// Get returns the member with the given id, or a NotFoundError.
	Get(ctx context.Context, id string, opts ...RequestOption) (*Member, error)

	// First returns the first member, or a NotFoundError when none exist.
	First(ctx context.Context, opts ...RequestOption) (*Member, error)

	// Filter returns the members matching every supplied equality
	// criterion, keyed by JSON field name. Filtering happens client-side on
	// a full fetch.
	Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Member, error)
}

type memberService struct {
	transport *api.Transport
	org       *Organization
}

func (s *memberService) All(ctx context.Context, opts ...RequestOption) ([]*Member, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var members []*Member
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("org/%s/members", url.PathEscape(s.org.ID)),
		Family:  api.FamilyV1,
		Headers: reqCfg.headers,
	}, &members)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	if members == nil {
		members = []*Member{}
	}
	return members, nil
}

func (s *memberService) Get(ctx context.Context, id string, opts ...RequestOption) (*Member, error) {
	members, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return getByID(members, id, "member")
}

func (s *memberService) First(ctx context.Context, opts ...RequestOption) (*Member, error) {
	members, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return firstOf(members, "member")
}

func (s *memberService) Filter(ctx context.Context, criteria map[string]any, opts ...RequestOption) ([]*Member, error) {
	members, err := s.All(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return filterByFields(members, criteria)
}
