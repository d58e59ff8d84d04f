package snyk

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tphakala/go-snyk/internal/api"
)

// listEnvelope is the JSON-API collection envelope shared by v3 and REST
// endpoints. links.next carries the cursor for the following page.
type listEnvelope struct {
	Data  []json.RawMessage `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

// pagedEnvelope is the legacy v1 bulk envelope. total drives page-number
// pagination.
type pagedEnvelope struct {
	Total   int               `json:"total"`
	Results []json.RawMessage `json:"results"`
}

// cursorPages fetches every page of a v3/REST collection, following
// links.next verbatim until absent, and yields the raw data items in server
// order. Failure on any page aborts the iteration with the transport error;
// no partial pages are retried or reordered.
func cursorPages(transport *api.Transport, ctx context.Context, req *api.Request) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		current := req
		for {
			var page listEnvelope
			resp, err := transport.DoJSON(ctx, current, &page)
			if err != nil {
				yield(nil, err)
				return
			}
			if resp.StatusCode >= http.StatusBadRequest {
				yield(nil, parseError(resp.StatusCode, resp.Body, resp.Headers))
				return
			}

			for _, item := range page.Data {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				if !yield(item, nil) {
					return
				}
			}

			if page.Links.Next == "" {
				return
			}
			// Next links arrive fully versioned; follow them without
			// re-injecting the version or the original parameters.
			current = &api.Request{
				Method:     http.MethodGet,
				Path:       page.Links.Next,
				Family:     req.Family,
				Headers:    req.Headers,
				FollowLink: true,
			}
		}
	}
}

// numberedPages fetches every page of a legacy v1 bulk POST endpoint,
// incrementing the page counter at a fixed page size until the
// server-declared total is exhausted.
func numberedPages(transport *api.Transport, ctx context.Context, path string, params url.Values, headers http.Header, body any, perPage int) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		page := 1
		for {
			pageParams := url.Values{}
			for key, values := range params {
				if len(values) > 0 {
					pageParams.Set(key, values[0])
				}
			}
			pageParams.Set("page", strconv.Itoa(page))
			pageParams.Set("perPage", strconv.Itoa(perPage))

			var envelope pagedEnvelope
			resp, err := transport.DoJSON(ctx, &api.Request{
				Method:  http.MethodPost,
				Path:    path,
				Family:  api.FamilyV1,
				Body:    body,
				Params:  pageParams,
				Headers: headers,
			}, &envelope)
			if err != nil {
				yield(nil, err)
				return
			}
			if resp.StatusCode >= http.StatusBadRequest {
				yield(nil, parseError(resp.StatusCode, resp.Body, resp.Headers))
				return
			}

			for _, item := range envelope.Results {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				if !yield(item, nil) {
					return
				}
			}

			if envelope.Total <= page*perPage {
				return
			}
			page++
		}
	}
}
