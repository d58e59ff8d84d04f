// Package api provides low-level HTTP transport for Snyk API calls
// across the three API generations (v1, v3, REST).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tphakala/go-snyk/internal/auth"
)

// Family identifies one of the three Snyk API generations. Each family has
// its own base URL, request envelope, content type and versioning scheme.
type Family int

const (
	// FamilyV1 is the legacy flat-JSON API under /v1.
	FamilyV1 Family = iota
	// FamilyV3 is the experimental JSON-API style API under /v3.
	FamilyV3
	// FamilyREST is the GA JSON-API style API under /rest.
	FamilyREST
)

// String returns the family name as used in log output.
func (f Family) String() string {
	switch f {
	case FamilyV1:
		return "v1"
	case FamilyV3:
		return "v3"
	case FamilyREST:
		return "rest"
	default:
		return "unknown"
	}
}

// Default configuration per family.
const (
	DefaultV1BaseURL   = "https://api.snyk.io/v1"
	DefaultV3BaseURL   = "https://api.snyk.io/v3"
	DefaultRESTBaseURL = "https://api.snyk.io/rest"

	DefaultV3Version   = "2022-02-16~experimental"
	DefaultRESTVersion = "2024-06-21"

	defaultHTTPTimeout = 30 * time.Second
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// RetryPolicy controls how server errors are retried. Attempts is the total
// number of tries; 1 means no retry. Factor multiplies the delay between
// consecutive attempts; values at or below 1 give a constant delay.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Factor   float64
}

// Transport handles HTTP communication with the Snyk API.
type Transport struct {
	BaseURLs    map[Family]*url.URL
	Versions    map[Family]string
	HTTPClient  *http.Client
	Credentials *auth.Credentials
	UserAgent   string
	Retry       RetryPolicy
	Logger      *slog.Logger
}

// NewTransport creates a Transport with the given configuration. Empty base
// URLs fall back to the public Snyk endpoints.
func NewTransport(baseURLs map[Family]string, creds *auth.Credentials, httpClient *http.Client) (*Transport, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials must be provided")
	}

	defaults := map[Family]string{
		FamilyV1:   DefaultV1BaseURL,
		FamilyV3:   DefaultV3BaseURL,
		FamilyREST: DefaultRESTBaseURL,
	}
	parsed := make(map[Family]*url.URL, len(defaults))
	for family, fallback := range defaults {
		raw := baseURLs[family]
		if raw == "" {
			raw = fallback
		}
		u, err := url.Parse(strings.TrimSuffix(raw, "/"))
		if err != nil {
			return nil, fmt.Errorf("invalid %s base URL: %w", family, err)
		}
		parsed[family] = u
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultHTTPTimeout,
		}
	}

	return &Transport{
		BaseURLs: parsed,
		Versions: map[Family]string{
			FamilyV3:   DefaultV3Version,
			FamilyREST: DefaultRESTVersion,
		},
		HTTPClient:  httpClient,
		Credentials: creds,
		UserAgent:   "go-snyk/1.0",
		Retry:       RetryPolicy{Attempts: 1},
	}, nil
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Family  Family
	Body    any
	Params  url.Values
	Headers http.Header

	// Version overrides the family default API version parameter.
	Version string

	// FollowLink marks Path as a server-issued pagination link. Such links
	// arrive fully versioned, so no version or default parameters are
	// injected when following them.
	FollowLink bool
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Do executes an API request and returns the raw response. Responses with a
// 5xx status are retried per the configured policy; the response returned
// after exhausting all attempts is the last one received. Any other status
// is returned as-is for the caller to interpret.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	// Marshal once so each attempt gets a fresh reader over the same bytes.
	var body []byte
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = data
	}

	u, err := t.buildURL(req)
	if err != nil {
		return nil, err
	}

	attempt := 0
	operation := func() (*Response, error) {
		attempt++
		resp, err := t.doOnce(ctx, req, u, body)
		if err != nil {
			t.log(req, u, 0, attempt, err)
			return nil, err
		}
		t.log(req, u, resp.StatusCode, attempt, nil)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverStatusError{resp: resp}
		}
		return resp, nil
	}

	resp, err := backoff.RetryWithData(operation, backoff.WithContext(t.backOff(), ctx))
	if err != nil {
		var statusErr *serverStatusError
		if errors.As(err, &statusErr) {
			// Retries exhausted; hand the last response to the caller so the
			// error layer can report its status and body.
			return statusErr.resp, nil
		}
		return nil, err
	}
	return resp, nil
}

// DoJSON executes a request and unmarshals the JSON response into result.
// It only attempts to unmarshal on success status codes (< 400).
func (t *Transport) DoJSON(ctx context.Context, req *Request, result any) (*Response, error) {
	resp, err := t.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if result != nil && len(resp.Body) > 0 && resp.StatusCode < 400 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return resp, fmt.Errorf("unmarshaling response: %w", err)
		}
	}

	return resp, nil
}

func (t *Transport) doOnce(ctx context.Context, req *Request, u *url.URL, body []byte) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	contentType := "application/json"
	if req.Family != FamilyV1 {
		contentType = "application/vnd.api+json"
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", contentType)
	httpReq.Header.Set("User-Agent", t.UserAgent)

	t.Credentials.Apply(httpReq)

	maps.Copy(httpReq.Header, req.Headers)

	httpResp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	limitedReader := io.LimitReader(httpResp.Body, defaultMaxBodySize+1)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if int64(len(respBody)) > defaultMaxBodySize {
		return nil, backoff.Permanent(fmt.Errorf("response too large: exceeds %d bytes", defaultMaxBodySize))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// buildURL joins the family base URL with the request path and normalizes
// query parameters. A parameter present both in the path and in Params is
// collapsed to the explicit Params value, one value per key. The API version
// parameter is appended for v3/REST requests except when following a
// server-issued link, which arrives already versioned.
func (t *Transport) buildURL(req *Request) (*url.URL, error) {
	path := req.Path
	embedded := url.Values{}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		parsed, err := url.ParseQuery(path[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid query in path %q: %w", req.Path, err)
		}
		embedded = parsed
		path = path[:i]
	}

	u := t.BaseURLs[req.Family].JoinPath(strings.TrimPrefix(path, "/"))

	if !req.FollowLink {
		for key, values := range req.Params {
			if len(values) > 0 {
				embedded.Set(key, values[0])
			}
		}
		if req.Family != FamilyV1 && embedded.Get("version") == "" {
			version := req.Version
			if version == "" {
				version = t.Versions[req.Family]
			}
			embedded.Set("version", version)
		}
	}

	u.RawQuery = embedded.Encode()
	return u, nil
}

func (t *Transport) backOff() backoff.BackOff {
	retries := t.Retry.Attempts - 1
	if retries < 0 {
		retries = 0
	}
	var bo backoff.BackOff
	if t.Retry.Factor > 1 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = t.Retry.Delay
		exp.Multiplier = t.Retry.Factor
		exp.RandomizationFactor = 0
		exp.MaxElapsedTime = 0
		bo = exp
	} else {
		bo = backoff.NewConstantBackOff(t.Retry.Delay)
	}
	return backoff.WithMaxRetries(bo, uint64(retries))
}

func (t *Transport) log(req *Request, u *url.URL, status, attempt int, err error) {
	if t.Logger == nil {
		return
	}
	// Bodies and the token are never logged.
	attrs := []any{
		"method", req.Method,
		"path", u.Path,
		"family", req.Family.String(),
		"attempt", attempt,
	}
	if err != nil {
		t.Logger.Debug("snyk api request failed", append(attrs, "error", err)...)
		return
	}
	t.Logger.Debug("snyk api request", append(attrs, "status", status)...)
}

// serverStatusError carries a 5xx response through the retry loop.
type serverStatusError struct {
	resp *Response
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("server error %d", e.resp.StatusCode)
}
