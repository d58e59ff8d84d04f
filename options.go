package snyk

import (
	"log/slog"
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	token         string
	v1BaseURL     string
	v3BaseURL     string
	restBaseURL   string
	v3Version     string
	restVersion   string
	httpClient    *http.Client
	timeout       time.Duration
	userAgent     string
	retryAttempts int
	retryDelay    time.Duration
	retryFactor   float64
	logger        *slog.Logger
}

// WithToken sets the Snyk API token.
func WithToken(token string) ClientOption {
	return func(c *clientConfig) {
		c.token = token
	}
}

// WithV1BaseURL overrides the legacy v1 API base URL.
func WithV1BaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.v1BaseURL = url
	}
}

// WithV3BaseURL overrides the v3 API base URL.
func WithV3BaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.v3BaseURL = url
	}
}

// WithRESTBaseURL overrides the REST API base URL.
func WithRESTBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.restBaseURL = url
	}
}

// WithRESTVersion overrides the date-stamped version parameter sent with
// REST requests.
func WithRESTVersion(version string) ClientOption {
	return func(c *clientConfig) {
		c.restVersion = version
	}
}

// WithV3Version overrides the version parameter sent with v3 requests.
func WithV3Version(version string) ClientOption {
	return func(c *clientConfig) {
		c.v3Version = version
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the default request timeout.
// Note: This option is ignored when WithHTTPClient is used;
// set the timeout directly on the provided client instead.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithRetry configures the server-error retry policy. attempts is the total
// number of tries (1 disables retries), delay the pause before the second
// try, and factor the multiplier applied to the delay between consecutive
// tries (values at or below 1 keep the delay constant). Only 5xx responses
// and transport-level failures are retried.
func WithRetry(attempts int, delay time.Duration, factor float64) ClientOption {
	return func(c *clientConfig) {
		c.retryAttempts = attempts
		c.retryDelay = delay
		c.retryFactor = factor
	}
}

// WithLogger sets a logger for request-level debug output. Request and
// response bodies and the API token are never logged.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// RequestOption configures individual API requests.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers http.Header
}

func newRequestConfig() *requestConfig {
	return &requestConfig{
		headers: make(http.Header),
	}
}

func (r *requestConfig) apply(opts ...RequestOption) {
	for _, opt := range opts {
		opt(r)
	}
}

// WithHeader adds a custom header to a request.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers.Set(key, value)
	}
}

// WithHeaders adds multiple custom headers to a request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *requestConfig) {
		for k, v := range headers {
			r.headers.Set(k, v)
		}
	}
}
