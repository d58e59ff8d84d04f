package snyk

import (
	"net/http"
	"time"

	"github.com/tphakala/go-snyk/internal/api"
	"github.com/tphakala/go-snyk/internal/auth"
)

// Default configuration values.
const defaultTimeout = 30 * time.Second

// Client is the Snyk API client.
type Client struct {
	// Orgs provides access to organization operations.
	Orgs OrganizationService

	// Projects provides access to projects across every organization the
	// token can see. For the projects of one organization use
	// Organization.Projects.
	Projects ProjectService

	transport *api.Transport
}

// NewClient creates a new Snyk client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout:       defaultTimeout,
		retryAttempts: 1,
		retryDelay:    time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.token == "" {
		return nil, ErrNoToken
	}

	creds := &auth.Credentials{Token: cfg.token}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}

	transport, err := api.NewTransport(map[api.Family]string{
		api.FamilyV1:   cfg.v1BaseURL,
		api.FamilyV3:   cfg.v3BaseURL,
		api.FamilyREST: cfg.restBaseURL,
	}, creds, httpClient)
	if err != nil {
		return nil, err
	}

	if cfg.userAgent != "" {
		transport.UserAgent = cfg.userAgent
	}
	if cfg.restVersion != "" {
		transport.Versions[api.FamilyREST] = cfg.restVersion
	}
	if cfg.v3Version != "" {
		transport.Versions[api.FamilyV3] = cfg.v3Version
	}
	transport.Retry = api.RetryPolicy{
		Attempts: cfg.retryAttempts,
		Delay:    cfg.retryDelay,
		Factor:   cfg.retryFactor,
	}
	transport.Logger = cfg.logger

	client := &Client{
		transport: transport,
	}

	// Initialize services
	client.Orgs = newOrganizationService(transport, client)
	client.Projects = newProjectService(transport, client, nil)

	return client, nil
}

// V1BaseURL returns the configured legacy API base URL.
func (c *Client) V1BaseURL() string {
	return c.transport.BaseURLs[api.FamilyV1].String()
}

// V3BaseURL returns the configured v3 API base URL.
func (c *Client) V3BaseURL() string {
	return c.transport.BaseURLs[api.FamilyV3].String()
}

// RESTBaseURL returns the configured REST API base URL.
func (c *Client) RESTBaseURL() string {
	return c.transport.BaseURLs[api.FamilyREST].String()
}
