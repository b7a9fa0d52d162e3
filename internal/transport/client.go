// Package transport provides the authenticated HTTP client used to reach a
// tenant's metadata API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentstation/canonmap/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// maxErrorBodyBytes caps how much of an error response body is read back into
// error messages.
const maxErrorBodyBytes = 4096

// Client provides HTTP client functionality with authentication against one
// tenant's metadata API.
type Client struct {
	http       *http.Client
	auth       Authenticator
	baseURL    string
	credential string
	tenant     string
}

// New creates a new transport client for a tenant.
func New(tenant, baseURL, credential string, auth Authenticator) *Client {
	if auth == nil {
		auth = &BearerAuth{}
	}
	return &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       auth,
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		tenant:     tenant,
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// BaseURL returns the tenant base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.WrapAPI(c.tenant, 0, err)
	}
	return c.doJSON(req, out)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.WrapAPI(c.tenant, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

// doJSON executes the request with authentication and decodes the response.
func (c *Client) doJSON(req *http.Request, out any) error {
	if c.credential != "" {
		c.auth.Apply(req, c.credential)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &errors.APIError{
			Tenant:   c.tenant,
			Endpoint: req.URL.Path,
			Message:  err.Error(),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &errors.APIError{
			Tenant:     c.tenant,
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapParse("json", req.URL.Path, err)
	}
	return nil
}
