package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the default GitHub API base URL
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 30 * time.Second

	perPage = 100
)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL for the GitHub API
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets a custom HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetryConfig configures retry behavior
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *Client) {
		c.retryConfig = config
	}
}

// Client is the GitHub API client used by nitpicker.
//
// The client provides:
// - Direct HTTP access via NewRequest/Do methods
// - Lazy-loaded go-github client via GitHubClient() for typed operations
// - Retry with exponential backoff (when configured via WithRetryConfig)
//
// Example:
//
//	client := github.NewClient(token,
//	    github.WithRetryConfig(github.DefaultRetryConfig()),
//	)
type Client struct {
	token        string
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	retryConfig  *RetryConfig
	mu           sync.Mutex
	githubClient *github.Client // Lazy-loaded go-github client
}

// NewClient creates a new GitHub API client with the given token
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Timeout = c.timeout

	return c
}

// GitHubClient returns the underlying go-github client (lazy-loaded)
func (c *Client) GitHubClient() *github.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.githubClient != nil {
		return c.githubClient
	}

	httpClient := c.httpClient
	if c.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	c.githubClient = github.NewClient(httpClient)

	if c.baseURL != DefaultBaseURL && c.baseURL != "" {
		baseURL := c.baseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		if parsedURL, err := url.Parse(baseURL); err == nil {
			c.githubClient.BaseURL = parsedURL
		}
	}
	return c.githubClient
}

// NewRequest creates a new HTTP request with proper authentication
func (c *Client) NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	return req, nil
}

// Do sends an HTTP request and decodes a JSON response into result.
// Bodyless requests are retried according to the client's retry config.
func (c *Client) Do(req *http.Request, result interface{}) (*ClientResponse, error) {
	cfg := c.retryConfig
	if req.Body != nil && req.GetBody == nil {
		cfg = nil
	}

	return retryWithBackoff(req.Context(), cfg, req.Method+" "+req.URL.Path, func() (*ClientResponse, error) {
		attempt := req
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attempt = req.Clone(req.Context())
			attempt.Body = body
		}
		return c.do(attempt, result)
	})
}

func (c *Client) do(req *http.Request, result interface{}) (*ClientResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		apiErr := parseErrorResponse(resp.StatusCode, body)
		if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
			info := &RateLimitInfo{}
			info.Limit, _ = strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
			info.Reset, _ = strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
			apiErr.RateLimit = info
		}
		return nil, apiErr
	}

	clientResp := &ClientResponse{Response: resp}
	if result != nil {
		if err := clientResp.DecodeJSON(result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return clientResp, nil
}

// setHeaders sets common headers for GitHub API requests
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
}

// ClientResponse wraps an HTTP response with additional methods
type ClientResponse struct {
	*http.Response
	closeOnce sync.Once
}

// DecodeJSON decodes the response body as JSON
func (r *ClientResponse) DecodeJSON(v interface{}) error {
	defer r.Close()
	return json.NewDecoder(r.Response.Body).Decode(v)
}

// Close closes the response body (idempotent)
func (r *ClientResponse) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.Response != nil && r.Response.Body != nil {
			err = r.Response.Body.Close()
		}
	})
	return err
}
