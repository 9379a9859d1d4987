package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"Postbridge/internal/core/posts"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "Postbridge/1.0"

	endpointPosts = "posts"
	endpointUsers = "users"
)

// Client talks to the upstream REST API:
//
//	GET {base}/posts/{id} -> {id,userId,title,body}
//	GET {base}/users/{id} -> 200 when the user exists
type Client struct {
	httpClient     *http.Client
	circuitBreaker *circuitBreaker
	baseURL        string
	userAgent      string
}

// Option configures the client
type Option func(*Client)

// WithTimeout bounds every upstream request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent upstream
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new upstream client for baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: defaultTimeout},
		circuitBreaker: newCircuitBreaker(),
		baseURL:        strings.TrimRight(baseURL, "/"),
		userAgent:      defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ posts.Upstream = (*Client)(nil)

// FetchPost fetches a post by id.
// Every failure to obtain the post wraps posts.ErrUpstreamUnavailable; a 200 with
// an unusable body wraps posts.ErrMalformedPayload.
func (c *Client) FetchPost(ctx context.Context, id int64) (*posts.UpstreamPost, error) {
	resp, err := c.get(ctx, endpointPosts, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var payload postPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode post %d: %v", posts.ErrMalformedPayload, id, err)
	}
	if missing := payload.missingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: post %d has no %s", posts.ErrMalformedPayload, id, strings.Join(missing, ", "))
	}

	return &posts.UpstreamPost{
		ID:     *payload.ID,
		UserID: *payload.UserID,
		Title:  *payload.Title,
		Body:   *payload.Body,
	}, nil
}

// postPayload is the wire form of an upstream post. Absent and null fields stay nil.
type postPayload struct {
	ID     *int64  `json:"id"`
	UserID *int64  `json:"userId"`
	Title  *string `json:"title"`
	Body   *string `json:"body"`
}

func (p postPayload) missingFields() []string {
	var missing []string
	if p.ID == nil {
		missing = append(missing, "id")
	}
	if p.UserID == nil {
		missing = append(missing, "userId")
	}
	if p.Title == nil {
		missing = append(missing, "title")
	}
	if p.Body == nil {
		missing = append(missing, "body")
	}
	return missing
}

// UserExists reports whether the upstream answers 200 for the user.
// A false result carries the reason as error when it was not a plain non-200.
func (c *Client) UserExists(ctx context.Context, userID int64) (bool, error) {
	resp, err := c.get(ctx, endpointUsers, userID)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, statusError(resp)
	}
	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	return true, nil
}

// get performs GET {base}/{endpoint}/{id} guarded by the circuit breaker.
// Only transport errors and 5xx responses count as circuit failures.
func (c *Client) get(ctx context.Context, endpoint string, id int64) (*http.Response, error) {
	if ok, err := c.circuitBreaker.canAttempt(endpoint); !ok {
		return nil, fmt.Errorf("%w: %v", posts.ErrUpstreamUnavailable, err)
	}

	url := fmt.Sprintf("%s/%s/%d", c.baseURL, endpoint, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", posts.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.circuitBreaker.recordFailure(endpoint, err)
		return nil, fmt.Errorf("%w: GET %s: %v", posts.ErrUpstreamUnavailable, url, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.circuitBreaker.recordFailure(endpoint, fmt.Errorf("status %d", resp.StatusCode))
	} else {
		c.circuitBreaker.recordSuccess(endpoint)
	}
	return resp, nil
}

// statusError describes a non-200 response. Error bodies are capped at 1KB.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%w: unexpected status code %d: %s",
		posts.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
}
