// Package prismic is a small client for the Prismic document search API.
// It covers the subset a read-only site needs: refs, predicate queries,
// next-page cursors and preview refs.
package prismic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	maxResponseSize = 10 << 20 // 10MB
	defaultRefTTL   = 5 * time.Second
)

var (
	// ErrNotFound is returned when the API answers 404 or a lookup matches nothing.
	ErrNotFound = errors.New("prismic: not found")
	// ErrForeignCursor is returned by Next when the cursor does not point at
	// the configured repository.
	ErrForeignCursor = errors.New("prismic: cursor does not belong to this repository")
	// ErrNoMasterRef is returned when the API root lists no master ref.
	ErrNoMasterRef = errors.New("prismic: repository has no master ref")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("prismic: status %d", e.StatusCode)
	}
	return fmt.Sprintf("prismic: status %d: %s", e.StatusCode, e.Message)
}

// Is reports 404 answers as ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to one repository endpoint, e.g. https://repo.cdn.prismic.io/api/v2.
type Client struct {
	endpoint    *url.URL
	accessToken string
	httpClient  *http.Client
	refTTL      time.Duration
	now         func() time.Time

	mu           sync.Mutex
	master       string
	masterExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAccessToken sets the token sent with every request.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = token
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRefTTL sets how long a resolved master ref is reused. Zero resolves
// it on every query.
func WithRefTTL(d time.Duration) Option {
	return func(c *Client) {
		c.refTTL = d
	}
}

// New creates a Client for endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute URL", endpoint)
	}
	c := &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		refTTL:     defaultRefTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the repository endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// API fetches the repository description.
func (c *Client) API(ctx context.Context) (*API, error) {
	u := *c.endpoint
	var api API
	if err := c.get(ctx, &u, &api); err != nil {
		return nil, err
	}
	return &api, nil
}

// Refs lists the content versions of the repository.
func (c *Client) Refs(ctx context.Context) ([]Ref, error) {
	api, err := c.API(ctx)
	if err != nil {
		return nil, err
	}
	return api.Refs, nil
}

// MasterRef returns the ref of the currently published content. The answer
// is reused for the client's ref TTL.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.master != "" && c.now().Before(c.masterExpiry) {
		ref := c.master
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	api, err := c.API(ctx)
	if err != nil {
		return "", err
	}
	master, ok := api.Master()
	if !ok {
		return "", ErrNoMasterRef
	}
	if c.refTTL > 0 {
		c.mu.Lock()
		c.master = master.Ref
		c.masterExpiry = c.now().Add(c.refTTL)
		c.mu.Unlock()
	}
	return master.Ref, nil
}

// Query runs a document search. An empty q.Ref resolves the master ref first.
func (c *Client) Query(ctx context.Context, q Query) (*Response, error) {
	if q.Ref == "" {
		ref, err := c.MasterRef(ctx)
		if err != nil {
			return nil, err
		}
		q.Ref = ref
	}
	u := c.searchURL()
	u.RawQuery = q.Values().Encode()
	return c.search(ctx, u)
}

// Next follows a next_page cursor returned by a previous search.
func (c *Client) Next(ctx context.Context, cursor string) (*Response, error) {
	u, err := c.checkCursor(cursor)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, u)
}

// search runs a search request. The API echoes the request query into its
// page links, so the access token is removed from them before they leave
// the client.
func (c *Client) search(ctx context.Context, u *url.URL) (*Response, error) {
	var resp Response
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	resp.NextPage = withoutToken(resp.NextPage)
	resp.PrevPage = withoutToken(resp.PrevPage)
	return &resp, nil
}

func withoutToken(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	q := u.Query()
	if !q.Has("access_token") {
		return link
	}
	q.Del("access_token")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) searchURL() *url.URL {
	u := *c.endpoint
	u.Path = strings.TrimSuffix(u.Path, "/") + "/documents/search"
	return &u
}

// checkCursor accepts only search URLs on the configured scheme and host.
func (c *Client) checkCursor(cursor string) (*url.URL, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForeignCursor, err)
	}
	search := c.searchURL()
	if !strings.EqualFold(u.Scheme, search.Scheme) || !strings.EqualFold(u.Host, search.Host) || u.Path != search.Path {
		return nil, ErrForeignCursor
	}
	if u.Query().Get("ref") == "" {
		return nil, fmt.Errorf("%w: missing ref", ErrForeignCursor)
	}
	return u, nil
}

func (c *Client) get(ctx context.Context, u *url.URL, v any) error {
	if c.accessToken != "" {
		q := u.Query()
		q.Set("access_token", c.accessToken)
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("prismic: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prismic: request %s: %w", u.Path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("prismic: read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{StatusCode: res.StatusCode, Message: errorMessage(body)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("prismic: decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
