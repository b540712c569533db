// Package fetch retrieves menu pages and fans requests out over locations.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/lepinkainen/mensa/internal/location"
)

const (
	// DateParam is the query parameter carrying the requested day.
	DateParam = "tx_pamensa_mensa[date]"
	// DateLayout formats the requested day.
	DateLayout = "2006-01-02"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the user agent string for HTTP requests.
	DefaultUserAgent = "mensa/1.0 (+https://github.com/lepinkainen/mensa)"
)

// Error represents an error during page fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client posts to the menu site, one request per page.
type Client struct {
	httpClient HTTPDoer
	userAgent  string
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		if d > 0 {
			client.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a page client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// PageURL returns the URL requested for loc on day. A zero day leaves the
// date out so the site serves today.
func PageURL(loc location.Location, day time.Time) (string, error) {
	u, err := url.Parse(loc.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &Error{URL: loc.URL, Message: "invalid URL", Cause: err}
	}
	if !day.IsZero() {
		q := u.Query()
		q.Set(DateParam, day.Format(DateLayout))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Fetch posts to the location's page and returns the body decoded to UTF-8.
// The caller closes the returned reader.
func (c *Client) Fetch(ctx context.Context, loc location.Location, day time.Time) (io.ReadCloser, error) {
	pageURL, err := PageURL(loc, day)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pageURL, nil)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "HTTP request failed", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		msg := fmt.Sprintf("HTTP status %d", resp.StatusCode)
		if text := strings.TrimSpace(string(body)); text != "" {
			msg += ": " + text
		}
		return nil, &Error{URL: pageURL, Message: msg}
	}

	decoded, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		_ = resp.Body.Close()
		return nil, &Error{URL: pageURL, Message: "failed to decode response body", Cause: err}
	}

	return readCloser{Reader: decoded, Closer: resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
