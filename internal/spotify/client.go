package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// ErrRemoteFailure is returned for any non-success response from the
// resource API. Playlist fetches surface it without partial results.
var ErrRemoteFailure = errors.New("spotify API request failed")

// Client is a bearer-authenticated client for the resource endpoints.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL, used in tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithLogger attaches a logger for non-fatal diagnostics.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a resource client using the given bearer token.
func NewClient(bearerToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      bearerToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUserID returns the authenticated user's Spotify ID.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var profile userProfile
	if err := c.getJSON(ctx, c.baseURL+"/me", &profile); err != nil {
		return "", fmt.Errorf("fetching user profile: %w", err)
	}
	return profile.ID, nil
}

// getJSON performs an authenticated GET against an absolute URL and
// decodes the JSON response. Pagination follows server-supplied URLs,
// so the argument is a full URL rather than a path.
func (c *Client) getJSON(ctx context.Context, rawURL string, result any) error {
	res, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(res.body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// response is a fully-read API response.
type response struct {
	status      int
	contentType string
	body        []byte
}

// get performs an authenticated GET and reads the whole body.
// Non-2xx statuses yield ErrRemoteFailure.
func (c *Client) get(ctx context.Context, rawURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d for %s", ErrRemoteFailure, resp.StatusCode, rawURL)
	}

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}
