// Package spotify loads playlists and audio features from the Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/ports"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/retry"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultConcurrency bounds parallel playlist fetches.
	DefaultConcurrency = 4
)

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      retry.Policy
	logger     *zap.Logger
	workers    int

	mu       sync.Mutex
	trackIDs []string
}

// compile-time interface assertion
var _ ports.SourceLoader = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithRetry sets the policy used for 429 and 5xx responses.
func WithRetry(p retry.Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithConcurrency sets how many playlists are fetched at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs a new Spotify client.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     zap.NewNop(),
		workers:    DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("spotify")
	return c
}

// NewHTTPClient returns an HTTP client that authenticates with the client
// credentials flow. The token is fetched lazily and refreshed on expiry.
func NewHTTPClient(ctx context.Context, clientID, clientSecret, tokenURL string) *http.Client {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return cfg.Client(ctx)
}

func (c *Client) rememberTracks(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackIDs = append(c.trackIDs, ids...)
}

func (c *Client) loadedTracks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.trackIDs...)
}

func splitRef(ref string) []string {
	var out []string
	for _, id := range strings.Split(ref, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
