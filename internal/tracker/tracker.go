package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hunterjsb/octanecore/internal/accounts"
	"golang.org/x/time/rate"
)

var (
	// ErrProviderUnavailable means the tracker did not answer with a success status
	ErrProviderUnavailable = errors.New("stats provider unavailable")
	// ErrMalformedResponse means the tracker answered but the expected stats were missing
	ErrMalformedResponse = errors.New("malformed stats response")
)

// Client fetches Rocket League stats from the Tracker Network API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
	cache      *Cache
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every lookup. The http.Client is copied so a shared
// client passed to WithHTTPClient keeps its own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithRateLimit throttles outbound requests to perSecond with the given burst.
// perSecond <= 0 disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records lookup outcomes
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithCache serves repeated lookups from cache until they expire
func WithCache(cache *Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient creates a tracker client authenticated with apiKey
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    TRACKER_BASE_URL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// buildProfileURL constructs the profile URL for a platform/username pair
func (c *Client) buildProfileURL(platform accounts.Platform, username string) string {
	return fmt.Sprintf("%s/rocket-league/standard/profile/%s/%s", c.baseURL, platform, url.PathEscape(username))
}

// Delay returns the least time n lookups spend waiting on the rate limit,
// starting from a full burst. It is zero when throttling is off.
func (c *Client) Delay(n int) time.Duration {
	if c.limiter == nil {
		return 0
	}
	extra := n - c.limiter.Burst()
	if extra <= 0 {
		return 0
	}
	return time.Duration(float64(extra) / float64(c.limiter.Limit()) * float64(time.Second))
}

// Fetch looks up the current stats for username on platform. It makes exactly
// one request and never retries.
func (c *Client) Fetch(ctx context.Context, platform accounts.Platform, username string) (*Snapshot, error) {
	if snap, ok := c.cache.Get(platform, username); ok {
		c.metrics.observeLookup(outcomeCached, 0)
		return snap, nil
	}

	start := time.Now()
	snap, err := c.fetch(ctx, platform, username)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		c.metrics.observeLookup(outcomeOK, elapsed)
		c.cache.Set(platform, username, snap)
	case errors.Is(err, ErrMalformedResponse):
		c.metrics.observeLookup(outcomeMalformed, elapsed)
		slog.Warn("Malformed tracker response", "platform", platform, "username", username, "error", err)
	default:
		c.metrics.observeLookup(outcomeUnavailable, elapsed)
		slog.Debug("Tracker lookup failed", "platform", platform, "username", username, "error", err)
	}
	return snap, err
}

func (c *Client) fetch(ctx context.Context, platform accounts.Platform, username string) (*Snapshot, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}

	var resp ProfileResponse
	if err := c.makeAPIRequest(ctx, c.buildProfileURL(platform, username), &resp); err != nil {
		return nil, err
	}

	snap, err := resp.snapshot()
	if err != nil {
		return nil, err
	}
	snap.Platform = platform
	if snap.Username == "" {
		snap.Username = username
	}
	return snap, nil
}

// makeAPIRequest handles the HTTP boilerplate for a tracker GET request
func (c *Client) makeAPIRequest(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set(API_KEY_HEADER, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: API request failed with status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// snapshot extracts the stats the bot needs from the first segment
func (r *ProfileResponse) snapshot() (*Snapshot, error) {
	if r.Data == nil || len(r.Data.Segments) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrMalformedResponse)
	}
	stats := r.Data.Segments[0].Stats

	switch {
	case stats.Rating == nil || stats.Rating.DisplayValue == nil:
		return nil, fmt.Errorf("%w: missing rating.displayValue", ErrMalformedResponse)
	case stats.Rating.Value == nil:
		return nil, fmt.Errorf("%w: missing rating.value", ErrMalformedResponse)
	case stats.Wins == nil || stats.Wins.Value == nil:
		return nil, fmt.Errorf("%w: missing wins.value", ErrMalformedResponse)
	case stats.Goals == nil || stats.Goals.Value == nil:
		return nil, fmt.Errorf("%w: missing goals.value", ErrMalformedResponse)
	}

	return &Snapshot{
		Username:  r.Data.PlatformInfo.PlatformUserHandle,
		Rank:      *stats.Rating.DisplayValue,
		MMR:       *stats.Rating.Value,
		Wins:      int(*stats.Wins.Value),
		Goals:     int(*stats.Goals.Value),
		AvatarURL: r.Data.PlatformInfo.AvatarURL,
	}, nil
}
