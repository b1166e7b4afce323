// Package spotify talks to the Spotify Web API on behalf of one user.
package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"
	// MaxSavedTracksLimit is the largest page the saved-tracks endpoint serves.
	MaxSavedTracksLimit = 50
)

// Track is the projection of a saved track handed to the agent.
type Track struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// User is the subset of the profile used at startup.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type savedTracksPage struct {
	Items []struct {
		Track struct {
			Name         string            `json:"name"`
			ExternalURLs map[string]string `json:"external_urls"`
		} `json:"track"`
	} `json:"items"`
}

// Client is a read-only Spotify Web API client.
type Client struct {
	http   *resty.Client
	tokens oauth2.TokenSource
	logger *zap.Logger
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.http.SetBaseURL(baseURL) }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns a client authorizing every request with a token from ts.
// Requests are not retried.
func NewClient(ts oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json"),
		tokens: ts,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser returns the profile of the authorized user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/me", nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: profile has no user id", ErrNotAuthenticated)
	}
	return &u, nil
}

// SavedTracks returns up to limit of the user's most recently saved tracks.
// limit is clamped to [1, MaxSavedTracksLimit]. Tracks without a name or a
// usable link are skipped.
func (c *Client) SavedTracks(ctx context.Context, limit int) ([]Track, error) {
	limit = max(1, min(limit, MaxSavedTracksLimit))

	var page savedTracksPage
	query := map[string]string{"limit": strconv.Itoa(limit)}
	if err := c.get(ctx, "/me/tracks", query, &page); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(page.Items))
	for _, item := range page.Items {
		if len(tracks) == limit {
			break
		}
		name := item.Track.Name
		link := item.Track.ExternalURLs["spotify"]
		if name == "" || !isWebURL(link) {
			c.logger.Debug("skipping saved track", zap.String("name", name), zap.String("link", link))
			continue
		}
		tracks = append(tracks, Track{Name: name, Link: link})
	}
	return tracks, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	tok, err := c.tokens.Token()
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok.AccessToken).
		SetQueryParams(query).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("spotify GET %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("spotify GET %s: status %d: %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

func isWebURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
