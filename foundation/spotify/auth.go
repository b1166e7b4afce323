package spotify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	AuthURL  = "https://accounts.spotify.com/authorize"
	TokenURL = "https://accounts.spotify.com/api/token"
)

// DefaultScopes are requested when Config.Scopes is empty.
var DefaultScopes = []string{
	"user-library-read",
	"user-top-read",
	"playlist-modify-private",
	"playlist-modify-public",
}

var (
	// ErrNotAuthenticated is returned when no valid access token can be obtained.
	ErrNotAuthenticated = errors.New("spotify: not authenticated")
	// ErrStateMismatch is returned when the authorization redirect carries a
	// state other than the one that was issued.
	ErrStateMismatch = errors.New("spotify: oauth state mismatch")
)

// Config describes the registered Spotify application.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	CachePath    string
}

// Authenticator obtains and maintains the user's OAuth token.
type Authenticator struct {
	oauth    *oauth2.Config
	cache    *TokenCache
	logger   *zap.Logger
	in       io.Reader
	out      io.Writer
	newState func() string
}

type AuthOption func(*Authenticator)

// WithEndpoint overrides the Spotify accounts endpoints.
func WithEndpoint(ep oauth2.Endpoint) AuthOption {
	return func(a *Authenticator) { a.oauth.Endpoint = ep }
}

// WithPrompt sets where the authorization URL is printed and where a pasted
// redirect URL is read from. Defaults are stdout and stdin.
func WithPrompt(in io.Reader, out io.Writer) AuthOption {
	return func(a *Authenticator) {
		a.in = in
		a.out = out
	}
}

func WithAuthLogger(logger *zap.Logger) AuthOption {
	return func(a *Authenticator) { a.logger = logger }
}

// NewAuthenticator validates cfg and prepares the OAuth configuration.
func NewAuthenticator(cfg Config, opts ...AuthOption) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client id and secret are required")
	}
	if _, err := url.ParseRequestURI(cfg.RedirectURI); err != nil {
		return nil, fmt.Errorf("invalid spotify redirect uri %q: %w", cfg.RedirectURI, err)
	}
	if cfg.CachePath == "" {
		cfg.CachePath = ".cache"
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	a := &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint:     oauth2.Endpoint{AuthURL: AuthURL, TokenURL: TokenURL},
		},
		cache:    NewTokenCache(cfg.CachePath),
		logger:   zap.NewNop(),
		in:       os.Stdin,
		out:      os.Stdout,
		newState: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// CachePath returns the token cache file location.
func (a *Authenticator) CachePath() string { return a.cache.Path() }

// AuthCodeURL returns the URL the user must visit to grant access.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

// Authenticate returns a token source for the user. A cached token is reused
// without interaction; otherwise the authorization-code flow runs once and
// its result is cached. Tokens refreshed later are written back to the cache.
func (a *Authenticator) Authenticate(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := a.cache.Load()
	switch {
	case err == nil:
		a.logger.Info("using cached spotify token", zap.String("cache", a.cache.Path()))
	case errors.Is(err, os.ErrNotExist):
		tok = nil
	default:
		a.logger.Warn("ignoring unreadable spotify token cache", zap.String("cache", a.cache.Path()), zap.Error(err))
		tok = nil
	}

	if tok == nil {
		tok, err = a.authorize(ctx)
		if err != nil {
			return nil, err
		}
		if err := a.cache.Save(tok); err != nil {
			return nil, err
		}
	}

	return a.TokenSource(tok), nil
}

// TokenSource wraps tok so that refreshes happen transparently and are
// persisted. Refreshes use a background context; the source outlives any
// single request.
func (a *Authenticator) TokenSource(tok *oauth2.Token) oauth2.TokenSource {
	return &cachingTokenSource{
		base:   a.oauth.TokenSource(context.Background(), tok),
		cache:  a.cache,
		logger: a.logger,
		last:   tok.AccessToken,
	}
}

// Exchange trades an authorization code for a token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func (a *Authenticator) authorize(ctx context.Context) (*oauth2.Token, error) {
	state := a.newState()
	fmt.Fprintf(a.out, "\nOpen this URL in your browser to connect Spotify:\n\n%s\n\n", a.AuthCodeURL(state))

	var (
		code string
		err  error
	)
	if addr, path, ok := loopbackAddr(a.oauth.RedirectURL); ok {
		a.logger.Info("waiting for spotify authorization callback", zap.String("addr", addr), zap.String("path", path))
		code, err = awaitCallback(ctx, addr, path, state)
	} else {
		code, err = a.readPastedRedirect(state)
	}
	if err != nil {
		return nil, err
	}

	return a.Exchange(ctx, code)
}

func (a *Authenticator) readPastedRedirect(state string) (string, error) {
	fmt.Fprint(a.out, "Paste the URL you were redirected to: ")

	scanner := bufio.NewScanner(a.in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read redirect url: %w", err)
		}
		return "", fmt.Errorf("%w: no redirect url entered", ErrNotAuthenticated)
	}

	u, err := url.Parse(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	q := u.Query()
	return parseCallback(state, q.Get("state"), q.Get("code"), q.Get("error"))
}

// parseCallback validates the query parameters Spotify appends to the
// redirect URI and returns the authorization code.
func parseCallback(wantState, state, code, errParam string) (string, error) {
	if errParam != "" {
		return "", fmt.Errorf("%w: authorization denied: %s", ErrNotAuthenticated, errParam)
	}
	if state != wantState {
		return "", ErrStateMismatch
	}
	if code == "" {
		return "", fmt.Errorf("%w: redirect carries no code", ErrNotAuthenticated)
	}
	return code, nil
}

// loopbackAddr reports the listen address and path for redirect URIs that
// point at this machine with an explicit port.
func loopbackAddr(redirect string) (addr, path string, ok bool) {
	u, err := url.Parse(redirect)
	if err != nil || u.Port() == "" {
		return "", "", false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
	default:
		return "", "", false
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return net.JoinHostPort(u.Hostname(), u.Port()), path, true
}

type cachingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	cache  *TokenCache
	logger *zap.Logger
	last   string
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if tok.AccessToken != s.last {
		if err := s.cache.Save(tok); err != nil {
			s.logger.Warn("failed to persist refreshed spotify token", zap.Error(err))
		} else {
			s.logger.Debug("persisted refreshed spotify token")
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
