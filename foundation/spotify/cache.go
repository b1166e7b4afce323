package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// cachedToken mirrors the layout used by common Spotify client libraries so
// an existing cache file keeps working.
type cachedToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
}

// TokenCache persists one OAuth token as JSON on local disk.
type TokenCache struct {
	path string
	now  func() time.Time
}

// NewTokenCache returns a cache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path, now: time.Now}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string { return c.path }

// Load reads the cached token. A missing file yields an error matching
// os.ErrNotExist.
func (c *TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}

	var ct cachedToken
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("decode token cache %s: %w", c.path, err)
	}
	if ct.AccessToken == "" && ct.RefreshToken == "" {
		return nil, errors.New("token cache holds no usable token")
	}

	tok := &oauth2.Token{
		AccessToken:  ct.AccessToken,
		TokenType:    ct.TokenType,
		RefreshToken: ct.RefreshToken,
	}
	if ct.ExpiresAt > 0 {
		tok.Expiry = time.Unix(ct.ExpiresAt, 0)
	}
	if ct.Scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": ct.Scope})
	}
	return tok, nil
}

// Save writes tok atomically with owner-only permissions.
func (c *TokenCache) Save(tok *oauth2.Token) error {
	ct := cachedToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		ct.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		ct.ExpiresAt = tok.Expiry.Unix()
		if in := tok.Expiry.Sub(c.now()); in > 0 {
			ct.ExpiresIn = int64(in / time.Second)
		}
	}

	data, err := json.Marshal(ct)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".token-*")
	if err != nil {
		return fmt.Errorf("create token cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write token cache: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replace token cache: %w", err)
	}
	return nil
}
