// Package config loads the credentials file and the application settings.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Keys read from the credentials file.
const (
	KeySpotifyClientID     = "SPOTIFY_CLIENT_ID"
	KeySpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	KeySpotifyRedirectURI  = "SPOTIFY_REDIRECT_URI"
	KeyOpenAIAPIKey        = "OPENAI_API_KEY"
	KeyGeminiAPIKey        = "GEMINI_API_KEY"
)

// ErrMissingKey is returned when a required credential is absent or empty.
var ErrMissingKey = errors.New("missing required credential")

// Credentials is the flat key/value content of the credentials file.
// It is read once and never written back.
type Credentials map[string]string

// LoadCredentials reads a dotenv-formatted file. Values are returned exactly
// as they appear in the file; the process environment is not consulted.
func LoadCredentials(path string) (Credentials, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	return Credentials(values), nil
}

// Get returns the value for key, or "" when it is not set.
func (c Credentials) Get(key string) string {
	return c[key]
}

// Keys returns the credential names in sorted order.
func (c Credentials) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Require checks that every key is present with a non-empty value. The
// returned error wraps ErrMissingKey and names all missing keys.
func (c Credentials) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(c[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}
	return nil
}

// RequiredKeys lists the credentials needed to start with the given LLM
// provider.
func RequiredKeys(provider string) []string {
	keys := []string{KeySpotifyClientID, KeySpotifyClientSecret, KeySpotifyRedirectURI}
	if provider == ProviderGemini {
		return append(keys, KeyGeminiAPIKey)
	}
	return append(keys, KeyOpenAIAPIKey)
}
