package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCredentials_ExposesKeysUnchanged(t *testing.T) {
	path := writeFile(t, ".env", `SPOTIFY_CLIENT_ID=abc123
SPOTIFY_CLIENT_SECRET="s3cr=t"
SPOTIFY_REDIRECT_URI=http://127.0.0.1:8888/callback
OPENAI_API_KEY=sk-test
`)

	creds, err := LoadCredentials(path)
	require.NoError(t, err)

	assert.Equal(t, Credentials{
		"SPOTIFY_CLIENT_ID":     "abc123",
		"SPOTIFY_CLIENT_SECRET": "s3cr=t",
		"SPOTIFY_REDIRECT_URI":  "http://127.0.0.1:8888/callback",
		"OPENAI_API_KEY":        "sk-test",
	}, creds)
	assert.Equal(t, []string{
		"OPENAI_API_KEY", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REDIRECT_URI",
	}, creds.Keys())
	assert.NoError(t, creds.Require(RequiredKeys(ProviderOpenAI)...))
}

func TestLoadCredentials_IgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	path := writeFile(t, ".env", "SPOTIFY_CLIENT_ID=abc\n")

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Empty(t, creds.Get(KeyOpenAIAPIKey))
	assert.Len(t, creds, 1)
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestRequire_NamesEveryMissingKey(t *testing.T) {
	creds := Credentials{"SPOTIFY_CLIENT_ID": "x", "SPOTIFY_CLIENT_SECRET": "  "}

	err := creds.Require(RequiredKeys(ProviderOpenAI)...)
	require.ErrorIs(t, err, ErrMissingKey)
	assert.Contains(t, err.Error(), "SPOTIFY_CLIENT_SECRET, SPOTIFY_REDIRECT_URI, OPENAI_API_KEY")
}

func TestRequiredKeys_Gemini(t *testing.T) {
	keys := RequiredKeys(ProviderGemini)
	assert.Contains(t, keys, KeyGeminiAPIKey)
	assert.NotContains(t, keys, KeyOpenAIAPIKey)
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8501", s.Server.Addr)
	assert.Equal(t, ".env", s.Credentials.File)
	assert.Equal(t, ProviderOpenAI, s.LLM.Provider)
	assert.Equal(t, "gpt-4o", s.LLM.Model)
	assert.Equal(t, 60*time.Second, s.LLM.Timeout)
	assert.Equal(t, 15, s.Agent.MaxSteps)
	assert.Equal(t, 40, s.Agent.HistoryLimit)
	assert.Equal(t, ".cache", s.Spotify.TokenCache)
	assert.Equal(t, 30, s.Spotify.SavedTracksLimit)
	assert.Equal(t, 2, s.YouTube.Results)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := writeFile(t, "sailbuddy.yaml", `
llm:
  provider: gemini
agent:
  max_steps: 5
`)
	t.Setenv("SAILBUDDY_AGENT_HISTORY_LIMIT", "0")
	t.Setenv("SAILBUDDY_LLM_TIMEOUT", "5s")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, s.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", s.LLM.Model)
	assert.Equal(t, 5, s.Agent.MaxSteps)
	assert.Equal(t, 0, s.Agent.HistoryLimit)
	assert.Equal(t, 5*time.Second, s.LLM.Timeout)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown provider", yaml: "llm:\n  provider: llama\n"},
		{name: "zero steps", yaml: "agent:\n  max_steps: 0\n"},
		{name: "negative history", yaml: "agent:\n  history_limit: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeFile(t, "sailbuddy.yaml", tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadSettings_ExplicitMissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
