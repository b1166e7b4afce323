package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	// DefaultSettingsFile is read when present; its absence is not an error.
	DefaultSettingsFile = "sailbuddy.yaml"
	envPrefix           = "SAILBUDDY"

	defaultOpenAIModel = "gpt-4o"
	defaultGeminiModel = "gemini-2.5-flash"
)

// Settings holds the application tunables.
type Settings struct {
	Server      ServerSettings      `mapstructure:"server"`
	Credentials CredentialsSettings `mapstructure:"credentials"`
	LLM         LLMSettings         `mapstructure:"llm"`
	Agent       AgentSettings       `mapstructure:"agent"`
	Spotify     SpotifySettings     `mapstructure:"spotify"`
	YouTube     YouTubeSettings     `mapstructure:"youtube"`
	Log         LogSettings         `mapstructure:"log"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr"`
}

type CredentialsSettings struct {
	File string `mapstructure:"file"`
}

type LLMSettings struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AgentSettings struct {
	MaxSteps int `mapstructure:"max_steps"`
	// HistoryLimit caps the conversation memory in messages; 0 disables the cap.
	HistoryLimit int `mapstructure:"history_limit"`
}

type SpotifySettings struct {
	TokenCache       string `mapstructure:"token_cache"`
	SavedTracksLimit int    `mapstructure:"saved_tracks_limit"`
}

type YouTubeSettings struct {
	Results int `mapstructure:"results"`
}

type LogSettings struct {
	Development bool `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8501")
	v.SetDefault("credentials.file", ".env")
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("agent.max_steps", 15)
	v.SetDefault("agent.history_limit", 40)
	v.SetDefault("spotify.token_cache", ".cache")
	v.SetDefault("spotify.saved_tracks_limit", 30)
	v.SetDefault("youtube.results", 2)
	v.SetDefault("log.development", true)
}

// LoadSettings builds the settings from defaults, an optional YAML file and
// SAILBUDDY_* environment variables, in increasing order of precedence.
// An empty path means DefaultSettingsFile, which may be absent.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultSettingsFile
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) normalize() error {
	s.LLM.Provider = strings.ToLower(strings.TrimSpace(s.LLM.Provider))
	switch s.LLM.Provider {
	case ProviderOpenAI:
		if s.LLM.Model == "" {
			s.LLM.Model = defaultOpenAIModel
		}
	case ProviderGemini:
		if s.LLM.Model == "" {
			s.LLM.Model = defaultGeminiModel
		}
	default:
		return fmt.Errorf("unsupported llm.provider %q", s.LLM.Provider)
	}
	if s.Agent.MaxSteps < 1 {
		return fmt.Errorf("agent.max_steps must be positive, got %d", s.Agent.MaxSteps)
	}
	if s.Agent.HistoryLimit < 0 {
		return fmt.Errorf("agent.history_limit must not be negative, got %d", s.Agent.HistoryLimit)
	}
	if s.Spotify.SavedTracksLimit < 1 {
		return fmt.Errorf("spotify.saved_tracks_limit must be positive, got %d", s.Spotify.SavedTracksLimit)
	}
	if s.YouTube.Results < 1 {
		s.YouTube.Results = 2
	}
	return nil
}
