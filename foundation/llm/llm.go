// Package llm builds the chat model the agent talks to.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/olusolaa/sailbuddy/foundation/config"
)

// NewChatModel creates the chat model selected by the settings, reading its
// API key from the credentials file.
func NewChatModel(ctx context.Context, s config.LLMSettings, creds config.Credentials) (model.BaseChatModel, error) {
	switch s.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIChatModel(ctx, creds.Get(config.KeyOpenAIAPIKey), s.Model, s.BaseURL, s.Timeout)
	case config.ProviderGemini:
		return NewGeminiChatModel(ctx, creds.Get(config.KeyGeminiAPIKey), s.Model)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", s.Provider)
	}
}
