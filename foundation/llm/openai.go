package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// NewOpenAIChatModel creates an OpenAI (or OpenAI-compatible, when baseURL
// is set) chat model.
func NewOpenAIChatModel(ctx context.Context, apiKey, modelName, baseURL string, timeout time.Duration) (model.BaseChatModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   modelName,
		BaseURL: baseURL,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create openai chat model: %w", err)
	}

	return chatModel, nil
}
