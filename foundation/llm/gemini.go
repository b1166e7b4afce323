package llm

import (
	"context"
	"fmt"

	geminiModel "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return client, nil
}

// NewGeminiChatModel creates a Gemini chat model for the given model id.
func NewGeminiChatModel(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
	client, err := NewGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	chatModel, err := geminiModel.NewChatModel(ctx, &geminiModel.Config{
		Client: client,
		Model:  modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini chat model: %w", err)
	}

	return chatModel, nil
}
