package factory

import (
	"context"
	"fmt"

	"haskify-be/pkg/llm"
	"haskify-be/pkg/llm/gemini"
	"haskify-be/pkg/llm/ollama"
	"haskify-be/pkg/llm/openai"
)

// NewLLMProvider builds the chat-completion provider named by providerType.
func NewLLMProvider(ctx context.Context, providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "openrouter":
		return openai.NewProvider(baseURL, apiKey, modelName), nil
	case "gemini":
		return gemini.NewProvider(ctx, apiKey, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
