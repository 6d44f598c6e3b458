package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider embeds text through the Gemini API.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int32
	maxChars  int
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, dimension, maxChars int) (*GeminiProvider, error) {
	if model == "" {
		model = "gemini-embedding-001"
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		dimension: int32(dimension),
		maxChars:  maxChars,
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	config := &genai.EmbedContentConfig{TaskType: taskType}
	if p.dimension > 0 {
		dim := p.dimension
		config.OutputDimensionality = &dim
	}

	result, err := p.client.Models.EmbedContent(ctx, p.model, genai.Text(Truncate(text, p.maxChars)), config)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embedding returned from gemini")
	}

	// Truncated output dimensionality is not unit length
	return normalizeVector(result.Embeddings[0].Values), nil
}
