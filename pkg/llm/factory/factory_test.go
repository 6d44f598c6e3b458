package factory

import (
	"context"
	"testing"

	"haskify-be/pkg/llm/ollama"
	"haskify-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(context.Background(), "ollama", "llama3", "", "")
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider(context.Background(), "openrouter", "google/gemma-3-27b-it:free", "", "k")
	require.NoError(t, err)
	oa, ok := p.(*openai.Provider)
	require.True(t, ok)
	assert.Equal(t, "https://openrouter.ai/api/v1", oa.BaseURL)

	_, err = NewLLMProvider(context.Background(), "unknown", "", "", "")
	assert.Error(t, err)
}
