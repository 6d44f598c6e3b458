package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"haskify-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestProvider(t *testing.T, body string, check func(ollamaChatRequest)) *OllamaProvider {
	p := NewOllamaProvider("http://ollama", "llama3")
	p.Client = &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/chat", req.URL.Path)
		var payload ollamaChatRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		if check != nil {
			check(payload)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	})}
	return p
}

func TestChat(t *testing.T) {
	p := newTestProvider(t, `{"model":"llama3","message":{"role":"assistant","content":"hi there"},"done":true}`,
		func(req ollamaChatRequest) {
			assert.False(t, req.Stream)
			assert.Equal(t, 0.3, req.Options.Temperature)
			assert.Equal(t, "assistant", req.Messages[1].Role)
		})

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: "model", Content: "earlier reply"},
	}, llm.WithTemperature(0.3))

	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestStream(t *testing.T) {
	ndjson := strings.Join([]string{
		`{"message":{"role":"assistant","content":"Use "},"done":false}`,
		`{"message":{"role":"assistant","content":"a loop"},"done":false}`,
		`{"message":{"role":"assistant","content":""},"done":true}`,
	}, "\n")
	p := newTestProvider(t, ndjson, func(req ollamaChatRequest) {
		assert.True(t, req.Stream)
	})

	var parts []string
	for fragment, err := range p.Stream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "q"}}) {
		require.NoError(t, err)
		parts = append(parts, fragment)
	}
	assert.Equal(t, []string{"Use ", "a loop"}, parts)
}

func TestStreamEarlyBreak(t *testing.T) {
	ndjson := `{"message":{"content":"one"}}` + "\n" + `{"message":{"content":"two"}}` + "\n"
	p := newTestProvider(t, ndjson, nil)

	var parts []string
	for fragment, err := range p.Stream(context.Background(), nil) {
		require.NoError(t, err)
		parts = append(parts, fragment)
		break
	}
	assert.Equal(t, []string{"one"}, parts)
}

func TestStreamErrorChunk(t *testing.T) {
	p := newTestProvider(t, `{"error":"model not found"}`, nil)

	_, err := llm.Collect(p.Stream(context.Background(), nil))
	assert.ErrorContains(t, err, "model not found")
}
