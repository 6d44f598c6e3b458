package openai

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

func newTestProvider(t *testing.T, status int, body string, check func(*http.Request, chatRequest)) *Provider {
	p := NewProvider("http://upstream/api/v1/", "key", "tutor-model")
	p.Client = &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/v1/chat/completions", req.URL.Path)
		assert.Equal(t, "Bearer key", req.Header.Get("Authorization"))
		var payload chatRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		if check != nil {
			check(req, payload)
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	})}
	return p
}

func TestChat(t *testing.T) {
	p := newTestProvider(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`,
		func(_ *http.Request, req chatRequest) {
			assert.False(t, req.Stream)
			assert.Equal(t, "override", req.Model)
			assert.Equal(t, 0.9, req.Temperature)
		})

	out, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "quiz me"}},
		llm.WithModel("override"), llm.WithTemperature(0.9))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestChatErrorStatus(t *testing.T) {
	p := newTestProvider(t, http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, nil)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	assert.ErrorContains(t, err, "429")
}

func TestStream(t *testing.T) {
	sse := strings.Join([]string{
		": OPENROUTER PROCESSING",
		"",
		`data: {"choices":[{"delta":{"content":"hel"}}]}`,
		"",
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		"",
		"data: [DONE]",
		"",
		`data: {"choices":[{"delta":{"content":"ignored"}}]}`,
		"",
	}, "\n")
	p := newTestProvider(t, http.StatusOK, sse, func(req *http.Request, payload chatRequest) {
		assert.True(t, payload.Stream)
		assert.Contains(t, req.Header.Get("Accept"), "text/event-stream")
	})

	out, err := llm.Collect(p.Stream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}))
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestStreamUpstreamError(t *testing.T) {
	sse := `data: {"choices":[{"delta":{"content":"par"}}]}` + "\n\n" + `data: {"error":{"message":"overloaded"}}` + "\n\n"
	p := newTestProvider(t, http.StatusOK, sse, nil)

	out, err := llm.Collect(p.Stream(context.Background(), nil))
	assert.ErrorContains(t, err, "overloaded")
	assert.Equal(t, "par", out)
}

func TestStreamEarlyBreak(t *testing.T) {
	sse := `data: {"choices":[{"delta":{"content":"a"}}]}` + "\n\n" + `data: {"choices":[{"delta":{"content":"b"}}]}` + "\n\n"
	p := newTestProvider(t, http.StatusOK, sse, nil)

	var got []string
	for fragment, err := range p.Stream(context.Background(), nil) {
		require.NoError(t, err)
		got = append(got, fragment)
		break
	}
	assert.Equal(t, []string{"a"}, got)
}
