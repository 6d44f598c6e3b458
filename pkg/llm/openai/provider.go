package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"haskify-be/pkg/llm"
)

// Provider talks to an OpenAI compatible chat completions API such as
// OpenRouter.
type Provider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(baseURL, apiKey, modelName string) *Provider {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &Provider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error any `json:"error,omitempty"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content,omitempty"`
		} `json:"delta,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
	Error any `json:"error,omitempty"`
}

func (p *Provider) buildRequest(ctx context.Context, history []llm.Message, stream bool, opts ...llm.Option) (*http.Request, error) {
	options := llm.ApplyOptions(opts...)

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	msgs := make([]chatMessage, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, chatMessage{Role: role, Content: m.Content})
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(chatRequest{
		Model:       model,
		Messages:    msgs,
		Stream:      stream,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}); err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	return req, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	req, err := p.buildRequest(ctx, history, false, opts...)
	if err != nil {
		return "", err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Error != nil {
		b, _ := json.Marshal(out.Error)
		return "", fmt.Errorf("chat completion error: %s", string(b))
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		req, err := p.buildRequest(ctx, history, true, opts...)
		if err != nil {
			yield("", err)
			return
		}

		resp, err := p.Client.Do(req)
		if err != nil {
			yield("", fmt.Errorf("chat completion request failed: %w", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			yield("", fmt.Errorf("chat completion error: status %d, body: %s", resp.StatusCode, string(raw)))
			return
		}

		stopped := false
		err = readSSE(resp.Body, func(data string) (bool, error) {
			data = strings.TrimSpace(data)
			if data == "" {
				return true, nil
			}
			if data == "[DONE]" {
				return false, nil
			}

			var chunk chatStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return true, nil
			}
			if chunk.Error != nil {
				b, _ := json.Marshal(chunk.Error)
				return false, fmt.Errorf("upstream stream error: %s", string(b))
			}

			for _, c := range chunk.Choices {
				delta := c.Delta.Content
				if delta == "" {
					delta = c.Text
				}
				if delta == "" {
					continue
				}
				if !yield(delta, nil) {
					stopped = true
					return false, nil
				}
			}
			return true, nil
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}
