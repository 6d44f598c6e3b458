package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"haskify-be/pkg/llm"

	"google.golang.org/genai"
)

// Provider implements llm.LLMProvider on the Gemini API.
type Provider struct {
	client    *genai.Client
	modelName string
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(ctx context.Context, apiKey, modelName string) (*Provider, error) {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &Provider{client: client, modelName: modelName}, nil
}

// toContents splits system messages into the system instruction and maps the
// remaining roles onto Gemini's user/model roles.
func toContents(history []llm.Message) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(history))
	var system []string
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
			continue
		case llm.RoleAssistant, "model":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

func (p *Provider) config(history []llm.Message, opts ...llm.Option) ([]*genai.Content, string, *genai.GenerateContentConfig) {
	options := llm.ApplyOptions(opts...)
	contents, systemText := toContents(history)

	model := p.modelName
	if options.Model != "" {
		model = options.Model
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(options.Temperature)),
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}
	return contents, model, config
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	contents, model, config := p.config(history, opts...)
	if len(contents) == 0 {
		return "", fmt.Errorf("no user or model messages to send")
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no response generated from gemini")
	}
	return text, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		contents, model, config := p.config(history, opts...)
		if len(contents) == 0 {
			yield("", fmt.Errorf("no user or model messages to send"))
			return
		}

		for resp, err := range p.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream failed: %w", err))
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}
