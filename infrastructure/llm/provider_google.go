package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GoogleDefaultModel is used when no model is configured.
const GoogleDefaultModel = "gemini-2.5-flash-lite"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements CoreLLM over the Gemini API.
type googleProvider struct {
	mu      sync.RWMutex
	model   string
	client  *genai.Client
	counter *TokenCounter
}

func newGoogleProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Google client: %w", err)
	}

	return &googleProvider{
		model:   model,
		client:  client,
		counter: NewTokenCounter(),
	}, nil
}

// DoRequest sends one GenerateContent request and returns the response
// with token usage.
func (p *googleProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	options := ParseRequestOptions(opts, p.GetModel())

	genConfig := &genai.GenerateContentConfig{}
	if options.Temperature != nil {
		temp := float32(ClampFloat64(*options.Temperature, 0.0, 2.0))
		genConfig.Temperature = &temp
	}
	if options.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(options.System, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, options.Model, contents, genConfig)
	if err != nil {
		return "", 0, 0, p.handleError(err)
	}

	content := resp.Text()
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	tokensIn := p.usageCount(resp.UsageMetadata, true, prompt)
	tokensOut := p.usageCount(resp.UsageMetadata, false, content)

	return content, tokensIn, tokensOut, nil
}

// GetModel returns the configured model. Safe for concurrent use.
func (p *googleProvider) GetModel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model
}

func (p *googleProvider) usageCount(usage *genai.GenerateContentResponseUsageMetadata, input bool, text string) int {
	if usage != nil {
		if input && usage.PromptTokenCount > 0 {
			return int(usage.PromptTokenCount)
		}
		if !input && usage.CandidatesTokenCount > 0 {
			return int(usage.CandidatesTokenCount)
		}
	}
	return p.counter.EstimateTokens(text)
}

func (p *googleProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassifyContextError("google", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return ClassifyHTTPError("google", apiErr.Code, apiErr.Message, err)
	}

	return NewProviderError("google", ErrorTypeUnknown, 0, "request failed", err)
}
