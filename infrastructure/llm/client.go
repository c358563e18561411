// Package llm provides a unified client for the chat-completion
// providers used by the debate agents. Providers are abstracted behind
// the CoreLLM interface and can be wrapped with middleware for
// timeouts, rate limiting, and metrics.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("MOOT_JUDGE_API_KEY"),
//	    Model:  "llama-3.3-70b-versatile",
//	    BaseURL: "https://api.groq.com/openai/v1",
//	})
//	text, err := client.Complete(ctx, prompt, map[string]any{"temperature": 0.0})
//
// Note the absence of retry middleware: every completion in a debate
// session is attempted exactly once per logical step.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/averros/go-moot/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. Middleware
// wraps any conforming implementation.
type CoreLLM interface {
	// DoRequest sends one prompt to the provider and returns the
	// response text plus input/output token counts.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Middleware wraps a CoreLLM to add cross-cutting behavior without
// touching provider logic.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds the settings for one provider client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model selects the model for completion requests.
	Model string

	// BaseURL overrides the provider's default endpoint. This is how
	// OpenAI-compatible services such as Groq are reached through the
	// openai provider.
	BaseURL string

	// Timeout bounds each request with a context deadline, enforced
	// uniformly across providers by the client itself. Zero means no
	// client-side timeout.
	Timeout time.Duration

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// ProviderFactory builds a CoreLLM from configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name usable in
// configuration files. Called from provider init functions.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}

// Client implements ports.LLMClient over a middleware-wrapped CoreLLM.
type Client struct {
	core    CoreLLM
	counter *TokenCounter
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient assembles a provider and its middleware chain into a
// ready-to-use client.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", providerType, err)
	}

	// The timeout sits innermost so rate-limiter wait time is never
	// charged against the request deadline.
	if config.Timeout > 0 {
		core = TimeoutMiddleware(config.Timeout)(core)
	}

	// Apply in reverse so the first configured middleware is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core, counter: NewTokenCounter()}, nil
}

// Complete sends one prompt and returns the response text, discarding
// token usage.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends one prompt and returns the response along
// with input/output token counts for cost accounting.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// EstimateTokens approximates the token count of text using a
// character heuristic.
func (c *Client) EstimateTokens(text string) (int, error) {
	return c.counter.EstimateTokens(text), nil
}

// GetModel returns the model configured on the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }
