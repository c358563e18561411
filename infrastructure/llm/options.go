package llm

import (
	"fmt"
	"net/url"
)

// Parameter bounds shared across providers.
const (
	// DefaultMaxTokens is used when a request does not specify a limit.
	DefaultMaxTokens = 1024
	// MinTemperature and MaxTemperature bound the sampling temperature.
	// The upper bound is 2.0 to accommodate Gemini.
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// RequestOptions is the normalized set of per-request parameters
// extracted from the options map handed to Complete.
type RequestOptions struct {
	// Model overrides the provider's configured model when non-empty.
	Model string
	// MaxTokens caps the generated output length.
	MaxTokens int
	// Temperature controls sampling randomness. Nil means provider
	// default. Objectivity-oriented personas run at 0.
	Temperature *float64
	// System carries the persona instructions, passed through the
	// provider's native system-prompt mechanism where one exists.
	System string
}

// ParseRequestOptions normalizes the loosely-typed options map into
// RequestOptions, applying defaults for missing or invalid entries.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		Model:     optString(opts, "model", defaultModel),
		MaxTokens: optInt(opts, "max_tokens", DefaultMaxTokens),
		System:    optString(opts, "system", ""),
	}

	if v, ok := opts["temperature"]; ok {
		if temp, ok := toFloat64(v); ok && temp >= MinTemperature && temp <= MaxTemperature {
			options.Temperature = &temp
		}
	}

	return options
}

func optString(opts map[string]any, key, fallback string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func optInt(opts map[string]any, key string, fallback int) int {
	if v, ok := opts[key]; ok {
		switch n := v.(type) {
		case int:
			if n > 0 {
				return n
			}
		case float64:
			if n > 0 {
				return int(n)
			}
		}
	}
	return fallback
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// ClampFloat64 bounds val to [min, max].
func ClampFloat64(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ValidateBaseURL checks that an endpoint override is a usable http(s)
// URL. Empty input is valid and selects the provider default.
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, got: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}
	return parsed.String(), nil
}

// TokenCounter estimates token counts when the provider does not
// report exact usage.
type TokenCounter struct {
	// CharactersPerToken is the approximation ratio, tuned for English.
	CharactersPerToken float64
}

// NewTokenCounter returns a counter with the common ~4 chars/token
// English approximation.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{CharactersPerToken: 4.0}
}

// EstimateTokens approximates the token count of text.
func (tc *TokenCounter) EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(len(text)) / tc.CharactersPerToken)
}

// GetTokenCount prefers the provider-reported count, falling back to
// estimation when the report is missing or zero.
func (tc *TokenCounter) GetTokenCount(actualCount int, text string) int {
	if actualCount > 0 {
		return actualCount
	}
	return tc.EstimateTokens(text)
}
