// Package testutils provides deterministic stand-ins for the external
// boundaries, enabling reliable tests of the debate pipeline without
// network access.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/averros/go-moot/internal/ports"
)

var _ ports.LLMClient = (*MockLLMClient)(nil)

// RecordedCall captures one completion request for assertions about
// ordering and prompt content.
type RecordedCall struct {
	// Prompt is the rendered user content.
	Prompt string
	// System is the persona instruction passed via options.
	System string
	// Temperature is the randomness parameter passed via options.
	Temperature float64
}

// MockLLMClient implements ports.LLMClient with deterministic,
// pattern-matched responses. Patterns are substring-matched against
// the system instruction first, then the prompt; the first registered
// match wins. Calls are recorded in order.
type MockLLMClient struct {
	mu        sync.Mutex
	model     string
	patterns  []string
	responses map[string]string
	calls     []RecordedCall

	// Err, when set, is returned by every Complete call.
	Err error
	// DefaultResponse is returned when no pattern matches.
	DefaultResponse string
}

// NewMockLLMClient creates a mock with no canned responses registered.
func NewMockLLMClient(model string) *MockLLMClient {
	return &MockLLMClient{
		model:           model,
		responses:       make(map[string]string),
		DefaultResponse: "mock completion",
	}
}

// AddResponse registers a canned response for prompts or system
// instructions containing pattern.
func (m *MockLLMClient) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.responses[pattern]; !exists {
		m.patterns = append(m.patterns, pattern)
	}
	m.responses[pattern] = response
}

// Complete returns the first canned response whose pattern matches,
// recording the call.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	system, _ := options["system"].(string)
	temp, _ := options["temperature"].(float64)
	m.calls = append(m.calls, RecordedCall{Prompt: prompt, System: system, Temperature: temp})

	if m.Err != nil {
		return "", m.Err
	}

	for _, pattern := range m.patterns {
		if strings.Contains(system, pattern) || strings.Contains(prompt, pattern) {
			return m.responses[pattern], nil
		}
	}
	return m.DefaultResponse, nil
}

// Calls returns a copy of the recorded calls in order.
func (m *MockLLMClient) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedCall(nil), m.calls...)
}

// EstimateTokens uses the common ~4 chars/token heuristic.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel returns the mock model identifier.
func (m *MockLLMClient) GetModel() string { return m.model }
