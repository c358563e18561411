// Package ports defines the interfaces between the courtroom
// orchestration layer and the infrastructure layer. They enable
// dependency inversion and make every external boundary stubable in
// tests.
package ports

import (
	"context"
	"time"

	"github.com/averros/go-moot/internal/domain"
)

// LLMClient is the boundary to a chat-completion provider.
// Implementations handle provider-specific authentication, request
// formatting, and response parsing.
type LLMClient interface {
	// Complete sends one completion request and returns the generated
	// text. Recognized options include:
	//   - "temperature": float64
	//   - "max_tokens": int
	//   - "system": string (persona / rules of engagement)
	//   - "model": string (override the configured model)
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens approximates the token count of text for cost
	// accounting; the method may vary by provider.
	EstimateTokens(text string) (int, error)

	// GetModel returns the configured model identifier, used for
	// logging and metrics labels.
	GetModel() string
}

// SearchOptions bound a single evidence query.
type SearchOptions struct {
	// MaxResults caps the number of snippets returned. Providers may
	// return fewer. Zero means the client default.
	MaxResults int

	// Depth selects the provider's search depth mode, e.g. "advanced".
	Depth string
}

// SearchClient is the boundary to the external evidence provider.
// The raw client surfaces failures; callers decide whether to degrade
// (arguing agents) or record the fault per claim (the judge).
type SearchClient interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.EvidenceSnippet, error)
}

// MetricsCollector abstracts operational metric recording so the LLM
// middleware does not depend on a concrete monitoring backend.
type MetricsCollector interface {
	// RecordLatency records the duration of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric by value.
	RecordCounter(metric string, value float64, labels map[string]string)
}
