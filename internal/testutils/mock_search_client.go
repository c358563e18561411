package testutils

import (
	"context"
	"sync"

	"github.com/averros/go-moot/internal/domain"
	"github.com/averros/go-moot/internal/ports"
)

var _ ports.SearchClient = (*MockSearchClient)(nil)

// MockSearchClient implements ports.SearchClient with canned snippets.
// Queries are recorded in order for assertions about topics and
// fact-check phrasing.
type MockSearchClient struct {
	mu      sync.Mutex
	queries []string

	// Snippets is returned (capped to opts.MaxResults) by every call.
	Snippets []domain.EvidenceSnippet
	// Err, when set, is returned by every call.
	Err error
}

// NewMockSearchClient creates a mock returning one generic snippet.
func NewMockSearchClient() *MockSearchClient {
	return &MockSearchClient{
		Snippets: []domain.EvidenceSnippet{
			{Title: "Reference case", Content: "A comparable proposal was adopted without incident.", Score: 0.9},
		},
	}
}

// Search records the query and returns the canned snippets.
func (m *MockSearchClient) Search(ctx context.Context, query string, opts ports.SearchOptions) ([]domain.EvidenceSnippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)

	if m.Err != nil {
		return nil, m.Err
	}

	snippets := m.Snippets
	if opts.MaxResults > 0 && len(snippets) > opts.MaxResults {
		snippets = snippets[:opts.MaxResults]
	}
	return append([]domain.EvidenceSnippet(nil), snippets...), nil
}

// Queries returns a copy of the recorded queries in order.
func (m *MockSearchClient) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
