package agents

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averros/go-moot/internal/domain"
	"github.com/averros/go-moot/internal/testutils"
)

func testBriefs() domain.Briefs {
	return domain.Briefs{
		DefenseBrief:        "\nRound 1: The design is deliberate and lawful.\n",
		ProsecutionBrief:    "\nRound 1: The design is negligent and wasteful.\n",
		DefenseStrategy:     "\nRound 1: Attack the prosecution's speculation.\n",
		ProsecutionStrategy: "\nRound 1: Press on safety obligations.\n",
	}
}

func judgeReport(markers ...string) string {
	report := `## Judicial Report

### Defense Summary
The defense argued the design is deliberate.

### Prosecution Summary
The prosecution argued the design is negligent.

### Independent Verification
Verification weakly supports the defense.

### Confidence Analysis
- Confidence Score: 85%
- Consensus Status: Strong

### Final Decision
`
	for _, m := range markers {
		report += m + "\n"
	}
	return report + "\nThe exhibits support the defense account."
}

func TestNewJudgeValidation(t *testing.T) {
	llm := testutils.NewMockLLMClient("judge-model")
	search := testutils.NewMockSearchClient()

	_, err := NewJudge(DefaultJudgeConfig(), nil, search, nil)
	require.ErrorContains(t, err, "LLM client cannot be nil")

	_, err = NewJudge(DefaultJudgeConfig(), llm, nil, nil)
	require.ErrorContains(t, err, "search client cannot be nil")

	cfg := DefaultJudgeConfig()
	cfg.MaxTokens = 0
	_, err = NewJudge(cfg, llm, search, nil)
	require.ErrorContains(t, err, "validation failed")
}

func TestParseClaimList(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
		wantErr  bool
	}{
		{
			name:     "plain JSON list",
			response: `["claim one", "claim two", "claim three"]`,
			want:     []string{"claim one", "claim two", "claim three"},
		},
		{
			name:     "json fenced",
			response: "Here you go:\n```json\n[\"a\", \"b\", \"c\"]\n```\nLet me know!",
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "bare fence",
			response: "```\n[\"a\", \"b\"]\n```",
			want:     []string{"a", "b"},
		},
		{
			name:     "list embedded in prose",
			response: `The disputed claims are ["x", "y"] as requested.`,
			want:     []string{"x", "y"},
		},
		{
			name:     "blank entries dropped",
			response: `["a", "  ", "b", ""]`,
			want:     []string{"a", "b"},
		},
		{
			name:     "no list at all",
			response: "I cannot produce a list.",
			wantErr:  true,
		},
		{
			name:     "malformed JSON",
			response: `["unterminated`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClaimList(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollapseNearDuplicates(t *testing.T) {
	tests := []struct {
		name   string
		claims []string
		want   []string
	}{
		{
			name:   "distinct claims kept",
			claims: []string{"safety compliance", "cost efficiency", "historical precedent"},
			want:   []string{"safety compliance", "cost efficiency", "historical precedent"},
		},
		{
			name:   "case-only variant collapsed",
			claims: []string{"The design is safe", "the design is safe"},
			want:   []string{"The design is safe"},
		},
		{
			name:   "minor rewording collapsed",
			claims: []string{"the open plan reduces costs", "the open plan reduces cost"},
			want:   []string{"the open plan reduces costs"},
		},
		{
			name:   "empty input",
			claims: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collapseNearDuplicates(tt.claims))
		})
	}
}

func TestExtractClaimsFallback(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*testutils.MockLLMClient)
		expected []string
	}{
		{
			name:     "extraction request fails",
			setup:    func(m *testutils.MockLLMClient) { m.Err = errors.New("boom") },
			expected: FallbackClaims,
		},
		{
			name:     "unparseable output",
			setup:    func(m *testutils.MockLLMClient) { m.DefaultResponse = "no list here" },
			expected: FallbackClaims,
		},
		{
			name:     "fewer claims than requested",
			setup:    func(m *testutils.MockLLMClient) { m.DefaultResponse = `["only one"]` },
			expected: FallbackClaims,
		},
		{
			name:     "usable output passes through",
			setup:    func(m *testutils.MockLLMClient) { m.DefaultResponse = `["claim a", "claim b", "claim c"]` },
			expected: []string{"claim a", "claim b", "claim c"},
		},
		{
			// Short claims sit within edit distance of each other but
			// an exact-count list must never be collapsed below the
			// count the pipeline verifies.
			name:     "short distinct claims are not merged",
			setup:    func(m *testutils.MockLLMClient) { m.DefaultResponse = `["room A leaks", "room B leaks", "room C leaks"]` },
			expected: []string{"room A leaks", "room B leaks", "room C leaks"},
		},
		{
			name: "oversized list collapses restatements",
			setup: func(m *testutils.MockLLMClient) {
				m.DefaultResponse = `["The design is safe", "the design is safe", "cost efficiency", "historical precedent"]`
			},
			expected: []string{"The design is safe", "cost efficiency", "historical precedent"},
		},
		{
			name: "oversized distinct list truncated to requested count",
			setup: func(m *testutils.MockLLMClient) {
				m.DefaultResponse = `["the foundation is cracked", "the budget was exceeded", "the permits were forged", "the roof leaks constantly"]`
			},
			expected: []string{"the foundation is cracked", "the budget was exceeded", "the permits were forged"},
		},
		{
			name: "oversized list of restatements falls back",
			setup: func(m *testutils.MockLLMClient) {
				m.DefaultResponse = `["the design is safe", "The design is safe", "the design is safe.", "THE DESIGN IS SAFE"]`
			},
			expected: FallbackClaims,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := testutils.NewMockLLMClient("judge-model")
			tt.setup(llm)

			judge, err := NewJudge(DefaultJudgeConfig(), llm, testutils.NewMockSearchClient(), nil)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, judge.extractClaims(context.Background(), testBriefs()))
		})
	}
}

func TestVerifyClaimsIsolatesFailures(t *testing.T) {
	llm := testutils.NewMockLLMClient("judge-model")
	search := testutils.NewMockSearchClient()
	search.Err = errors.New("search provider returned HTTP 502")

	judge, err := NewJudge(DefaultJudgeConfig(), llm, search, nil)
	require.NoError(t, err)

	claims := []string{"claim a", "claim b"}
	verified := judge.verifyClaims(context.Background(), claims)

	require.Len(t, verified, 2)
	for i, dc := range verified {
		assert.Equal(t, claims[i], dc.Claim)
		assert.Empty(t, dc.Evidence)
		assert.Contains(t, dc.Err, "HTTP 502")
	}

	queries := search.Queries()
	require.Len(t, queries, 2)
	assert.Equal(t, "fact check claim a true or false evidence", queries[0])
	assert.Equal(t, "fact check claim b true or false evidence", queries[1])
}

func TestDeliberate(t *testing.T) {
	llm := testutils.NewMockLLMClient("judge-model")
	llm.AddResponse("judicial clerk", `["the design violates fire codes", "the design cuts costs", "the design follows precedent"]`)
	llm.AddResponse("presiding Judge", judgeReport(domain.MarkerDefenseWins))

	search := testutils.NewMockSearchClient()

	judge, err := NewJudge(DefaultJudgeConfig(), llm, search, nil)
	require.NoError(t, err)

	verdict, err := judge.Deliberate(context.Background(), testBriefs())
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionDefenseWins, verdict.Decision)
	assert.Equal(t, 85, verdict.Confidence)
	assert.Equal(t, domain.ConsensusStrong, verdict.Consensus)
	assert.NotEmpty(t, verdict.ID)
	assert.Contains(t, verdict.Report, domain.MarkerDefenseWins)
	require.Len(t, verdict.Claims, 3)
	assert.Equal(t, "the design violates fire codes", verdict.Claims[0].Claim)

	// One extraction completion, one judgment completion, in order.
	calls := llm.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].System, "judicial clerk")
	assert.Contains(t, calls[1].System, "presiding Judge")
	assert.Contains(t, calls[1].Prompt, "INDEPENDENT FACT CHECK RESULTS")
	assert.Contains(t, calls[1].Prompt, testBriefs().DefenseStrategy)

	// One verification query per claim.
	assert.Len(t, search.Queries(), 3)
}

func TestDeliberateCompletionFailureIsFatal(t *testing.T) {
	llm := testutils.NewMockLLMClient("judge-model")
	llm.Err = errors.New("provider unavailable")

	judge, err := NewJudge(DefaultJudgeConfig(), llm, testutils.NewMockSearchClient(), nil)
	require.NoError(t, err)

	verdict, err := judge.Deliberate(context.Background(), testBriefs())
	require.Error(t, err)
	assert.Nil(t, verdict)
	assert.Contains(t, err.Error(), "final judgment failed")
}

func TestDeliberateDecisionMarkers(t *testing.T) {
	tests := []struct {
		name    string
		report  string
		want    domain.Decision
		wantErr string
	}{
		{
			name:   "prosecution wins",
			report: judgeReport(domain.MarkerProsecutionWins),
			want:   domain.DecisionProsecutionWins,
		},
		{
			name:   "refusal",
			report: judgeReport(domain.MarkerRefusal),
			want:   domain.DecisionRefusal,
		},
		{
			name:    "no marker",
			report:  judgeReport(),
			wantErr: "0 decision markers",
		},
		{
			name:    "conflicting markers",
			report:  judgeReport(domain.MarkerDefenseWins, domain.MarkerRefusal),
			wantErr: "2 decision markers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := testutils.NewMockLLMClient("judge-model")
			llm.AddResponse("judicial clerk", `["a claim", "another claim", "a third claim"]`)
			llm.AddResponse("presiding Judge", tt.report)

			judge, err := NewJudge(DefaultJudgeConfig(), llm, testutils.NewMockSearchClient(), nil)
			require.NoError(t, err)

			verdict, err := judge.Deliberate(context.Background(), testBriefs())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, verdict)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict.Decision)
		})
	}
}

func TestParseVerdictDefaults(t *testing.T) {
	llm := testutils.NewMockLLMClient("judge-model")
	judge, err := NewJudge(DefaultJudgeConfig(), llm, testutils.NewMockSearchClient(), nil)
	require.NoError(t, err)

	// No confidence or consensus lines at all.
	report := fmt.Sprintf("## Judicial Report\n\n### Final Decision\n%s\n", domain.MarkerRefusal)

	verdict, err := judge.parseVerdict(report, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, verdict.Confidence)
	assert.Equal(t, domain.ConsensusWeak, verdict.Consensus)

	// An out-of-range confidence is ignored rather than failing
	// validation.
	report = "Confidence Score: 250%\n" + domain.MarkerDefenseWins
	verdict, err = judge.parseVerdict(report, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, verdict.Confidence)
}
