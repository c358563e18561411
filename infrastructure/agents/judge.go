package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/averros/go-moot/internal/domain"
	"github.com/averros/go-moot/internal/ports"
)

var _ ports.JudgeAgent = (*Judge)(nil)

// Judge configuration defaults. The judge runs at zero temperature for
// maximum objectivity and uses a tighter evidence budget per claim
// than the arguing agents.
const (
	DefaultJudgeTemperature  = 0.0
	DefaultJudgeMaxTokens    = 2048
	DefaultClaimCount        = 3
	DefaultVerifyMaxResults  = 2
	defaultClaimMaxTokens    = 256
	claimSimilarityThreshold = 0.25
)

// FallbackClaims is the fixed default claim set used when extraction
// produces unusable output, so deliberation always proceeds.
var FallbackClaims = []string{"safety compliance", "cost efficiency", "historical precedent"}

// JudgeConfig tunes the deliberation pipeline.
type JudgeConfig struct {
	// Temperature for all judge completions.
	Temperature float64 `yaml:"temperature" validate:"min=0,max=1"`
	// MaxTokens caps the final report length.
	MaxTokens int `yaml:"max_tokens" validate:"required,min=256,max=8000"`
	// ClaimCount is the number of disputed claims to extract and verify.
	ClaimCount int `yaml:"claim_count" validate:"required,min=1,max=5"`
	// VerifyMaxResults caps the snippets gathered per claim.
	VerifyMaxResults int `yaml:"verify_max_results" validate:"required,min=1,max=3"`

	// VerifyDepth selects the search provider's depth mode for fact
	// checks.
	VerifyDepth string `yaml:"verify_depth" validate:"required,oneof=basic advanced"`
}

// DefaultJudgeConfig returns the stock judge configuration.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		Temperature:      DefaultJudgeTemperature,
		MaxTokens:        DefaultJudgeMaxTokens,
		ClaimCount:       DefaultClaimCount,
		VerifyMaxResults: DefaultVerifyMaxResults,
		VerifyDepth:      "advanced",
	}
}

// Judge renders the final verdict. Its pipeline is: extract disputed
// claims from the briefs, verify each claim independently through the
// search boundary, then issue one completion constrained to the briefs
// and the verification results.
//
// Unlike the arguing agents the final completion is hard-fail: an LLM
// error or an unparseable report propagates to the caller.
type Judge struct {
	cfg      JudgeConfig
	llm      ports.LLMClient
	search   ports.SearchClient
	validate *validator.Validate
	tracer   trace.Tracer
	log      *slog.Logger
}

// NewJudge builds the judge agent.
func NewJudge(cfg JudgeConfig, llm ports.LLMClient, search ports.SearchClient, log *slog.Logger) (*Judge, error) {
	if llm == nil {
		return nil, fmt.Errorf("judge: LLM client cannot be nil")
	}
	if search == nil {
		return nil, fmt.Errorf("judge: search client cannot be nil")
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("judge: configuration validation failed: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Judge{
		cfg:      cfg,
		llm:      llm,
		search:   search,
		validate: v,
		tracer:   otel.Tracer("judge-agent"),
		log:      log.With(slog.String("role", string(domain.RoleJudge))),
	}, nil
}

// Deliberate runs the full judging pipeline over the accumulated
// briefs and strategy documents and returns the validated verdict.
func (j *Judge) Deliberate(ctx context.Context, briefs domain.Briefs) (*domain.Verdict, error) {
	ctx, span := j.tracer.Start(ctx, "Judge.Deliberate")
	defer span.End()

	claims := j.extractClaims(ctx, briefs)
	span.SetAttributes(attribute.Int("judge.claim_count", len(claims)))

	verified := j.verifyClaims(ctx, claims)

	report, err := j.finalJudgment(ctx, briefs, verified)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("judge: final judgment failed: %w", err)
	}

	verdict, err := j.parseVerdict(report, verified)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("judge: %w", err)
	}

	span.SetAttributes(
		attribute.String("judge.decision", string(verdict.Decision)),
		attribute.Int("judge.confidence", verdict.Confidence),
	)
	return verdict, nil
}

const claimExtractionSystem = `You are a judicial clerk. Extract the specific, independently verifiable factual claims that are in dispute between the Defense and the Prosecution.`

// extractClaims asks for exactly ClaimCount disputed claims as a JSON
// list of strings. Parsing is lenient: fenced output is unwrapped
// before decoding. Any parse failure, or fewer claims than requested,
// falls back to the fixed default set so the pipeline never aborts on
// malformed model output. Oversized lists are collapsed for
// near-duplicate restatements and truncated; if collapsing leaves
// fewer claims than requested, the fallback set is used instead.
func (j *Judge) extractClaims(ctx context.Context, briefs domain.Briefs) []string {
	prompt := fmt.Sprintf(`DEFENSE BRIEF: %s

PROSECUTION BRIEF: %s

Return ONLY a JSON list of exactly %d strings, e.g. ["claim 1", "claim 2", "claim 3"]`,
		briefs.DefenseBrief, briefs.ProsecutionBrief, j.cfg.ClaimCount)

	options := map[string]any{
		"temperature": j.cfg.Temperature,
		"max_tokens":  defaultClaimMaxTokens,
		"system":      claimExtractionSystem,
	}

	response, err := j.llm.Complete(ctx, prompt, options)
	if err != nil {
		j.log.Warn("claim extraction failed, using fallback claims", slog.Any("error", err))
		return append([]string(nil), FallbackClaims...)
	}

	claims, err := parseClaimList(response)
	if err != nil || len(claims) < j.cfg.ClaimCount {
		j.log.Warn("claim extraction produced unusable output, using fallback claims",
			slog.Int("parsed", len(claims)), slog.Any("error", err))
		return append([]string(nil), FallbackClaims...)
	}

	// Dedup applies only to oversized lists. An exact-count list is
	// taken as-is: short distinct claims can sit within the edit
	// distance threshold of each other, and collapsing those would
	// leave fewer claims than the pipeline promises to verify.
	if len(claims) > j.cfg.ClaimCount {
		claims = collapseNearDuplicates(claims)
		if len(claims) > j.cfg.ClaimCount {
			claims = claims[:j.cfg.ClaimCount]
		}
	}
	if len(claims) < j.cfg.ClaimCount {
		j.log.Warn("claim dedup left too few claims, using fallback claims",
			slog.Int("kept", len(claims)))
		return append([]string(nil), FallbackClaims...)
	}
	return claims
}

// parseClaimList decodes a JSON list of strings from model output,
// tolerating markdown code fences and surrounding prose.
func parseClaimList(response string) ([]string, error) {
	cleaned := strings.TrimSpace(response)
	if idx := strings.Index(cleaned, "```json"); idx != -1 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end != -1 {
			cleaned = cleaned[:end]
		}
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if end := strings.Index(cleaned, "```"); end != -1 {
			cleaned = cleaned[:end]
		}
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON list found in response (len: %d)", len(response))
	}

	var claims []string
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &claims); err != nil {
		return nil, fmt.Errorf("decode claim list: %w", err)
	}

	out := claims[:0]
	for _, c := range claims {
		if strings.TrimSpace(c) != "" {
			out = append(out, strings.TrimSpace(c))
		}
	}
	return out, nil
}

// collapseNearDuplicates drops claims whose edit distance to an
// earlier claim is small relative to their length, keeping first
// occurrences. Models asked for distinct claims occasionally restate
// one with minor rewording.
func collapseNearDuplicates(claims []string) []string {
	kept := make([]string, 0, len(claims))
	for _, claim := range claims {
		dup := false
		for _, prev := range kept {
			a, b := strings.ToLower(claim), strings.ToLower(prev)
			longest := max(len(a), len(b))
			if longest == 0 {
				dup = true
				break
			}
			if float64(levenshtein.ComputeDistance(a, b))/float64(longest) < claimSimilarityThreshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, claim)
		}
	}
	return kept
}

// verifyClaims fact-checks each claim through the search boundary,
// strictly in order. A lookup failure is recorded on that claim alone;
// verification of the remaining claims continues.
func (j *Judge) verifyClaims(ctx context.Context, claims []string) []domain.DisputedClaim {
	verified := make([]domain.DisputedClaim, 0, len(claims))
	for _, claim := range claims {
		query := fmt.Sprintf("fact check %s true or false evidence", claim)

		snippets, err := j.search.Search(ctx, query, ports.SearchOptions{
			MaxResults: j.cfg.VerifyMaxResults,
			Depth:      j.cfg.VerifyDepth,
		})
		if err != nil {
			j.log.Warn("claim verification failed",
				slog.String("claim", claim), slog.Any("error", err))
			verified = append(verified, domain.DisputedClaim{Claim: claim, Err: err.Error()})
			continue
		}
		verified = append(verified, domain.DisputedClaim{Claim: claim, Evidence: snippets})
	}
	return verified
}

const judgmentSystem = `You are the presiding Judge. Your duty is to render a verdict based ONLY on facts and safety.

CRITICAL RULES:
1. CONSENSUS CHECK: if the independent verification contradicts both sides or is inconclusive on safety-critical issues, you MUST refuse to decide.
2. SAFETY FIRST: any confirmed safety violation is immediate grounds for ruling against the proposal.
3. OBJECTIVITY: ignore emotional appeals from the Defense and the Prosecution.

Output your report in exactly this format:

## Judicial Report

### Defense Summary
[brief summary]

### Prosecution Summary
[brief summary]

### Independent Verification
[summarize the fact-check findings for the disputed claims]

### Confidence Analysis
- Confidence Score: [0-100]%
- Consensus Status: [Strong/Weak/Conflict]

### Final Decision
[exactly one of: VERDICT: DEFENSE WINS | VERDICT: PROSECUTION WINS | REFUSAL: NEW SESSION ORDERED]

[detailed reasoning for the decision or refusal]`

// finalJudgment issues the single judgment completion. Errors
// propagate: this is the one step of the session with no fallback.
func (j *Judge) finalJudgment(ctx context.Context, briefs domain.Briefs, verified []domain.DisputedClaim) (string, error) {
	verificationJSON, err := json.MarshalIndent(verified, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode verification results: %w", err)
	}

	prompt := fmt.Sprintf(`DEFENSE ARGUMENTS: %s

PROSECUTION ARGUMENTS: %s

DEFENSE STRATEGY: %s

PROSECUTION STRATEGY: %s

INDEPENDENT FACT CHECK RESULTS:
%s

Render your decision now:`,
		briefs.DefenseBrief, briefs.ProsecutionBrief,
		briefs.DefenseStrategy, briefs.ProsecutionStrategy,
		verificationJSON)

	options := map[string]any{
		"temperature": j.cfg.Temperature,
		"max_tokens":  j.cfg.MaxTokens,
		"system":      judgmentSystem,
	}

	return j.llm.Complete(ctx, prompt, options)
}

var (
	confidenceRe = regexp.MustCompile(`(?i)confidence\s*score[^0-9]*([0-9]{1,3})`)
	consensusRe  = regexp.MustCompile(`(?i)consensus\s*status[^a-zA-Z]*(strong|weak|conflict)`)
)

// parseVerdict extracts the structured record from the report and
// validates it. The report must contain exactly one decision marker;
// anything else is the fatal verdict-validation case.
func (j *Judge) parseVerdict(report string, verified []domain.DisputedClaim) (*domain.Verdict, error) {
	decision, err := parseDecision(report)
	if err != nil {
		return nil, err
	}

	confidence := 0
	if m := confidenceRe.FindStringSubmatch(report); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= 100 {
			confidence = n
		}
	}

	consensus := domain.ConsensusWeak
	if m := consensusRe.FindStringSubmatch(report); m != nil {
		consensus = domain.Consensus(strings.ToLower(m[1]))
	}

	verdict := domain.NewVerdict(decision, confidence, consensus)
	verdict.Claims = verified
	verdict.Report = report

	if err := j.validate.Struct(verdict); err != nil {
		return nil, fmt.Errorf("verdict failed validation: %w", err)
	}
	return &verdict, nil
}

func parseDecision(report string) (domain.Decision, error) {
	found := make([]domain.Decision, 0, 1)
	for _, d := range []domain.Decision{
		domain.DecisionDefenseWins,
		domain.DecisionProsecutionWins,
		domain.DecisionRefusal,
	} {
		if strings.Contains(report, d.Marker()) {
			found = append(found, d)
		}
	}

	if len(found) != 1 {
		return "", fmt.Errorf("report contains %d decision markers, want exactly 1", len(found))
	}
	return found[0], nil
}
