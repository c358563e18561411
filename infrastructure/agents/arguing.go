package agents

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/averros/go-moot/internal/domain"
	"github.com/averros/go-moot/internal/ports"
)

var _ ports.ArguingAgent = (*Arguing)(nil)

// argumentTemplate renders the user content of every arguing turn.
// The section headings are part of the persona prompts' framing and
// stay fixed across personas.
const argumentTemplate = `EVIDENCE / PRECEDENTS (EXHIBITS):
{{.Evidence}}

CASE FACTS:
{{.Case}}

OPPOSING PARTY'S STATEMENT:
{{.Opponent}}

{{.Closing}}`

// noEvidenceText is rendered when the lookup produced no snippets, so
// the persona knows it argues without exhibits rather than seeing a
// blank section.
const noEvidenceText = "(no supporting evidence retrieved)"

// Arguing is the generic arguing agent. One implementation serves all
// four personas; behavior differences live entirely in Config.
// The agent is stateless between calls and fail-soft: a completion
// failure becomes a degraded statement, never an error.
type Arguing struct {
	cfg    Config
	llm    ports.LLMClient
	search ports.SearchClient
	prompt *template.Template
	tracer trace.Tracer
	log    *slog.Logger
}

// NewArguing builds an arguing agent for the given persona.
func NewArguing(cfg Config, llm ports.LLMClient, search ports.SearchClient, log *slog.Logger) (*Arguing, error) {
	if llm == nil {
		return nil, fmt.Errorf("persona %s: LLM client cannot be nil", cfg.Role)
	}
	if search == nil {
		return nil, fmt.Errorf("persona %s: search client cannot be nil", cfg.Role)
	}
	if err := cfg.Validate(validator.New()); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	tmpl, err := template.New("argument").Parse(argumentTemplate)
	if err != nil {
		return nil, fmt.Errorf("persona %s: parse argument template: %w", cfg.Role, err)
	}

	return &Arguing{
		cfg:    cfg,
		llm:    llm,
		search: search,
		prompt: tmpl,
		tracer: otel.Tracer("arguing-agent"),
		log:    log.With(slog.String("role", string(cfg.Role))),
	}, nil
}

// Role identifies the persona this agent argues as.
func (a *Arguing) Role() domain.Role { return a.cfg.Role }

// ProduceStatement runs one turn: gather evidence, render the persona
// prompt, and request one completion. Evidence lookup failures degrade
// to an empty exhibit block; completion failures yield a degraded
// statement carrying the failure marker.
func (a *Arguing) ProduceStatement(ctx context.Context, caseFacts, opponentStatement string) domain.Statement {
	ctx, span := a.tracer.Start(ctx, "Arguing.ProduceStatement",
		trace.WithAttributes(
			attribute.String("agent.role", string(a.cfg.Role)),
			attribute.Float64("agent.temperature", a.cfg.Temperature),
		),
	)
	defer span.End()

	evidence := a.gatherEvidence(ctx)
	span.SetAttributes(attribute.Int("agent.evidence_count", len(evidence)))

	opponent := strings.TrimSpace(opponentStatement)
	if opponent == "" {
		opponent = a.cfg.EmptyOpponentText
	}

	prompt, err := a.renderPrompt(caseFacts, opponent, evidence)
	if err != nil {
		// Template data is plain strings; this only fires on a broken
		// custom template. Still fail soft per the agent contract.
		span.RecordError(err)
		return domain.NewDegradedStatement(a.cfg.Role, err)
	}

	options := map[string]any{
		"temperature": a.cfg.Temperature,
		"max_tokens":  a.cfg.MaxTokens,
		"system":      a.cfg.SystemPrompt,
	}

	response, err := a.llm.Complete(ctx, prompt, options)
	if err != nil {
		span.RecordError(err)
		a.log.Warn("statement generation failed", slog.Any("error", err))
		return domain.NewDegradedStatement(a.cfg.Role, err)
	}

	return domain.NewStatement(a.cfg.Role, response)
}

// gatherEvidence queries the persona's fixed topic. Provider failures
// are swallowed: the agent argues with an empty exhibit block instead.
func (a *Arguing) gatherEvidence(ctx context.Context) []domain.EvidenceSnippet {
	query := fmt.Sprintf(a.cfg.EvidenceQueryFormat, a.cfg.EvidenceTopic)

	snippets, err := a.search.Search(ctx, query, ports.SearchOptions{
		MaxResults: a.cfg.MaxEvidence,
		Depth:      a.cfg.EvidenceDepth,
	})
	if err != nil {
		a.log.Debug("evidence lookup failed, continuing without exhibits",
			slog.String("query", query), slog.Any("error", err))
		return nil
	}
	return snippets
}

func (a *Arguing) renderPrompt(caseFacts, opponent string, evidence []domain.EvidenceSnippet) (string, error) {
	var buf bytes.Buffer
	err := a.prompt.Execute(&buf, struct {
		Evidence string
		Case     string
		Opponent string
		Closing  string
	}{
		Evidence: formatEvidence(evidence),
		Case:     caseFacts,
		Opponent: opponent,
		Closing:  a.cfg.ClosingInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("render argument prompt: %w", err)
	}
	return buf.String(), nil
}

func formatEvidence(snippets []domain.EvidenceSnippet) string {
	if len(snippets) == 0 {
		return noEvidenceText
	}
	lines := make([]string, len(snippets))
	for i, s := range snippets {
		lines[i] = "- " + s.Content
	}
	return strings.Join(lines, "\n")
}
