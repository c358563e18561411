// Package agents implements the debating personas: one generic arguing
// agent parameterized by persona configuration, and the judge.
package agents

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/averros/go-moot/internal/domain"
)

// Config describes one arguing persona. The four stock personas differ
// only in this configuration; the agent implementation is shared.
type Config struct {
	// Role identifies the persona.
	Role domain.Role `yaml:"role" validate:"required"`

	// SystemPrompt encodes the persona and its rules of engagement.
	SystemPrompt string `yaml:"system_prompt" validate:"required,min=20"`

	// EvidenceTopic is the fixed subject this persona searches for
	// before arguing. The stock topics are placeholder phrases not
	// derived from the case content; they are configurable precisely
	// because that behavior is under review.
	EvidenceTopic string `yaml:"evidence_topic" validate:"required"`

	// EvidenceQueryFormat is a fmt format string with one %s verb that
	// turns the topic into a search query.
	EvidenceQueryFormat string `yaml:"evidence_query_format" validate:"required,contains=%s"`

	// EmptyOpponentText stands in for the opposing statement when none
	// has been made yet.
	EmptyOpponentText string `yaml:"empty_opponent_text" validate:"required"`

	// ClosingInstruction is the final imperative of the user prompt,
	// telling the persona what to produce.
	ClosingInstruction string `yaml:"closing_instruction" validate:"required"`

	// Temperature tunes randomness per persona: persuasion-oriented
	// personas run warmer than analysis-oriented ones.
	Temperature float64 `yaml:"temperature" validate:"min=0,max=1"`

	// MaxTokens caps the statement length.
	MaxTokens int `yaml:"max_tokens" validate:"required,min=50,max=4000"`

	// MaxEvidence caps the snippets requested per turn.
	MaxEvidence int `yaml:"max_evidence" validate:"min=1,max=3"`

	// EvidenceDepth selects the search provider's depth mode.
	EvidenceDepth string `yaml:"evidence_depth" validate:"required,oneof=basic advanced"`
}

// Validate checks the persona configuration.
func (c Config) Validate(v *validator.Validate) error {
	if !c.Role.Valid() || c.Role == domain.RoleJudge {
		return fmt.Errorf("role %q is not an arguing role", c.Role)
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("persona %s: configuration validation failed: %w", c.Role, err)
	}
	return nil
}

const (
	defenseAdvocatePrompt = `You are a lead Defense Attorney specializing in liability and construction law.
Your client is the author of the proposal under review. Your goal is to zealously defend it against all charges of inefficiency or flaw.

Your responsibilities:
1. Opening Statement: present the proposal's choices as deliberate, lawful, and necessary.
2. Rebuttal: if opposing counsel has presented flaws, argue that those concerns are speculative, inadmissible, or outweighed by the benefits. Cast reasonable doubt on the critique.
3. Cite Precedents: reference the supplied exhibits to prove the proposal is sound.
4. Closing Argument: summarize why the proposal must be accepted as the superior choice.
5. Tone: use legal terminology, be persuasive, protective of the client, and professional.`

	prosecutionAdvocatePrompt = `You are the Chief Prosecutor representing the public interest and safety standards.
Your goal is to relentlessly cross-examine the proposal under review and expose every flaw, safety risk, and inefficiency.

Your responsibilities:
1. Opening Statement: declare the proposal guilty of poor design, safety violations, or wastefulness.
2. Cross-Examination: if the defense has spoken, tear apart their arguments. Point out contradictions and idealism that ignores reality.
3. Cite Violations: use the supplied exhibits to show where similar proposals have failed or are unlawful.
4. Closing Argument: demand that the proposal be rejected for the safety of the public.
5. Tone: accusatory, sharp, authoritative, and uncompromising. Use legal terms such as negligence, liability, and motion to strike.`

	defenseStrategistPrompt = `You are a Senior Legal Strategist for the Defense.
Your ONLY job is to find the flaws, gaps, and legal errors in the Prosecutor's argument.
You are NOT judging the proposal itself. You are attacking the Prosecutor's logic.

Evaluate the Prosecutor's case on:
1. Logical fallacies: slippery slope, ad hominem, and similar reasoning errors.
2. Lack of precedent: is the argument purely speculative?
3. Misinterpretation: has the Prosecutor misunderstood the intent of the proposal?
4. Counter-strategy: give 3 specific legal arguments the Defense Attorney should use in rebuttal.

Be sharp, cynical, and 100% on the side of the Defense.`

	prosecutionStrategistPrompt = `You are the Chief Prosecution Strategist.
Your ONLY job is to destroy the credibility of the Defense Attorney's argument.
You are NOT judging the proposal itself. You are attacking the Defense's argument.

Evaluate the Defense's case on:
1. Emotional manipulation: is the defense substituting appeals for facts?
2. Safety: does the defense ignore public safety obligations?
3. Cost: is the defense hiding the true cost to the public?
4. Attack plan: give 3 pointed questions the Prosecutor should ask on cross-examination.

Be ruthless, precise, and intolerant of vague visionary talk.`
)

// DefenseAdvocateConfig returns the stock defense advocate persona.
func DefenseAdvocateConfig() Config {
	return Config{
		Role:                domain.RoleDefenseAdvocate,
		SystemPrompt:        defenseAdvocatePrompt,
		EvidenceTopic:       "modern open-plan",
		EvidenceQueryFormat: "successful examples and benefits of %s in modern courthouses",
		EmptyOpponentText:   "No charges filed yet.",
		ClosingInstruction:  "Provide a compelling legal defense of this proposal:",
		Temperature:         0.6,
		MaxTokens:           1024,
		MaxEvidence:         3,
		EvidenceDepth:       "advanced",
	}
}

// ProsecutionAdvocateConfig returns the stock prosecutor persona.
func ProsecutionAdvocateConfig() Config {
	return Config{
		Role:                domain.RoleProsecutionAdvocate,
		SystemPrompt:        prosecutionAdvocatePrompt,
		EvidenceTopic:       "modern open-plan",
		EvidenceQueryFormat: "legal risks and failure cases of %s in courthouses",
		EmptyOpponentText:   "The Defense has remained silent.",
		ClosingInstruction:  "Prosecute this proposal immediately:",
		Temperature:         0.6,
		MaxTokens:           1024,
		MaxEvidence:         3,
		EvidenceDepth:       "advanced",
	}
}

// DefenseStrategistConfig returns the stock defense strategist persona.
func DefenseStrategistConfig() Config {
	return Config{
		Role:                domain.RoleDefenseStrategist,
		SystemPrompt:        defenseStrategistPrompt,
		EvidenceTopic:       "strict liability in design",
		EvidenceQueryFormat: "legal exceptions and successful defenses against %s in construction law",
		EmptyOpponentText:   "The Prosecution has not yet presented its case.",
		ClosingInstruction:  "Provide a strategic breakdown of the prosecution's weaknesses:",
		Temperature:         0.4,
		MaxTokens:           1024,
		MaxEvidence:         3,
		EvidenceDepth:       "advanced",
	}
}

// ProsecutionStrategistConfig returns the stock prosecution strategist
// persona.
func ProsecutionStrategistConfig() Config {
	return Config{
		Role:                domain.RoleProsecutionStrategist,
		SystemPrompt:        prosecutionStrategistPrompt,
		EvidenceTopic:       "unproven architectural innovations",
		EvidenceQueryFormat: "evidence against %s and failures in construction",
		EmptyOpponentText:   "The Defense has not yet presented its case.",
		ClosingInstruction:  "Provide a plan to counter the defense:",
		Temperature:         0.3,
		MaxTokens:           1024,
		MaxEvidence:         3,
		EvidenceDepth:       "advanced",
	}
}
